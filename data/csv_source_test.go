package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

func writeHistory(t *testing.T, folder string, candles []models.OHLCV) {
	t.Helper()
	assert.Nil(t, AppendToCSV("BTC/USDT", "1m", folder, candles))
}

func TestCSVHistoryRoundTrip(t *testing.T) {
	folder := t.TempDir()
	candles := []models.OHLCV{
		{Timestamp: 60_000, Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{Timestamp: 120_000, Open: 11, High: 13, Low: 10, Close: 12, Volume: 50},
	}
	writeHistory(t, folder, candles)

	loaded, err := LoadHistoricalData("BTC/USDT", "1m", folder)
	assert.Nil(t, err)
	assert.Equal(t, candles, loaded)

	// appending resumes the same file
	writeHistory(t, folder, []models.OHLCV{
		{Timestamp: 180_000, Open: 12, High: 12, Low: 11, Close: 11, Volume: 25},
	})
	loaded, err = LoadHistoricalData("BTC/USDT", "1m", folder)
	assert.Nil(t, err)
	assert.Len(t, loaded, 3)
	assert.Equal(t, int64(180_000), loaded[2].Timestamp)
}

func TestLoadHistoricalDataMissingFile(t *testing.T) {
	_, err := LoadHistoricalData("BTC/USDT", "1m", t.TempDir())
	assert.NotNil(t, err)
}

func TestCSVDataSourceStreamsHistoryThenEnds(t *testing.T) {
	folder := t.TempDir()
	writeHistory(t, folder, []models.OHLCV{
		{Timestamp: 60_000, Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{Timestamp: 120_000, Open: 11, High: 13, Low: 10, Close: 12, Volume: 50},
		{Timestamp: 180_000, Open: 12, High: 12, Low: 11, Close: 11, Volume: 25},
	})

	source, err := NewCSVDataSource("BTC/USDT", "1m", nil, folder, 60_000)
	assert.Nil(t, err)

	ctx := context.Background()
	assert.Nil(t, source.Connect(ctx))

	provider := NewProvider()
	assert.Nil(t, provider.AddDataSource(source))

	updates, err := provider.Stream(ctx)
	assert.Nil(t, err)

	var bars []models.Bar
	sawEnd := false
	for update := range updates {
		if update.Bar.Bar == nil {
			sawEnd = true
			break
		}
		assert.False(t, update.Bar.Live)
		assert.False(t, update.AllLive)
		bars = append(bars, *update.Bar.Bar)
	}

	// sinceTS filtered out the first candle
	assert.True(t, sawEnd)
	assert.Len(t, bars, 2)
	assert.Equal(t, int64(120_000), bars[0].Timestamp)
	assert.Equal(t, "BTC/USDT", bars[0].SourceID)
	assert.Equal(t, "1m", bars[0].Timeframe)
}

func TestProviderRejectsDuplicateSource(t *testing.T) {
	folder := t.TempDir()
	first, err := NewCSVDataSource("BTC/USDT", "1m", nil, folder, 0)
	assert.Nil(t, err)
	second, err := NewCSVDataSource("BTC/USDT", "1m", nil, folder, 0)
	assert.Nil(t, err)

	provider := NewProvider()
	assert.Nil(t, provider.AddDataSource(first))
	assert.NotNil(t, provider.AddDataSource(second))
}
