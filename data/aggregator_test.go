package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

func minuteCandle(minute int64, open, high, low, close, volume float64) models.OHLCV {
	return models.OHLCV{
		Timestamp: minute * 60_000,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}
}

func TestAggregatorMergesWithinBucket(t *testing.T) {
	agg, err := NewOHLCVAggregator("BTCUSDT", "5m")
	assert.Nil(t, err)

	result := agg.Update(minuteCandle(0, 10, 12, 9, 11, 100))
	assert.False(t, result.IsNewBarStarted)
	assert.Nil(t, result.LastCompletedBar)

	result = agg.Update(minuteCandle(1, 11, 15, 10, 14, 50))
	assert.False(t, result.IsNewBarStarted)
	assert.Equal(t, 10.0, result.CurrentBar.Open)
	assert.Equal(t, 15.0, result.CurrentBar.High)
	assert.Equal(t, 9.0, result.CurrentBar.Low)
	assert.Equal(t, 14.0, result.CurrentBar.Close)
	assert.Equal(t, 150.0, result.CurrentBar.Volume)

	result = agg.Update(minuteCandle(2, 14, 14, 5, 6, 25))
	assert.Equal(t, 5.0, result.CurrentBar.Low)
	assert.Equal(t, 175.0, result.CurrentBar.Volume)
}

func TestAggregatorCompletesBarOnBucketRollover(t *testing.T) {
	agg, err := NewOHLCVAggregator("BTCUSDT", "5m")
	assert.Nil(t, err)

	agg.Update(minuteCandle(0, 10, 12, 9, 11, 100))
	agg.Update(minuteCandle(4, 11, 13, 10, 12, 60))

	result := agg.Update(minuteCandle(5, 12, 14, 11, 13, 30))
	assert.True(t, result.IsNewBarStarted)
	assert.NotNil(t, result.LastCompletedBar)
	assert.Equal(t, int64(0), result.LastCompletedBar.Timestamp)
	assert.Equal(t, 10.0, result.LastCompletedBar.Open)
	assert.Equal(t, 12.0, result.LastCompletedBar.Close)
	assert.Equal(t, 160.0, result.LastCompletedBar.Volume)
	assert.Equal(t, int64(5*60_000), result.CurrentBar.Timestamp)

	// subsequent updates in the new bucket do not re-signal the rollover
	result = agg.Update(minuteCandle(6, 13, 13, 12, 12, 10))
	assert.False(t, result.IsNewBarStarted)
	assert.Equal(t, int64(0), result.LastCompletedBar.Timestamp)

	completed := agg.CompletedBars()
	assert.Len(t, completed, 1)
	assert.Equal(t, int64(0), completed[0].Timestamp)
}

func TestAggregatorBucketAlignment(t *testing.T) {
	agg, err := NewOHLCVAggregator("BTCUSDT", "1h")
	assert.Nil(t, err)

	// 10:37 lands in the 10:00 bucket
	result := agg.Update(models.OHLCV{Timestamp: 38_220_000, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1})
	assert.Equal(t, int64(36_000_000), result.CurrentBar.Timestamp)
}

func TestAggregatorRejectsUnknownTimeframe(t *testing.T) {
	_, err := NewOHLCVAggregator("BTCUSDT", "7x")
	assert.NotNil(t, err)
}

func TestAggregatorSetOwnTimeframeLast(t *testing.T) {
	set, err := newAggregatorSet("BTCUSDT", "1m", []string{"5m"})
	assert.Nil(t, err)
	assert.Equal(t, []string{"5m", "1m"}, set.order)

	updates := set.UpdateAggregates(minuteCandle(0, 10, 12, 9, 11, 100))
	assert.Len(t, updates, 2)
	assert.Equal(t, "5m", updates[0].Timeframe)
	assert.Equal(t, "1m", updates[1].Timeframe)
}

func TestAggregatorSetRejectsOwnTimeframeAggregation(t *testing.T) {
	_, err := newAggregatorSet("BTCUSDT", "1m", []string{"5m", "1m"})
	assert.NotNil(t, err)
}

func TestStoreBuildingBarSemantics(t *testing.T) {
	store := NewStore()

	// updating an empty series is a no-op
	store.Update("BTCUSDT", "1m", minuteCandle(0, 1, 1, 1, 1, 1))
	assert.Equal(t, 0, store.Len("BTCUSDT", "1m"))

	store.Append("BTCUSDT", "1m", minuteCandle(0, 10, 12, 9, 11, 100))
	store.Update("BTCUSDT", "1m", minuteCandle(0, 10, 13, 9, 12, 140))

	last, ok := store.Last("BTCUSDT", "1m")
	assert.True(t, ok)
	assert.Equal(t, 12.0, last.Close)
	assert.Equal(t, 1, store.Len("BTCUSDT", "1m"))

	store.Append("BTCUSDT", "1m", minuteCandle(1, 12, 12, 11, 11, 20))
	assert.Equal(t, 2, store.Len("BTCUSDT", "1m"))

	list := store.List("BTCUSDT", "1m")
	assert.Equal(t, int64(0), list[0].Timestamp)
	assert.Equal(t, int64(60_000), list[1].Timestamp)
}
