package utils

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"gitlab.com/aoterocom/AOAlgoRuntime/data"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// DownloadHistory pulls klines for a pair from Binance in 1000-candle pages
// and appends them to the CSV history folder, ready for backtests. It resumes
// after the last candle already on disk.
func DownloadHistory(ctx context.Context, binanceClient *binance.Client,
	pair string, timeframe string, csvDataFolder string, sinceTS int64) (int, error) {

	if existing, err := data.LoadHistoricalData(pair, timeframe, csvDataFolder); err == nil && len(existing) > 0 {
		lastTS := existing[len(existing)-1].Timestamp
		if lastTS >= sinceTS {
			sinceTS = lastTS + 1
		}
	}

	total := 0
	for {
		klines, err := binanceClient.NewKlinesService().Symbol(pair).
			Interval(timeframe).StartTime(sinceTS).Limit(1000).Do(ctx)
		if err != nil {
			return total, fmt.Errorf("downloading klines for %s: %w", pair, err)
		}
		if len(klines) == 0 {
			break
		}

		candles := make([]models.OHLCV, 0, len(klines))
		for _, k := range klines {
			candles = append(candles, models.OHLCV{
				Timestamp: k.OpenTime,
				Open:      parseFloat(k.Open),
				High:      parseFloat(k.High),
				Low:       parseFloat(k.Low),
				Close:     parseFloat(k.Close),
				Volume:    parseFloat(k.Volume),
			})
		}
		if err := data.AppendToCSV(pair, timeframe, csvDataFolder, candles); err != nil {
			return total, err
		}

		total += len(candles)
		sinceTS = candles[len(candles)-1].Timestamp + 1
		helpers.Logger.Infoln(fmt.Sprintf("downloaded %d %s candles for %s", total, timeframe, pair))

		if len(klines) < 1000 {
			break
		}
	}
	return total, nil
}

func parseFloat(value string) float64 {
	parsed, _ := strconv.ParseFloat(value, 64)
	return parsed
}
