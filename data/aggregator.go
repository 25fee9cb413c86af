package data

import (
	"sync"

	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// OHLCVAggregator folds a stream of candles (or partial candle updates) into
// bars of a single timeframe. Buckets align to epoch time: a bar starts at
// floor(timestamp/bucket)*bucket. Updates must arrive in chronological order.
//
// A bar only completes when an update lands in a later bucket, so a source
// that stops sending data never completes its last bar.
type OHLCVAggregator struct {
	sourceID     string
	timeframe    string
	bucketMillis int64

	mu            sync.Mutex
	currentBar    *models.OHLCV
	previousBar   *models.OHLCV
	completedBars []models.OHLCV
}

func NewOHLCVAggregator(sourceID string, timeframe string) (*OHLCVAggregator, error) {
	bucketMillis, err := helpers.BucketMillis(timeframe)
	if err != nil {
		return nil, err
	}
	return &OHLCVAggregator{
		sourceID:     sourceID,
		timeframe:    timeframe,
		bucketMillis: bucketMillis,
	}, nil
}

// Update folds one candle into the aggregate and reports the state of the
// bucket it landed in. IsNewBarStarted is true for exactly one update per
// completed bar.
func (a *OHLCVAggregator) Update(data models.OHLCV) models.AggregatorResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	bucketStart := (data.Timestamp / a.bucketMillis) * a.bucketMillis
	newBarStarted := false

	if a.currentBar == nil || bucketStart != a.currentBar.Timestamp {
		a.previousBar = a.currentBar
		a.currentBar = &models.OHLCV{
			Timestamp: bucketStart,
			Open:      data.Open,
			High:      data.High,
			Low:       data.Low,
			Close:     data.Close,
			Volume:    data.Volume,
		}
		if a.previousBar != nil {
			a.completedBars = append(a.completedBars, *a.previousBar)
			newBarStarted = true
		}
	} else {
		if data.High > a.currentBar.High {
			a.currentBar.High = data.High
		}
		if data.Low < a.currentBar.Low {
			a.currentBar.Low = data.Low
		}
		a.currentBar.Close = data.Close
		a.currentBar.Volume += data.Volume
	}

	result := models.AggregatorResult{
		CurrentBar:      *a.currentBar,
		IsNewBarStarted: newBarStarted,
	}
	if a.previousBar != nil {
		completed := *a.previousBar
		result.LastCompletedBar = &completed
	}
	return result
}

// CompletedBars returns every bar completed so far, oldest first.
func (a *OHLCVAggregator) CompletedBars() []models.OHLCV {
	a.mu.Lock()
	defer a.mu.Unlock()
	bars := make([]models.OHLCV, len(a.completedBars))
	copy(bars, a.completedBars)
	return bars
}
