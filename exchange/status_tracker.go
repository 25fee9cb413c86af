package exchange

import (
	"fmt"
	"sync"

	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// StatusTracker caches the latest mark price per pair and the highest
// timestamp seen across all pairs. The highest timestamp is the logical "now"
// of a backtest, which is what makes paper trading work without a wall clock.
//
// One tracker is created per session and injected wherever it is needed, so
// parallel backtests stay isolated from each other.
type StatusTracker struct {
	mu               sync.RWMutex
	lastSeenPrice    map[string]models.MarkPrice
	highestTimestamp int64
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		lastSeenPrice: make(map[string]models.MarkPrice),
	}
}

// UpdateMark records a price observation. Updates older than the last seen
// timestamp for the pair are ignored.
func (t *StatusTracker) UpdateMark(pair string, timestamp int64, markPrice float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.lastSeenPrice[pair]
	if !ok || timestamp > last.Timestamp {
		t.lastSeenPrice[pair] = models.MarkPrice{Timestamp: timestamp, Mark: markPrice}
		if timestamp > t.highestTimestamp {
			t.highestTimestamp = timestamp
		}
	}
}

// LatestPrice returns the most recent mark price for a pair. Meant for paper
// trading; live trading should use the venue's own quotes.
func (t *StatusTracker) LatestPrice(pair string) (models.MarkPrice, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if price, ok := t.lastSeenPrice[pair]; ok {
		return price, nil
	}
	return models.MarkPrice{}, fmt.Errorf("no price data available for pair %s", pair)
}

// HighestTimestamp returns the highest timestamp received so far across all
// pairs. Before any data has arrived it falls back to the wall clock, since
// some modules need a timestamp right at startup.
func (t *StatusTracker) HighestTimestamp() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.highestTimestamp > 0 {
		return t.highestTimestamp
	}
	return helpers.NowTS()
}
