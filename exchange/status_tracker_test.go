package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerKeepsLatestMark(t *testing.T) {
	tracker := NewStatusTracker()
	tracker.UpdateMark("BTCUSDT", 1000, 20000)
	tracker.UpdateMark("BTCUSDT", 2000, 21000)

	price, err := tracker.LatestPrice("BTCUSDT")
	assert.Nil(t, err)
	assert.Equal(t, 21000.0, price.Mark)
	assert.Equal(t, int64(2000), price.Timestamp)
}

func TestTrackerIgnoresStaleUpdates(t *testing.T) {
	tracker := NewStatusTracker()
	tracker.UpdateMark("BTCUSDT", 2000, 21000)
	tracker.UpdateMark("BTCUSDT", 1000, 20000)

	price, err := tracker.LatestPrice("BTCUSDT")
	assert.Nil(t, err)
	assert.Equal(t, 21000.0, price.Mark)
}

func TestTrackerHighestTimestampAcrossPairs(t *testing.T) {
	tracker := NewStatusTracker()
	tracker.UpdateMark("BTCUSDT", 1000, 20000)
	tracker.UpdateMark("ETHUSDT", 5000, 1500)

	assert.Equal(t, int64(5000), tracker.HighestTimestamp())
}

func TestTrackerUnknownPair(t *testing.T) {
	tracker := NewStatusTracker()
	_, err := tracker.LatestPrice("BTCUSDT")
	assert.NotNil(t, err)
}

func TestTrackerFallsBackToWallClock(t *testing.T) {
	tracker := NewStatusTracker()
	assert.Greater(t, tracker.HighestTimestamp(), int64(0))
}
