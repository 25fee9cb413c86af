package interfaces

import (
	"context"

	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// DataUpdate is one element of a data source stream. Bar is nil when a
// historical source has delivered its last bar. Live is false while the
// source replays history and true once it is caught up to real time.
type DataUpdate struct {
	Bar  *models.Bar
	Live bool
}

// DataSource produces an ordered stream of bars for a single instrument.
type DataSource interface {
	SourceID() string
	Timeframe() string

	// Aggregations lists the higher timeframes this source aggregates into,
	// always including the source's own timeframe.
	Aggregations() []string

	// UpdateAggregates feeds one OHLCV update into every aggregator and
	// returns the per-timeframe results.
	UpdateAggregates(ohlcv models.OHLCV) []AggregationUpdate

	Connect(ctx context.Context) error

	// Read pushes updates into out until the data runs out or ctx is
	// canceled. Historical sources push a final DataUpdate with a nil Bar.
	Read(ctx context.Context, out chan<- DataUpdate) error

	Disconnect() error
}

// AggregationUpdate is the result of folding one bar into one timeframe.
type AggregationUpdate struct {
	SourceID  string
	Timeframe string
	Result    models.AggregatorResult
}
