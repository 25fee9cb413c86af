package interfaces

import (
	"context"

	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

type (
	// Strategy is user trading logic plugged into the runner.
	Strategy interface {
		// Init runs once before any data flows. Use it to register
		// OnBar callbacks and set up indicators.
		Init(session StrategySession) error

		// OnTick runs for every raw data source update. During backtests
		// that is once per bar, live it can be many times per bar.
		OnTick(ctx context.Context, session StrategySession, bar models.Bar) error
	}

	// StrategySession is the surface the runner exposes to strategy code.
	StrategySession interface {
		Mode() models.ExecutionMode

		// OnBar registers a callback fired for every completed bar of the
		// given timeframe, across all data sources.
		OnBar(timeframe string, handler func(bar models.Bar))

		// Data returns all stored bars for a source and timeframe; Get
		// returns only the most recent one (which may still be building).
		Data(sourceID string, timeframe string) []models.OHLCV
		Get(sourceID string, timeframe string) *models.OHLCV

		Open(ctx context.Context, pair string, positionType models.PositionType,
			quantity float64, orderType models.OrderType, price float64) (*models.Order, error)
		Close(ctx context.Context, pair string, positionType models.PositionType,
			quantity float64, orderType models.OrderType, price float64) (*models.Order, error)
		CancelOrder(ctx context.Context, order *models.Order) (bool, error)
		CancelAllOrders(ctx context.Context, pair string) (bool, error)
		GetBalances(ctx context.Context) (*models.Balances, error)
		Position(pair string, positionType models.PositionType) *models.Position
	}
)
