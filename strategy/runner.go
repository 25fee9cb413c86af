package strategy

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/aoterocom/AOAlgoRuntime/data"
	"gitlab.com/aoterocom/AOAlgoRuntime/exchange"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/interfaces"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// Runner drives a strategy over the merged data stream: it folds every update
// into the aggregators and the store, keeps the mark prices current, fires
// completed-bar callbacks and calls the strategy's OnTick.
//
// The execution mode starts as PRELOAD against a live venue (orders are
// skipped while history replays) and flips to LIVE once every data source has
// caught up. Against the paper venue the mode is PAPER for the whole run and
// the run ends when the historical data does.
type Runner struct {
	strategy interfaces.Strategy
	provider *data.Provider
	store    *data.Store
	core     *exchange.Exchange
	tracker  *exchange.StatusTracker

	mu       sync.RWMutex
	mode     models.ExecutionMode
	handlers map[string][]func(bar models.Bar)
}

func NewRunner(strat interfaces.Strategy, provider *data.Provider, store *data.Store,
	core *exchange.Exchange, tracker *exchange.StatusTracker) *Runner {
	mode := models.ExecutionModePaper
	if core.Venue().Type() == models.ExchangeTypeLive {
		mode = models.ExecutionModePreload
	}
	helpers.Logger.Infoln(fmt.Sprintf("mode set to %s", mode))
	return &Runner{
		strategy: strat,
		provider: provider,
		store:    store,
		core:     core,
		tracker:  tracker,
		mode:     mode,
		handlers: make(map[string][]func(bar models.Bar)),
	}
}

func (r *Runner) Core() *exchange.Exchange {
	return r.core
}

// Run blocks until the data runs out (backtests), ctx is canceled, or a
// strategy callback fails.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.strategy.Init(r); err != nil {
		return fmt.Errorf("strategy init: %w", err)
	}
	if err := r.core.Start(ctx); err != nil {
		return err
	}
	defer r.core.Stop()

	stream, err := r.provider.Stream(ctx)
	if err != nil {
		return err
	}

	for update := range stream {
		if update.Bar.Bar == nil {
			if r.Mode() == models.ExecutionModePaper {
				helpers.Logger.Infoln("backtest data exhausted")
				return r.core.Flush(ctx)
			}
			continue
		}

		if r.Mode() == models.ExecutionModePreload && update.AllLive {
			r.setMode(models.ExecutionModeLive)
		}

		if err := r.processBar(ctx, *update.Bar.Bar); err != nil {
			return err
		}

		// waiting out the simulated fills keeps backtests deterministic
		if r.Mode() == models.ExecutionModePaper {
			if err := r.core.Flush(ctx); err != nil {
				return err
			}
		}
	}
	return ctx.Err()
}

func (r *Runner) processBar(ctx context.Context, bar models.Bar) error {
	source := r.provider.Source(bar.SourceID)
	if source == nil {
		return fmt.Errorf("update from unregistered data source %s", bar.SourceID)
	}

	for _, update := range source.UpdateAggregates(bar.OHLCV) {
		r.updateDataStore(update.SourceID, update.Timeframe, update.Result)
	}

	r.tracker.UpdateMark(bar.SourceID, bar.OHLCV.Timestamp, bar.OHLCV.Close)
	return r.strategy.OnTick(ctx, r, bar)
}

// updateDataStore keeps the last element of each series as the bar still
// building. Completed-bar callbacks run before the new bar is stored, so
// handlers reading the store see the completed bar as the latest one.
func (r *Runner) updateDataStore(sourceID string, timeframe string, result models.AggregatorResult) {
	if !result.IsNewBarStarted {
		if r.store.Len(sourceID, timeframe) == 0 {
			r.store.Append(sourceID, timeframe, result.CurrentBar)
		} else {
			r.store.Update(sourceID, timeframe, result.CurrentBar)
		}
		return
	}

	if r.store.Len(sourceID, timeframe) == 0 {
		r.store.Append(sourceID, timeframe, *result.LastCompletedBar)
	} else {
		r.store.Update(sourceID, timeframe, *result.LastCompletedBar)
	}
	r.dispatchBar(models.Bar{
		Timestamp: result.LastCompletedBar.Timestamp,
		SourceID:  sourceID,
		Timeframe: timeframe,
		OHLCV:     *result.LastCompletedBar,
	})
	r.store.Append(sourceID, timeframe, result.CurrentBar)
}

func (r *Runner) dispatchBar(bar models.Bar) {
	r.mu.RLock()
	handlers := r.handlers[bar.Timeframe]
	r.mu.RUnlock()
	for _, handler := range handlers {
		handler(bar)
	}
}

func (r *Runner) Mode() models.ExecutionMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

func (r *Runner) setMode(mode models.ExecutionMode) {
	r.mu.Lock()
	r.mode = mode
	r.mu.Unlock()
	helpers.Logger.Infoln(fmt.Sprintf("mode set to %s", mode))
}

// OnBar registers a callback for completed bars of a timeframe.
func (r *Runner) OnBar(timeframe string, handler func(bar models.Bar)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[timeframe] = append(r.handlers[timeframe], handler)
}

func (r *Runner) Data(sourceID string, timeframe string) []models.OHLCV {
	return r.store.List(sourceID, timeframe)
}

func (r *Runner) Get(sourceID string, timeframe string) *models.OHLCV {
	last, ok := r.store.Last(sourceID, timeframe)
	if !ok {
		return nil
	}
	return &last
}

func (r *Runner) Open(ctx context.Context, pair string, positionType models.PositionType,
	quantity float64, orderType models.OrderType, price float64) (*models.Order, error) {
	if r.Mode() == models.ExecutionModePreload {
		helpers.Logger.Warnln("skipping open order in PRELOAD mode")
		return nil, nil
	}
	return r.core.Open(ctx, pair, positionType, quantity, price, orderType)
}

func (r *Runner) Close(ctx context.Context, pair string, positionType models.PositionType,
	quantity float64, orderType models.OrderType, price float64) (*models.Order, error) {
	if r.Mode() == models.ExecutionModePreload {
		helpers.Logger.Warnln("skipping close order in PRELOAD mode")
		return nil, nil
	}
	return r.core.Close(ctx, pair, positionType, quantity, price, orderType)
}

func (r *Runner) CancelOrder(ctx context.Context, order *models.Order) (bool, error) {
	return r.core.CancelOrder(ctx, order)
}

func (r *Runner) CancelAllOrders(ctx context.Context, pair string) (bool, error) {
	if err := r.core.CancelAllOrders(ctx, pair); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Runner) GetBalances(ctx context.Context) (*models.Balances, error) {
	return r.core.GetBalances(ctx)
}

func (r *Runner) Position(pair string, positionType models.PositionType) *models.Position {
	return r.core.Positions.GetOrCreatePosition(pair, positionType)
}
