package database

import (
	"context"
	"fmt"

	"gitlab.com/aoterocom/AOAlgoRuntime/exchange"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
)

// Recorder persists the session as it unfolds: every applied trade, the
// order it filled and a snapshot of the position it moved. Persistence
// failures are logged and never reach the trading path.
type Recorder struct {
	dbService *DBService
	core      *exchange.Exchange
}

func NewRecorder(dbService *DBService, core *exchange.Exchange) *Recorder {
	return &Recorder{
		dbService: dbService,
		core:      core,
	}
}

func (r *Recorder) Start(ctx context.Context) {
	trades := r.core.SubscribeTrades()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case trade := <-trades:
				if err := r.dbService.SaveTrade(trade); err != nil {
					helpers.Logger.Errorln(fmt.Sprintf("recording trade %s failed: %v", trade.TradeID, err))
				}
				if order := r.core.Orders.GetOrderByServerID(trade.ServerOrderID); order != nil {
					if err := r.dbService.SaveOrder(order); err != nil {
						helpers.Logger.Errorln(fmt.Sprintf("recording order %d failed: %v", order.ClientOrderID, err))
					}
				}
				position := r.core.Positions.GetOrCreatePosition(trade.Pair, trade.PositionType)
				if err := r.dbService.SavePositionSnapshot(position, trade.Timestamp); err != nil {
					helpers.Logger.Errorln(fmt.Sprintf("recording position snapshot for %s failed: %v", trade.Pair, err))
				}
			}
		}
	}()
}
