package exchange

import (
	"sync"

	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// TradeManager keeps the global trade log and the set of trade ids already
// applied, so the same fill reported twice never moves a position twice.
type TradeManager struct {
	mu        sync.RWMutex
	processed map[string]bool
	trades    []*models.Trade
}

func NewTradeManager() *TradeManager {
	return &TradeManager{
		processed: make(map[string]bool),
	}
}

// markProcessed records the trade id and reports whether it was new.
func (tm *TradeManager) markProcessed(tradeID string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.processed[tradeID] {
		return false
	}
	tm.processed[tradeID] = true
	return true
}

// record appends a matched trade to the global log.
func (tm *TradeManager) record(trade *models.Trade) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.trades = append(tm.trades, trade)
}

// ListTrades returns trades in application order, optionally filtered by
// pair, trade type and position type (empty string means no filter).
func (tm *TradeManager) ListTrades(pair string, tradeType models.TradeType, positionType models.PositionType) []*models.Trade {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	var result []*models.Trade
	for _, trade := range tm.trades {
		if pair != "" && trade.Pair != pair {
			continue
		}
		if tradeType != "" && trade.TradeType != tradeType {
			continue
		}
		if positionType != "" && trade.PositionType != positionType {
			continue
		}
		result = append(result, trade)
	}
	return result
}

// GetTrade looks up a trade by id in the global log.
func (tm *TradeManager) GetTrade(tradeID string) *models.Trade {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	for _, trade := range tm.trades {
		if trade.TradeID == tradeID {
			return trade
		}
	}
	return nil
}

// Count returns the number of applied trades.
func (tm *TradeManager) Count() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.trades)
}
