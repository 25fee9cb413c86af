package models

import (
	"fmt"
	"sync"
	"time"
)

// Position is the holdings ledger for one (pair, position type) combination.
// It never closes as an object: when the balance returns to zero the average
// open price resets and the position can be reopened later.
//
// AddTrade is the single chokepoint where realized pnl is computed.
type Position struct {
	Pair         string
	PositionType PositionType

	mu          sync.RWMutex
	trades      []*Trade
	balance     float64
	averageOpen float64
}

func NewPosition(pair string, positionType PositionType) *Position {
	return &Position{
		Pair:         pair,
		PositionType: positionType,
	}
}

// AddTrade applies a matched trade to the ledger.
//
// OPEN trades move the volume weighted average open price and increase the
// balance. CLOSE trades decrease the balance and assign the realized pnl to
// the trade; closing more than the held balance fails without touching the
// ledger.
func (p *Position) AddTrade(trade *Trade) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if trade.TradeType == TradeTypeOpen {
		p.updateAverageOpen(trade.Quantity, trade.Price)
		p.balance += trade.Quantity
	} else {
		if trade.Quantity > p.balance {
			return fmt.Errorf("closing quantity %f exceeds current balance %f for %s %s",
				trade.Quantity, p.balance, p.Pair, p.PositionType)
		}
		p.balance -= trade.Quantity
		trade.PNL = p.calculatePNL(trade.Quantity, trade.Price)
	}

	p.trades = append(p.trades, trade)

	if p.balance == 0 {
		// flat again, a later open must not inherit the old average
		p.averageOpen = 0
	}
	return nil
}

func (p *Position) calculatePNL(quantity float64, closePrice float64) float64 {
	if p.PositionType == PositionTypeLong {
		return (closePrice - p.averageOpen) * quantity
	}
	return (p.averageOpen - closePrice) * quantity
}

func (p *Position) updateAverageOpen(newQuantity float64, newPrice float64) {
	if p.balance == 0 {
		p.averageOpen = newPrice
		return
	}
	totalValue := p.balance*p.averageOpen + newQuantity*newPrice
	p.averageOpen = totalValue / (p.balance + newQuantity)
}

func (p *Position) Balance() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balance
}

func (p *Position) AverageOpen() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.averageOpen
}

// GetTrade looks up an applied trade by its id.
func (p *Position) GetTrade(tradeID string) *Trade {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, trade := range p.trades {
		if trade.TradeID == tradeID {
			return trade
		}
	}
	return nil
}

// Trades returns the applied trades in application order.
func (p *Position) Trades() []*Trade {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Trade, len(p.trades))
	copy(out, p.trades)
	return out
}

// TotalPNL is the realized pnl summed over all CLOSE trades.
func (p *Position) TotalPNL() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	total := 0.0
	for _, trade := range p.trades {
		if trade.TradeType == TradeTypeClose {
			total += trade.PNL
		}
	}
	return total
}

// TradedQuantity is the quantity accumulated by all OPEN trades.
func (p *Position) TradedQuantity() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	total := 0.0
	for _, trade := range p.trades {
		if trade.TradeType == TradeTypeOpen {
			total += trade.Quantity
		}
	}
	return total
}

// CreatedAt is the timestamp of the earliest OPEN trade, or now when the
// position has not traded yet.
func (p *Position) CreatedAt() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var earliest int64
	for _, trade := range p.trades {
		if trade.TradeType == TradeTypeOpen && (earliest == 0 || trade.Timestamp < earliest) {
			earliest = trade.Timestamp
		}
	}
	if earliest == 0 {
		return time.Now().UnixMilli()
	}
	return earliest
}
