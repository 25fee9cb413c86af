package exchange

import (
	"fmt"
	"sync"

	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// PositionManager owns all positions of the session, keyed by pair and
// position type. Positions only come into existence through
// GetOrCreatePosition.
type PositionManager struct {
	mu        sync.RWMutex
	positions map[string]map[models.PositionType]*models.Position
}

func NewPositionManager() *PositionManager {
	return &PositionManager{
		positions: make(map[string]map[models.PositionType]*models.Position),
	}
}

// GetOrCreatePosition returns the position for (pair, positionType), creating
// an empty one on first use. Idempotent.
func (pm *PositionManager) GetOrCreatePosition(pair string, positionType models.PositionType) *models.Position {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	byType, ok := pm.positions[pair]
	if !ok {
		byType = make(map[models.PositionType]*models.Position)
		pm.positions[pair] = byType
	}
	position, ok := byType[positionType]
	if !ok {
		position = models.NewPosition(pair, positionType)
		byType[positionType] = position
		helpers.Logger.Infoln(fmt.Sprintf("created new position for %s %s", pair, positionType))
	}
	return position
}

// AddTrade routes a matched trade into the ledger of its position.
func (pm *PositionManager) AddTrade(trade *models.Trade) error {
	position := pm.GetOrCreatePosition(trade.Pair, trade.PositionType)
	if err := position.AddTrade(trade); err != nil {
		return err
	}
	helpers.Logger.Debugln(fmt.Sprintf("position %s %s balance=%f average_open=%f",
		position.Pair, position.PositionType, position.Balance(), position.AverageOpen()))
	return nil
}

// All returns every position created so far.
func (pm *PositionManager) All() []*models.Position {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	var result []*models.Position
	for _, byType := range pm.positions {
		for _, position := range byType {
			result = append(result, position)
		}
	}
	return result
}

// ListTrades returns trades across all positions, optionally filtered by
// trade type and position type (empty string means no filter).
func (pm *PositionManager) ListTrades(tradeType models.TradeType, positionType models.PositionType) []*models.Trade {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	var result []*models.Trade
	for _, byType := range pm.positions {
		for _, position := range byType {
			if positionType != "" && position.PositionType != positionType {
				continue
			}
			for _, trade := range position.Trades() {
				if tradeType != "" && trade.TradeType != tradeType {
					continue
				}
				result = append(result, trade)
			}
		}
	}
	return result
}

// GetTrade looks up a trade by id across all positions.
func (pm *PositionManager) GetTrade(tradeID string) *models.Trade {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	for _, byType := range pm.positions {
		for _, position := range byType {
			if trade := position.GetTrade(tradeID); trade != nil {
				return trade
			}
		}
	}
	return nil
}

// TotalShortNotional is the aggregate value of all short positions at their
// average open price. The paper exchange uses it for funds validation.
func (pm *PositionManager) TotalShortNotional() float64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	total := 0.0
	for _, byType := range pm.positions {
		if position, ok := byType[models.PositionTypeShort]; ok {
			total += position.Balance() * position.AverageOpen()
		}
	}
	return total
}
