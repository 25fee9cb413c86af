package exchange

import (
	"fmt"
	"sync"

	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// OrderManager owns every order of the session, keyed by client order id.
// Orders are never deleted, the session keeps its full history.
type OrderManager struct {
	mu         sync.RWMutex
	orders     map[int64]*models.Order
	byServerID map[string]*models.Order
}

func NewOrderManager() *OrderManager {
	return &OrderManager{
		orders:     make(map[int64]*models.Order),
		byServerID: make(map[string]*models.Order),
	}
}

// AddOrder registers a new order. Reusing a client order id is a programmer
// error and fails hard.
func (om *OrderManager) AddOrder(order *models.Order) error {
	om.mu.Lock()
	defer om.mu.Unlock()

	if _, exists := om.orders[order.ClientOrderID]; exists {
		return fmt.Errorf("order with client_order_id %d already exists", order.ClientOrderID)
	}
	om.orders[order.ClientOrderID] = order
	helpers.Logger.Debugln("order " + order.ToJSON())
	return nil
}

// GetOrderByClientID returns the order for a client order id, or nil.
func (om *OrderManager) GetOrderByClientID(clientOrderID int64) *models.Order {
	om.mu.RLock()
	defer om.mu.RUnlock()
	return om.orders[clientOrderID]
}

// SetServerID records the venue-assigned id of an order and indexes it.
// Both the field write and the index update happen under the manager lock:
// the reconciliation goroutine looks orders up by server id concurrently
// with order placement, so a bare field write would race. Idempotent.
func (om *OrderManager) SetServerID(order *models.Order, serverOrderID string) {
	if serverOrderID == "" {
		return
	}
	om.mu.Lock()
	defer om.mu.Unlock()
	order.ServerOrderID = serverOrderID
	om.byServerID[serverOrderID] = order
}

// GetOrderByServerID returns the order carrying the given server order id,
// or nil. Only ids registered through SetServerID are found.
func (om *OrderManager) GetOrderByServerID(serverOrderID string) *models.Order {
	if serverOrderID == "" {
		return nil
	}
	om.mu.RLock()
	defer om.mu.RUnlock()
	return om.byServerID[serverOrderID]
}

// GetOrdersByStatus returns all orders currently in the given status.
func (om *OrderManager) GetOrdersByStatus(status models.OrderStatus) []*models.Order {
	om.mu.RLock()
	defer om.mu.RUnlock()
	var result []*models.Order
	for _, order := range om.orders {
		if order.Status() == status {
			result = append(result, order)
		}
	}
	return result
}

// applyUpdate moves an order to the reported filled amount and status.
// It is idempotent: if neither changed, nothing happens. Status changes are
// only applied to OPEN orders; terminal states (including a synchronous
// REJECTED) are never overwritten by later async updates. Called exclusively
// from the reconciliation pipeline.
func (om *OrderManager) applyUpdate(order *models.Order, filled float64, status models.OrderStatus) {
	statusChanged := order.Status() != status
	filledChanged := order.Filled() != filled

	if !statusChanged && !filledChanged {
		return
	}

	order.SetFilled(filled)

	if statusChanged {
		if order.Status() != models.OrderStatusOpen {
			helpers.Logger.Debugln(fmt.Sprintf("ignoring status %s for terminal order %d (%s)",
				status, order.ClientOrderID, order.Status()))
		} else {
			order.SetStatus(status)
		}
	}

	helpers.Logger.Debugln("order " + order.ToJSON())
}
