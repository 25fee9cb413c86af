package exchange

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

func newManagedOrder(t *testing.T, om *OrderManager) *models.Order {
	t.Helper()
	order := models.NewOrder("BTCUSDT", models.PositionTypeLong, models.TradeTypeOpen,
		1, 100, models.OrderTypeLimit, 0)
	assert.Nil(t, om.AddOrder(order))
	return order
}

func TestAddOrderRejectsDuplicates(t *testing.T) {
	om := NewOrderManager()
	order := newManagedOrder(t, om)

	err := om.AddOrder(order)
	assert.NotNil(t, err)
}

func TestLookupByServerID(t *testing.T) {
	om := NewOrderManager()
	order := newManagedOrder(t, om)
	om.SetServerID(order, "srv-9")

	assert.Equal(t, "srv-9", order.ServerOrderID)
	assert.Equal(t, order, om.GetOrderByServerID("srv-9"))
	assert.Nil(t, om.GetOrderByServerID("srv-unknown"))
	assert.Nil(t, om.GetOrderByServerID(""))
}

func TestSetServerIDIsIdempotent(t *testing.T) {
	om := NewOrderManager()
	order := newManagedOrder(t, om)

	om.SetServerID(order, "srv-9")
	om.SetServerID(order, "srv-9")
	om.SetServerID(order, "")

	assert.Equal(t, "srv-9", order.ServerOrderID)
	assert.Equal(t, order, om.GetOrderByServerID("srv-9"))
}

func TestServerIDLookupDuringConcurrentPlacement(t *testing.T) {
	om := NewOrderManager()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		order := models.NewOrder("BTCUSDT", models.PositionTypeLong, models.TradeTypeOpen,
			1, 100, models.OrderTypeLimit, 0)
		assert.Nil(t, om.AddOrder(order))
		serverID := fmt.Sprintf("srv-%d", i)

		wg.Add(2)
		go func() {
			defer wg.Done()
			om.SetServerID(order, serverID)
		}()
		go func() {
			defer wg.Done()
			for om.GetOrderByServerID(serverID) == nil {
				runtime.Gosched()
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 100; i++ {
		found := om.GetOrderByServerID(fmt.Sprintf("srv-%d", i))
		assert.NotNil(t, found)
	}
}

func TestApplyUpdateTransitions(t *testing.T) {
	om := NewOrderManager()
	order := newManagedOrder(t, om)

	om.applyUpdate(order, 0.5, models.OrderStatusOpen)
	assert.Equal(t, models.OrderStatusOpen, order.Status())
	assert.Equal(t, 0.5, order.Filled())

	om.applyUpdate(order, 1, models.OrderStatusClosed)
	assert.Equal(t, models.OrderStatusClosed, order.Status())
	assert.Equal(t, 1.0, order.Filled())
}

func TestApplyUpdateNeverOverwritesTerminalStatus(t *testing.T) {
	om := NewOrderManager()
	order := newManagedOrder(t, om)
	om.applyUpdate(order, 1, models.OrderStatusCanceled)

	om.applyUpdate(order, 1, models.OrderStatusClosed)
	assert.Equal(t, models.OrderStatusCanceled, order.Status())

	om.applyUpdate(order, 1, models.OrderStatusOpen)
	assert.Equal(t, models.OrderStatusCanceled, order.Status())
}

func TestApplyUpdateNeverOverwritesRejection(t *testing.T) {
	om := NewOrderManager()
	order := newManagedOrder(t, om)
	order.SetStatus(models.OrderStatusRejected)

	om.applyUpdate(order, 1, models.OrderStatusClosed)
	assert.Equal(t, models.OrderStatusRejected, order.Status())
}

func TestGetOrdersByStatus(t *testing.T) {
	om := NewOrderManager()
	open := newManagedOrder(t, om)
	closed := newManagedOrder(t, om)
	om.applyUpdate(closed, 1, models.OrderStatusClosed)

	openOrders := om.GetOrdersByStatus(models.OrderStatusOpen)
	assert.Equal(t, 1, len(openOrders))
	assert.Equal(t, open.ClientOrderID, openOrders[0].ClientOrderID)
}
