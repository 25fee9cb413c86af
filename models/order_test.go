package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderDefaults(t *testing.T) {
	order := NewOrder("BTCUSDT", PositionTypeLong, TradeTypeOpen, 1, 100, OrderTypeLimit, 1700000000000)

	assert.Equal(t, OrderStatusOpen, order.Status())
	assert.NotZero(t, order.ClientOrderID)
	assert.Equal(t, "", order.ServerOrderID)
	assert.Equal(t, 0.0, order.Filled())
}

func TestClientOrderIDsAreUnique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateClientOrderID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestNotifyStatusBeforeTransition(t *testing.T) {
	order := NewOrder("BTCUSDT", PositionTypeLong, TradeTypeOpen, 1, 100, OrderTypeLimit, 0)
	notify := order.NotifyStatus(OrderStatusClosed, OrderStatusCanceled)

	order.SetStatus(OrderStatusClosed)

	select {
	case notified := <-notify:
		assert.Equal(t, OrderStatusClosed, notified.Status())
	case <-time.After(time.Second):
		t.Fatal("status notification never arrived")
	}
}

func TestNotifyStatusAfterTransition(t *testing.T) {
	order := NewOrder("BTCUSDT", PositionTypeLong, TradeTypeOpen, 1, 100, OrderTypeLimit, 0)
	order.SetStatus(OrderStatusRejected)

	// subscribing late must still deliver
	select {
	case notified := <-order.NotifyStatus(OrderStatusRejected):
		assert.Equal(t, OrderStatusRejected, notified.Status())
	case <-time.After(time.Second):
		t.Fatal("status notification never arrived")
	}
}

func TestNotifyStatusIgnoresOtherStatuses(t *testing.T) {
	order := NewOrder("BTCUSDT", PositionTypeLong, TradeTypeOpen, 1, 100, OrderTypeLimit, 0)
	notify := order.NotifyStatus(OrderStatusCanceled)

	order.SetStatus(OrderStatusClosed)

	select {
	case <-notify:
		t.Fatal("unexpected notification")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMatchCopiesOrderDirection(t *testing.T) {
	order := NewOrder("BTCUSDT", PositionTypeShort, TradeTypeClose, 1, 100, OrderTypeLimit, 0)
	unmatched := UnmatchedTrade{
		TradeID:       "t1",
		Pair:          "BTCUSDT",
		Price:         99,
		Quantity:      1,
		ServerOrderID: "srv-1",
	}

	trade := unmatched.Match(order)

	assert.Equal(t, PositionTypeShort, trade.PositionType)
	assert.Equal(t, TradeTypeClose, trade.TradeType)
	assert.Equal(t, 0.0, trade.PNL)
	assert.Equal(t, "t1", trade.TradeID)
}

func TestParseOrderStatus(t *testing.T) {
	status, ok := ParseOrderStatus("FILLED")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusClosed, status)

	status, ok = ParseOrderStatus("PARTIALLY_FILLED")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusOpen, status)

	status, ok = ParseOrderStatus("NEW")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusOpen, status)

	_, ok = ParseOrderStatus("PENDING_CANCEL")
	assert.False(t, ok)
}
