package models

import (
	"encoding/json"
	"sync"
)

// Order is the local lifecycle record of a single exchange order.
//
// Identity is twofold: ClientOrderID is generated locally before the order is
// sent out, ServerOrderID is assigned by the venue and stays empty until the
// order is acknowledged (or forever, when the venue rejects it synchronously).
//
// Status changes can be observed through NotifyStatus, which works no matter
// whether the subscriber attaches before or after the status was reached.
type Order struct {
	Pair          string
	PositionType  PositionType
	TradeType     TradeType
	Quantity      float64
	Price         float64
	OrderType     OrderType
	ClientOrderID int64
	ServerOrderID string
	Timestamp     int64

	mu      sync.Mutex
	status  OrderStatus
	filled  float64
	trades  []*Trade
	waiters []statusWaiter
}

type statusWaiter struct {
	statuses []OrderStatus
	ch       chan *Order
}

// NewOrder creates an OPEN order with a fresh client order id.
func NewOrder(pair string, positionType PositionType, tradeType TradeType,
	quantity float64, price float64, orderType OrderType, timestamp int64) *Order {
	return &Order{
		Pair:          pair,
		PositionType:  positionType,
		TradeType:     tradeType,
		Quantity:      quantity,
		Price:         price,
		OrderType:     orderType,
		ClientOrderID: GenerateClientOrderID(),
		Timestamp:     timestamp,
		status:        OrderStatusOpen,
	}
}

func (o *Order) Status() OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Order) Filled() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.filled
}

// SetFilled stores the cumulative filled quantity as reported by the venue.
func (o *Order) SetFilled(filled float64) {
	o.mu.Lock()
	o.filled = filled
	o.mu.Unlock()
}

// SetStatus transitions the order and wakes every NotifyStatus subscriber
// waiting for the new status. The caller is responsible for transition rules,
// SetStatus itself applies whatever it is given.
func (o *Order) SetStatus(status OrderStatus) {
	o.mu.Lock()
	o.status = status
	remaining := o.waiters[:0]
	for _, w := range o.waiters {
		if waiterMatches(w, status) {
			w.ch <- o
		} else {
			remaining = append(remaining, w)
		}
	}
	o.waiters = remaining
	o.mu.Unlock()
}

// NotifyStatus returns a channel that receives the order once it reaches one
// of the given statuses. If the order is already in one of them the channel is
// served immediately, so subscribing after a synchronous rejection still
// works. The channel fires at most once.
func (o *Order) NotifyStatus(statuses ...OrderStatus) <-chan *Order {
	ch := make(chan *Order, 1)
	w := statusWaiter{statuses: statuses, ch: ch}
	o.mu.Lock()
	if waiterMatches(w, o.status) {
		ch <- o
	} else {
		o.waiters = append(o.waiters, w)
	}
	o.mu.Unlock()
	return ch
}

func waiterMatches(w statusWaiter, status OrderStatus) bool {
	for _, s := range w.statuses {
		if s == status {
			return true
		}
	}
	return false
}

// AttachTrade links a matched trade to the order it filled.
func (o *Order) AttachTrade(trade *Trade) {
	o.mu.Lock()
	o.trades = append(o.trades, trade)
	o.mu.Unlock()
}

// Trades returns the trades applied against this order so far.
func (o *Order) Trades() []*Trade {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*Trade, len(o.trades))
	copy(out, o.trades)
	return out
}

func (o *Order) TradeCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.trades)
}

func (o *Order) ToJSON() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	data, _ := json.Marshal(map[string]interface{}{
		"pair":            o.Pair,
		"position_type":   o.PositionType,
		"trade_type":      o.TradeType,
		"quantity":        o.Quantity,
		"price":           o.Price,
		"order_type":      o.OrderType,
		"order_status":    o.status,
		"client_order_id": o.ClientOrderID,
		"server_order_id": o.ServerOrderID,
		"timestamp":       o.Timestamp,
		"filled":          o.filled,
	})
	return string(data)
}
