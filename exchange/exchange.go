package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/interfaces"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// Config tunes the reconciliation and cancellation behavior of the core.
type Config struct {
	// MatchRetryInterval is how long an unmatched trade waits before the
	// pipeline retries resolving it against the known orders.
	MatchRetryInterval time.Duration
	// MatchRetryAttempts is how many retries an unmatched trade gets before
	// it is dropped as foreign.
	MatchRetryAttempts int
	// CancelRetryAttempts is how many extra cancel calls are made after a
	// failed first attempt before the order is forced to EXPIRED.
	CancelRetryAttempts int
	CancelBackoffBase   time.Duration
	CancelBackoffMax    time.Duration
}

func DefaultConfig() Config {
	return Config{
		MatchRetryInterval:  1 * time.Second,
		MatchRetryAttempts:  1,
		CancelRetryAttempts: 2,
		CancelBackoffBase:   1 * time.Second,
		CancelBackoffMax:    60 * time.Second,
	}
}

// CoreBinder is implemented by venues that need a reference back to the core
// to report trades and order updates. The paper venue is the main user.
type CoreBinder interface {
	Bind(core *Exchange)
}

// FillObserver is implemented by venues that want a synchronous callback for
// every trade applied to a position, before any order status derived from the
// trade is reported. The paper venue updates its cash and reports the order
// CLOSED from here, which keeps fills and closes ordered.
type FillObserver interface {
	TradeApplied(trade *models.Trade)
}

// Flusher is implemented by venues with asynchronous internal work, so
// backtests can wait for all in-flight activity before reading results.
type Flusher interface {
	Flush(ctx context.Context) error
}

// tradeEvent carries a raw venue trade report through the pipeline. attempt
// counts how many times matching has already been tried.
type tradeEvent struct {
	trade   models.UnmatchedTrade
	attempt int
}

// orderUpdateEvent carries a venue order status report. forced marks a close
// that already waited out the parking grace period.
type orderUpdateEvent struct {
	clientOrderID int64
	serverOrderID string
	filled        float64
	status        models.OrderStatus
	forced        bool
}

type pendingClose struct {
	filled float64
	timer  *time.Timer
}

// Exchange is the orchestration core for one trading session. It owns the
// order, trade and position bookkeeping and drives a venue adapter through
// the interfaces.Venue primitives.
//
// All venue notifications funnel through a single queue consumed by one
// pipeline goroutine, so a trade submitted before an order update is always
// applied to its position before that update is visible.
type Exchange struct {
	cfg       Config
	venue     interfaces.Venue
	Orders    *OrderManager
	Trades    *TradeManager
	Positions *PositionManager
	Tracker   *StatusTracker

	queue *eventQueue

	pendingMu    sync.Mutex
	pendingClose map[int64]*pendingClose

	subscribersMu sync.Mutex
	subscribers   []chan *models.Trade

	cancel context.CancelFunc
}

func New(venue interfaces.Venue, tracker *StatusTracker, cfg Config) *Exchange {
	core := &Exchange{
		cfg:          cfg,
		venue:        venue,
		Orders:       NewOrderManager(),
		Trades:       NewTradeManager(),
		Positions:    NewPositionManager(),
		Tracker:      tracker,
		queue:        newEventQueue(),
		pendingClose: make(map[int64]*pendingClose),
	}
	if binder, ok := venue.(CoreBinder); ok {
		binder.Bind(core)
	}
	return core
}

func (e *Exchange) Venue() interfaces.Venue {
	return e.venue
}

// Start launches the reconciliation pipeline and the venue feeds. Everything
// stops when ctx is canceled.
func (e *Exchange) Start(ctx context.Context) error {
	ctx, e.cancel = context.WithCancel(ctx)
	go e.run(ctx)
	if err := e.venue.Start(ctx); err != nil {
		e.cancel()
		return err
	}
	return nil
}

func (e *Exchange) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

// Open places an order that opens (or grows) a position.
func (e *Exchange) Open(ctx context.Context, pair string, positionType models.PositionType,
	quantity float64, price float64, orderType models.OrderType) (*models.Order, error) {
	return e.createOrder(ctx, pair, positionType, models.TradeTypeOpen, quantity, price, orderType)
}

// Close places an order that closes (or shrinks) a position.
func (e *Exchange) Close(ctx context.Context, pair string, positionType models.PositionType,
	quantity float64, price float64, orderType models.OrderType) (*models.Order, error) {
	return e.createOrder(ctx, pair, positionType, models.TradeTypeClose, quantity, price, orderType)
}

func (e *Exchange) createOrder(ctx context.Context, pair string, positionType models.PositionType,
	tradeType models.TradeType, quantity float64, price float64, orderType models.OrderType) (*models.Order, error) {

	order := models.NewOrder(pair, positionType, tradeType, quantity, price, orderType,
		e.Tracker.HighestTimestamp())

	if err := e.Orders.AddOrder(order); err != nil {
		return nil, err
	}

	var serverOrderID string
	var err error
	switch orderType {
	case models.OrderTypeMarket:
		serverOrderID, err = e.venue.CreateMarketOrder(ctx, order)
	default:
		serverOrderID, err = e.venue.CreateLimitOrder(ctx, order)
	}

	if err != nil || serverOrderID == "" {
		order.SetStatus(models.OrderStatusRejected)
		helpers.Logger.Warnln(fmt.Sprintf("order %d rejected by venue: %v", order.ClientOrderID, err))
		return order, err
	}

	e.Orders.SetServerID(order, serverOrderID)
	helpers.Logger.Infoln(fmt.Sprintf("placed %s %s %s order %d (%s): %f %s @ %f",
		tradeType, positionType, orderType, order.ClientOrderID, serverOrderID, quantity, pair, price))
	return order, nil
}

// CancelOrder cancels an OPEN order, retrying with backoff. When every
// attempt fails the order is forced to EXPIRED and false is returned.
func (e *Exchange) CancelOrder(ctx context.Context, order *models.Order) (bool, error) {
	if order.Status() != models.OrderStatusOpen {
		return true, nil
	}

	var lastErr error
	for attempt := 0; attempt <= e.cfg.CancelRetryAttempts; attempt++ {
		if attempt > 0 {
			delay := helpers.BackoffDelay(attempt-1, e.cfg.CancelBackoffBase, e.cfg.CancelBackoffMax)
			helpers.Logger.Debugln(fmt.Sprintf("cancel of order %d failed, retrying in %s",
				order.ClientOrderID, delay))
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(delay):
			}
			if order.Status() != models.OrderStatusOpen {
				return true, nil
			}
		}

		ok, err := e.venue.CancelOrder(ctx, order)
		if err == nil && ok {
			e.SubmitOrderUpdate(order.ClientOrderID, order.ServerOrderID,
				order.Filled(), models.OrderStatusCanceled)
			return true, nil
		}
		lastErr = err
	}

	helpers.Logger.Errorln(fmt.Sprintf("giving up canceling order %d, marking it expired: %v",
		order.ClientOrderID, lastErr))
	e.SubmitOrderUpdate(order.ClientOrderID, order.ServerOrderID,
		order.Filled(), models.OrderStatusExpired)
	return false, lastErr
}

// CancelAllOrders cancels every managed OPEN order, optionally restricted to
// one pair. If any per-order cancel fails, the venue-wide sweep is used as a
// last resort.
func (e *Exchange) CancelAllOrders(ctx context.Context, pair string) error {
	failed := false
	for _, order := range e.Orders.GetOrdersByStatus(models.OrderStatusOpen) {
		if pair != "" && order.Pair != pair {
			continue
		}
		if ok, _ := e.CancelOrder(ctx, order); !ok {
			failed = true
		}
	}

	if failed {
		helpers.Logger.Warnln(fmt.Sprintf("falling back to venue-wide cancel sweep for %s", pair))
		if _, err := e.venue.CancelAllOrders(ctx, pair); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exchange) GetBalances(ctx context.Context) (*models.Balances, error) {
	return e.venue.GetBalances(ctx)
}

// SubmitTrade enqueues a raw trade report from the venue.
func (e *Exchange) SubmitTrade(trade models.UnmatchedTrade) {
	e.queue.push(tradeEvent{trade: trade})
}

// SubmitOrderUpdate enqueues an order status report from the venue. Either
// the client order id or the server order id may be zero-valued, not both.
func (e *Exchange) SubmitOrderUpdate(clientOrderID int64, serverOrderID string,
	filled float64, status models.OrderStatus) {
	e.queue.push(orderUpdateEvent{
		clientOrderID: clientOrderID,
		serverOrderID: serverOrderID,
		filled:        filled,
		status:        status,
	})
}

// SubscribeTrades returns a channel receiving every trade after it has been
// applied to its position. Receivers must keep up; a full channel blocks the
// pipeline.
func (e *Exchange) SubscribeTrades() <-chan *models.Trade {
	ch := make(chan *models.Trade, 64)
	e.subscribersMu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.subscribersMu.Unlock()
	return ch
}

// Flush blocks until the venue has no in-flight work and the pipeline has
// processed every queued event. Backtests call it once per bar so results are
// deterministic.
func (e *Exchange) Flush(ctx context.Context) error {
	if flusher, ok := e.venue.(Flusher); ok {
		if err := flusher.Flush(ctx); err != nil {
			return err
		}
	}
	return e.queue.drain(ctx)
}

func (e *Exchange) run(ctx context.Context) {
	for {
		item, ok := e.queue.pop(ctx)
		if !ok {
			return
		}
		switch ev := item.(type) {
		case tradeEvent:
			e.handleTrade(ctx, ev)
		case orderUpdateEvent:
			e.handleOrderUpdate(ev)
		}
		e.queue.taskDone()
	}
}

func (e *Exchange) handleTrade(ctx context.Context, ev tradeEvent) {
	trade := ev.trade

	if ev.attempt == 0 && !e.Trades.markProcessed(trade.TradeID) {
		helpers.Logger.Debugln(fmt.Sprintf("ignoring duplicate trade %s", trade.TradeID))
		return
	}

	order := e.Orders.GetOrderByServerID(trade.ServerOrderID)
	if order == nil {
		if ev.attempt < e.cfg.MatchRetryAttempts {
			helpers.Logger.Debugln(fmt.Sprintf("trade %s has no matching order yet, retrying in %s",
				trade.TradeID, e.cfg.MatchRetryInterval))
			time.AfterFunc(e.cfg.MatchRetryInterval, func() {
				if ctx.Err() != nil {
					return
				}
				e.queue.push(tradeEvent{trade: trade, attempt: ev.attempt + 1})
			})
		} else {
			helpers.Logger.Warnln(fmt.Sprintf("dropping trade %s for unknown order %s",
				trade.TradeID, trade.ServerOrderID))
		}
		return
	}

	matched := trade.Match(order)
	if err := e.Positions.AddTrade(matched); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("cannot apply trade %s to position: %v", trade.TradeID, err))
		return
	}
	order.AttachTrade(matched)
	e.Trades.record(matched)
	helpers.Logger.Infoln(fmt.Sprintf("applied %s %s trade %s: %f %s @ %f (pnl %f)",
		matched.TradeType, matched.PositionType, matched.TradeID,
		matched.Quantity, matched.Pair, matched.Price, matched.PNL))

	if observer, ok := e.venue.(FillObserver); ok {
		observer.TradeApplied(matched)
	}
	e.publishTrade(matched)
	e.unparkClose(order)
}

func (e *Exchange) handleOrderUpdate(ev orderUpdateEvent) {
	var order *models.Order
	if ev.clientOrderID != 0 {
		order = e.Orders.GetOrderByClientID(ev.clientOrderID)
	} else {
		order = e.Orders.GetOrderByServerID(ev.serverOrderID)
	}
	if order == nil {
		helpers.Logger.Warnln(fmt.Sprintf("order update for unknown order (client %d, server %s)",
			ev.clientOrderID, ev.serverOrderID))
		return
	}

	if ev.status == models.OrderStatusClosed && order.TradeCount() == 0 && !ev.forced {
		e.parkClose(order, ev)
		return
	}

	if ev.forced && order.TradeCount() == 0 && order.Status() == models.OrderStatusOpen {
		helpers.Logger.Warnln(fmt.Sprintf("closing order %d without any recorded trade", order.ClientOrderID))
	}
	e.Orders.applyUpdate(order, ev.filled, ev.status)
}

// parkClose holds back a CLOSED update for an order that has no applied trade
// yet, giving late trade reports time to land first. After the grace period
// the close goes through anyway.
func (e *Exchange) parkClose(order *models.Order, ev orderUpdateEvent) {
	order.SetFilled(ev.filled)

	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	if _, exists := e.pendingClose[order.ClientOrderID]; exists {
		e.pendingClose[order.ClientOrderID].filled = ev.filled
		return
	}

	grace := e.cfg.MatchRetryInterval * time.Duration(e.cfg.MatchRetryAttempts+1)
	helpers.Logger.Debugln(fmt.Sprintf("parking close of order %d for %s awaiting its trade",
		order.ClientOrderID, grace))

	pending := &pendingClose{filled: ev.filled}
	pending.timer = time.AfterFunc(grace, func() {
		e.pendingMu.Lock()
		pending, exists := e.pendingClose[order.ClientOrderID]
		if exists {
			delete(e.pendingClose, order.ClientOrderID)
		}
		e.pendingMu.Unlock()
		if !exists {
			return
		}
		e.queue.push(orderUpdateEvent{
			clientOrderID: order.ClientOrderID,
			serverOrderID: order.ServerOrderID,
			filled:        pending.filled,
			status:        models.OrderStatusClosed,
			forced:        true,
		})
	})
	e.pendingClose[order.ClientOrderID] = pending
}

// unparkClose releases a parked close once the order has its trade.
func (e *Exchange) unparkClose(order *models.Order) {
	e.pendingMu.Lock()
	pending, exists := e.pendingClose[order.ClientOrderID]
	if exists {
		delete(e.pendingClose, order.ClientOrderID)
		pending.timer.Stop()
	}
	e.pendingMu.Unlock()
	if !exists {
		return
	}
	e.Orders.applyUpdate(order, pending.filled, models.OrderStatusClosed)
}

func (e *Exchange) publishTrade(trade *models.Trade) {
	e.subscribersMu.Lock()
	subscribers := make([]chan *models.Trade, len(e.subscribers))
	copy(subscribers, e.subscribers)
	e.subscribersMu.Unlock()

	for _, ch := range subscribers {
		ch <- trade
	}
}
