package paper

import (
	"context"
	"sync"

	"gitlab.com/aoterocom/AOAlgoRuntime/exchange"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// PaperExchange simulates a venue for backtesting and dry runs. Every order
// fills immediately and completely at its limit price, priced off the session
// tracker instead of the wall clock. It holds a single cash balance in the
// quote currency.
type PaperExchange struct {
	core    *exchange.Exchange
	tracker *exchange.StatusTracker

	mu       sync.Mutex
	cash     float64
	currency string

	wg sync.WaitGroup
}

func NewPaperExchange(tracker *exchange.StatusTracker, initialCash float64, currency string) *PaperExchange {
	return &PaperExchange{
		tracker:  tracker,
		cash:     initialCash,
		currency: currency,
	}
}

// Bind receives the core reference once the core is constructed. Simulated
// fills are reported back through it.
func (pe *PaperExchange) Bind(core *exchange.Exchange) {
	pe.core = core
}

func (pe *PaperExchange) Type() models.ExchangeType {
	return models.ExchangeTypePaper
}

func (pe *PaperExchange) Start(ctx context.Context) error {
	return nil
}

// CreateLimitOrder validates funds, assigns a server order id and schedules
// the simulated fill. Validation failures reject the order synchronously and
// leave the cash untouched.
func (pe *PaperExchange) CreateLimitOrder(ctx context.Context, order *models.Order) (string, error) {
	if err := pe.validateFunds(order); err != nil {
		return "", err
	}

	serverOrderID := helpers.GUID()
	// index the id now: the simulated fill below can reach the pipeline
	// before the creation call returns to the order layer
	pe.core.Orders.SetServerID(order, serverOrderID)
	pe.wg.Add(1)
	go func() {
		defer pe.wg.Done()
		pe.core.SubmitTrade(models.UnmatchedTrade{
			TradeID:       helpers.GUID(),
			Timestamp:     pe.tracker.HighestTimestamp(),
			Pair:          order.Pair,
			Price:         order.Price,
			Quantity:      order.Quantity,
			ServerOrderID: serverOrderID,
		})
	}()
	return serverOrderID, nil
}

// CreateMarketOrder prices the order at the latest mark and fills it like a
// limit order.
func (pe *PaperExchange) CreateMarketOrder(ctx context.Context, order *models.Order) (string, error) {
	mark, err := pe.tracker.LatestPrice(order.Pair)
	if err != nil {
		return "", err
	}
	order.Price = mark.Mark
	return pe.CreateLimitOrder(ctx, order)
}

func (pe *PaperExchange) validateFunds(order *models.Order) error {
	pe.mu.Lock()
	defer pe.mu.Unlock()

	notional := order.Quantity * order.Price

	switch order.TradeType {
	case models.TradeTypeOpen:
		required := notional
		if order.PositionType == models.PositionTypeShort {
			// Shorts reserve cash against the whole short exposure, so a
			// falling account cannot keep adding short risk.
			required += pe.core.Positions.TotalShortNotional()
		}
		if pe.cash < required {
			return &exchange.InsufficientFundsError{
				Pair:     order.Pair,
				Required: required,
				Free:     pe.cash,
			}
		}
	case models.TradeTypeClose:
		position := pe.core.Positions.GetOrCreatePosition(order.Pair, order.PositionType)
		if position.Balance() < order.Quantity {
			return &exchange.InsufficientFundsError{
				Pair:     order.Pair,
				Required: order.Quantity,
				Free:     position.Balance(),
			}
		}
	}
	return nil
}

// TradeApplied runs inside the reconciliation pipeline right after the trade
// moved its position. The cash update and the CLOSED report happen here, so
// the position ledger is always current before the order completes.
func (pe *PaperExchange) TradeApplied(trade *models.Trade) {
	pe.mu.Lock()
	notional := trade.Quantity * trade.Price
	switch {
	case trade.TradeType == models.TradeTypeOpen && trade.PositionType == models.PositionTypeLong:
		pe.cash -= notional
	case trade.TradeType == models.TradeTypeClose && trade.PositionType == models.PositionTypeLong:
		pe.cash += notional
	case trade.TradeType == models.TradeTypeClose && trade.PositionType == models.PositionTypeShort:
		pe.cash += trade.PNL
	}
	pe.mu.Unlock()

	order := pe.core.Orders.GetOrderByServerID(trade.ServerOrderID)
	if order == nil {
		return
	}
	filled := order.Filled() + trade.Quantity
	status := models.OrderStatusOpen
	if filled >= order.Quantity {
		status = models.OrderStatusClosed
	}
	pe.core.SubmitOrderUpdate(order.ClientOrderID, order.ServerOrderID, filled, status)
}

// CancelOrder always succeeds. Fills are instantaneous here, so a cancel
// either races a fill already in flight or targets a finished order.
func (pe *PaperExchange) CancelOrder(ctx context.Context, order *models.Order) (bool, error) {
	return true, nil
}

func (pe *PaperExchange) CancelAllOrders(ctx context.Context, pair string) (bool, error) {
	return true, nil
}

func (pe *PaperExchange) GetBalances(ctx context.Context) (*models.Balances, error) {
	pe.mu.Lock()
	cash := pe.cash
	pe.mu.Unlock()

	debt := pe.core.Positions.TotalShortNotional()
	balances := models.NewBalances()
	balances.Free[pe.currency] = cash
	balances.Total[pe.currency] = cash
	balances.Debt[pe.currency] = debt
	balances.Currencies[pe.currency] = models.BalanceData{Free: cash, Total: cash, Debt: debt}
	return balances, nil
}

// Flush waits for every scheduled fill to reach the core queue.
func (pe *PaperExchange) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		pe.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Cash returns the current quote currency balance.
func (pe *PaperExchange) Cash() float64 {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	return pe.cash
}
