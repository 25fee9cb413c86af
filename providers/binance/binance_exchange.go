package binance

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/joho/godotenv"
	"gitlab.com/aoterocom/AOAlgoRuntime/exchange"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// BinanceExchange adapts the Binance spot API to the venue primitives. Order
// and trade reports arrive over the user data stream; a polling backstop
// covers executions the stream missed.
type BinanceExchange struct {
	core          *exchange.Exchange
	binanceClient *binance.Client
	apiKey        string
	apiSecret     string
	pollInterval  time.Duration
}

func NewBinanceExchange() *BinanceExchange {
	binanceExchange := BinanceExchange{
		pollInterval: 30 * time.Second,
	}
	binanceExchange.apiKey = os.Getenv("binanceAPIKey")
	binanceExchange.apiSecret = os.Getenv("binanceAPISecret")
	binanceExchange.binanceClient = binance.NewClient(binanceExchange.apiKey, binanceExchange.apiSecret)
	return &binanceExchange
}

func init() {
	cwd, _ := os.Getwd()
	dir := os.Getenv("CONF_FILE")
	if dir == "" {
		dir = "/conf.env"
	}
	_ = godotenv.Load(cwd + dir)
}

func (be *BinanceExchange) Bind(core *exchange.Exchange) {
	be.core = core
}

func (be *BinanceExchange) Type() models.ExchangeType {
	return models.ExchangeTypeLive
}

// orderSide maps the position and intent onto the spot side. Shorts here are
// sell-first positions on an asset the account already holds.
func orderSide(order *models.Order) binance.SideType {
	if order.PositionType == models.PositionTypeLong {
		if order.TradeType == models.TradeTypeOpen {
			return binance.SideTypeBuy
		}
		return binance.SideTypeSell
	}
	if order.TradeType == models.TradeTypeOpen {
		return binance.SideTypeSell
	}
	return binance.SideTypeBuy
}

func (be *BinanceExchange) CreateLimitOrder(ctx context.Context, order *models.Order) (string, error) {
	response, err := be.binanceClient.NewCreateOrderService().Symbol(order.Pair).
		Side(orderSide(order)).
		Type(binance.OrderTypeLimit).
		TimeInForce(binance.TimeInForceTypeGTC).
		Quantity(strconv.FormatFloat(order.Quantity, 'f', -1, 64)).
		Price(fmt.Sprintf("%.2f", order.Price)).
		NewClientOrderID(strconv.FormatInt(order.ClientOrderID, 10)).
		Do(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(response.OrderID, 10), nil
}

func (be *BinanceExchange) CreateMarketOrder(ctx context.Context, order *models.Order) (string, error) {
	response, err := be.binanceClient.NewCreateOrderService().Symbol(order.Pair).
		Side(orderSide(order)).
		Type(binance.OrderTypeMarket).
		Quantity(strconv.FormatFloat(order.Quantity, 'f', -1, 64)).
		NewClientOrderID(strconv.FormatInt(order.ClientOrderID, 10)).
		Do(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(response.OrderID, 10), nil
}

func (be *BinanceExchange) CancelOrder(ctx context.Context, order *models.Order) (bool, error) {
	serverOrderID, err := strconv.ParseInt(order.ServerOrderID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid server order id %q: %w", order.ServerOrderID, err)
	}
	_, err = be.binanceClient.NewCancelOrderService().Symbol(order.Pair).
		OrderID(serverOrderID).Do(ctx)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (be *BinanceExchange) CancelAllOrders(ctx context.Context, pair string) (bool, error) {
	_, err := be.binanceClient.NewCancelOpenOrdersService().Symbol(pair).Do(ctx)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (be *BinanceExchange) GetBalances(ctx context.Context) (*models.Balances, error) {
	account, err := be.binanceClient.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, err
	}

	balances := models.NewBalances()
	for _, b := range account.Balances {
		free, _ := strconv.ParseFloat(b.Free, 64)
		locked, _ := strconv.ParseFloat(b.Locked, 64)
		if free == 0 && locked == 0 {
			continue
		}
		balances.Free[b.Asset] = free
		balances.Used[b.Asset] = locked
		balances.Total[b.Asset] = free + locked
		balances.Currencies[b.Asset] = models.BalanceData{Free: free, Used: locked, Total: free + locked}
	}
	return balances, nil
}

// Start launches the user data stream and the polling backstop. Both run
// until ctx is canceled, reconnecting with backoff on failures.
func (be *BinanceExchange) Start(ctx context.Context) error {
	go be.userDataMonitor(ctx)
	go be.orderPollMonitor(ctx)
	return nil
}

func (be *BinanceExchange) userDataMonitor(ctx context.Context) {
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return
		}
		if err := be.serveUserDataStream(ctx); err != nil {
			delay := helpers.BackoffDelay(attempt, time.Second, time.Minute)
			helpers.Logger.Errorln(fmt.Sprintf("user data stream interrupted, reconnecting in %s: %v", delay, err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0
	}
}

func (be *BinanceExchange) serveUserDataStream(ctx context.Context) error {
	listenKey, err := be.binanceClient.NewStartUserStreamService().Do(ctx)
	if err != nil {
		return err
	}

	keepaliveCtx, stopKeepalive := context.WithCancel(ctx)
	defer stopKeepalive()
	go be.keepAliveListenKey(keepaliveCtx, listenKey)

	wsErrs := make(chan error, 1)
	doneC, stopC, err := binance.WsUserDataServe(listenKey, be.wsUserDataHandler, func(err error) {
		select {
		case wsErrs <- err:
		default:
		}
	})
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		stopC <- struct{}{}
		<-doneC
		return nil
	case <-doneC:
		select {
		case err := <-wsErrs:
			return err
		default:
			return fmt.Errorf("user data stream closed")
		}
	}
}

func (be *BinanceExchange) keepAliveListenKey(ctx context.Context, listenKey string) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := be.binanceClient.NewKeepaliveUserStreamService().ListenKey(listenKey).Do(ctx); err != nil {
				helpers.Logger.Warnln(fmt.Sprintf("listen key keepalive failed: %v", err))
			}
		}
	}
}

func (be *BinanceExchange) wsUserDataHandler(event *binance.WsUserDataEvent) {
	if event.Event != binance.UserDataEventTypeExecutionReport {
		return
	}
	report := event.OrderUpdate
	serverOrderID := strconv.FormatInt(report.Id, 10)

	if report.TradeId > 0 {
		price, _ := strconv.ParseFloat(report.LatestPrice, 64)
		quantity, _ := strconv.ParseFloat(report.LatestVolume, 64)
		if quantity > 0 {
			be.core.SubmitTrade(models.UnmatchedTrade{
				TradeID:       executionTradeID(report.Symbol, report.TradeId),
				Timestamp:     report.TransactionTime,
				Pair:          report.Symbol,
				Price:         price,
				Quantity:      quantity,
				ServerOrderID: serverOrderID,
			})
		}
	}

	status, ok := models.ParseOrderStatus(string(report.Status))
	if !ok {
		helpers.Logger.Debugln(fmt.Sprintf("ignoring execution report status %s for order %s",
			report.Status, serverOrderID))
		return
	}
	filled, _ := strconv.ParseFloat(report.FilledVolume, 64)
	be.core.SubmitOrderUpdate(0, serverOrderID, filled, status)
}

// executionTradeID keys an execution by the id the venue assigned to it.
// The websocket feed and the poll backstop report the same execution under
// the same key, so the dedup set collapses them.
func executionTradeID(symbol string, tradeID int64) string {
	return fmt.Sprintf("%s-%d", symbol, tradeID)
}

func unmatchedFromVenueTrade(venueTrade *binance.TradeV3, serverOrderID string) models.UnmatchedTrade {
	price, _ := strconv.ParseFloat(venueTrade.Price, 64)
	quantity, _ := strconv.ParseFloat(venueTrade.Quantity, 64)
	return models.UnmatchedTrade{
		TradeID:       executionTradeID(venueTrade.Symbol, venueTrade.ID),
		Timestamp:     venueTrade.Time,
		Pair:          venueTrade.Symbol,
		Price:         price,
		Quantity:      quantity,
		ServerOrderID: serverOrderID,
	}
}

// orderPollMonitor reconciles open orders against the REST API. It catches
// executions the websocket dropped by re-reporting the venue's own trades
// for each open order.
func (be *BinanceExchange) orderPollMonitor(ctx context.Context) {
	ticker := time.NewTicker(be.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			be.pollOpenOrders(ctx)
		}
	}
}

func (be *BinanceExchange) pollOpenOrders(ctx context.Context) {
	for _, order := range be.core.Orders.GetOrdersByStatus(models.OrderStatusOpen) {
		serverOrderID, err := strconv.ParseInt(order.ServerOrderID, 10, 64)
		if err != nil {
			continue
		}

		venueTrades, err := be.binanceClient.NewListTradesService().Symbol(order.Pair).
			OrderId(serverOrderID).Do(ctx)
		if err != nil {
			helpers.Logger.Warnln(fmt.Sprintf("trade poll of order %s failed: %v", order.ServerOrderID, err))
			continue
		}
		for _, venueTrade := range venueTrades {
			be.core.SubmitTrade(unmatchedFromVenueTrade(venueTrade, order.ServerOrderID))
		}

		remote, err := be.binanceClient.NewGetOrderService().Symbol(order.Pair).
			OrderID(serverOrderID).Do(ctx)
		if err != nil {
			helpers.Logger.Warnln(fmt.Sprintf("poll of order %s failed: %v", order.ServerOrderID, err))
			continue
		}
		if status, ok := models.ParseOrderStatus(string(remote.Status)); ok {
			executed, _ := strconv.ParseFloat(remote.ExecutedQuantity, 64)
			be.core.SubmitOrderUpdate(0, order.ServerOrderID, executed, status)
		}
	}
}
