package paper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/AOAlgoRuntime/exchange"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

func startPaperSession(t *testing.T, initialCash float64) (*exchange.Exchange, *PaperExchange, context.Context) {
	t.Helper()
	tracker := exchange.NewStatusTracker()
	venue := NewPaperExchange(tracker, initialCash, "USDT")
	core := exchange.New(venue, tracker, exchange.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	assert.Nil(t, core.Start(ctx))
	return core, venue, ctx
}

func TestLongRoundTripCash(t *testing.T) {
	core, venue, ctx := startPaperSession(t, 10000)

	order, err := core.Open(ctx, "BTCUSDT", models.PositionTypeLong, 1, 5000, models.OrderTypeLimit)
	assert.Nil(t, err)
	assert.Nil(t, core.Flush(ctx))
	assert.Equal(t, 5000.0, venue.Cash())
	assert.Equal(t, models.OrderStatusClosed, order.Status())

	position := core.Positions.GetOrCreatePosition("BTCUSDT", models.PositionTypeLong)
	assert.Equal(t, 1.0, position.Balance())
	assert.Equal(t, 5000.0, position.AverageOpen())

	closeOrder, err := core.Close(ctx, "BTCUSDT", models.PositionTypeLong, 1, 4000, models.OrderTypeLimit)
	assert.Nil(t, err)
	assert.Nil(t, core.Flush(ctx))
	assert.Equal(t, 9000.0, venue.Cash())
	assert.Equal(t, models.OrderStatusClosed, closeOrder.Status())
	assert.Equal(t, 0.0, position.Balance())
	assert.Equal(t, -1000.0, position.TotalPNL())
}

func TestShortRoundTripCash(t *testing.T) {
	core, venue, ctx := startPaperSession(t, 10000)

	_, err := core.Open(ctx, "BTCUSDT", models.PositionTypeShort, 1, 5000, models.OrderTypeLimit)
	assert.Nil(t, err)
	assert.Nil(t, core.Flush(ctx))
	// opening a short does not move the cash
	assert.Equal(t, 10000.0, venue.Cash())

	_, err = core.Close(ctx, "BTCUSDT", models.PositionTypeShort, 1, 4000, models.OrderTypeLimit)
	assert.Nil(t, err)
	assert.Nil(t, core.Flush(ctx))
	assert.Equal(t, 11000.0, venue.Cash())

	position := core.Positions.GetOrCreatePosition("BTCUSDT", models.PositionTypeShort)
	assert.Equal(t, 0.0, position.Balance())
	assert.Equal(t, 1000.0, position.TotalPNL())
}

func TestInsufficientFundsLeavesCashUntouched(t *testing.T) {
	core, venue, ctx := startPaperSession(t, 10000)

	order, err := core.Open(ctx, "BTCUSDT", models.PositionTypeLong, 3, 5000, models.OrderTypeLimit)
	assert.NotNil(t, err)
	var fundsErr *exchange.InsufficientFundsError
	assert.ErrorAs(t, err, &fundsErr)
	assert.Equal(t, 15000.0, fundsErr.Required)
	assert.Equal(t, 10000.0, fundsErr.Free)
	assert.Equal(t, models.OrderStatusRejected, order.Status())

	assert.Nil(t, core.Flush(ctx))
	assert.Equal(t, 10000.0, venue.Cash())
	assert.Equal(t, 0.0, core.Positions.GetOrCreatePosition("BTCUSDT", models.PositionTypeLong).Balance())
}

func TestShortReservesAgainstExistingExposure(t *testing.T) {
	core, _, ctx := startPaperSession(t, 10000)

	_, err := core.Open(ctx, "BTCUSDT", models.PositionTypeShort, 1, 6000, models.OrderTypeLimit)
	assert.Nil(t, err)
	assert.Nil(t, core.Flush(ctx))

	// 6000 already short, another 6000 would need 12000 in reserve
	_, err = core.Open(ctx, "BTCUSDT", models.PositionTypeShort, 1, 6000, models.OrderTypeLimit)
	assert.NotNil(t, err)
}

func TestCloseRejectedWithoutPosition(t *testing.T) {
	core, venue, ctx := startPaperSession(t, 10000)

	order, err := core.Close(ctx, "BTCUSDT", models.PositionTypeLong, 1, 5000, models.OrderTypeLimit)
	assert.NotNil(t, err)
	var fundsErr *exchange.InsufficientFundsError
	assert.ErrorAs(t, err, &fundsErr)
	assert.Equal(t, 1.0, fundsErr.Required)
	assert.Equal(t, 0.0, fundsErr.Free)
	assert.Equal(t, models.OrderStatusRejected, order.Status())
	assert.Equal(t, 10000.0, venue.Cash())
}

func TestBurstOfOrdersAllFillBeforeFlush(t *testing.T) {
	core, venue, ctx := startPaperSession(t, 10000)

	orders := make([]*models.Order, 0, 200)
	for i := 0; i < 200; i++ {
		order, err := core.Open(ctx, "BTCUSDT", models.PositionTypeLong, 1, 10, models.OrderTypeLimit)
		assert.Nil(t, err)
		orders = append(orders, order)
	}
	assert.Nil(t, core.Flush(ctx))

	for _, order := range orders {
		assert.Equal(t, models.OrderStatusClosed, order.Status())
		assert.Equal(t, 1, order.TradeCount())
	}
	assert.Equal(t, 200.0, core.Positions.GetOrCreatePosition("BTCUSDT", models.PositionTypeLong).Balance())
	assert.Equal(t, 8000.0, venue.Cash())
}

func TestMarketOrderFillsAtMark(t *testing.T) {
	core, venue, ctx := startPaperSession(t, 10000)
	core.Tracker.UpdateMark("BTCUSDT", time.Now().UnixMilli(), 2500)

	order, err := core.Open(ctx, "BTCUSDT", models.PositionTypeLong, 2, 0, models.OrderTypeMarket)
	assert.Nil(t, err)
	assert.Nil(t, core.Flush(ctx))

	assert.Equal(t, 2500.0, order.Price)
	assert.Equal(t, 5000.0, venue.Cash())
	assert.Equal(t, models.OrderStatusClosed, order.Status())
}

func TestPartialThenFullCloseCash(t *testing.T) {
	core, venue, ctx := startPaperSession(t, 10000)

	_, err := core.Open(ctx, "BTCUSDT", models.PositionTypeLong, 2, 2000, models.OrderTypeLimit)
	assert.Nil(t, err)
	assert.Nil(t, core.Flush(ctx))
	assert.Equal(t, 6000.0, venue.Cash())

	_, err = core.Close(ctx, "BTCUSDT", models.PositionTypeLong, 1, 3000, models.OrderTypeLimit)
	assert.Nil(t, err)
	assert.Nil(t, core.Flush(ctx))
	assert.Equal(t, 9000.0, venue.Cash())

	position := core.Positions.GetOrCreatePosition("BTCUSDT", models.PositionTypeLong)
	assert.Equal(t, 1.0, position.Balance())
	assert.Equal(t, 2000.0, position.AverageOpen())

	_, err = core.Close(ctx, "BTCUSDT", models.PositionTypeLong, 1, 3000, models.OrderTypeLimit)
	assert.Nil(t, err)
	assert.Nil(t, core.Flush(ctx))
	assert.Equal(t, 12000.0, venue.Cash())
	assert.Equal(t, 0.0, position.Balance())
	assert.Equal(t, 2000.0, position.TotalPNL())
}
