package binance

import (
	"testing"

	goBinance "github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

func TestPolledTradeSharesStreamDedupKey(t *testing.T) {
	venueTrade := &goBinance.TradeV3{
		ID:       8641984,
		Symbol:   "BTCUSDT",
		OrderID:  28,
		Price:    "4000.00000000",
		Quantity: "1.00000000",
		Time:     1499865549590,
	}

	polled := unmatchedFromVenueTrade(venueTrade, "28")

	// the stream reports the same execution under the same trade id, so the
	// dedup set must collapse the two reports
	assert.Equal(t, executionTradeID("BTCUSDT", 8641984), polled.TradeID)
	assert.Equal(t, "BTCUSDT-8641984", polled.TradeID)
	assert.Equal(t, "28", polled.ServerOrderID)
	assert.Equal(t, 4000.0, polled.Price)
	assert.Equal(t, 1.0, polled.Quantity)
	assert.Equal(t, int64(1499865549590), polled.Timestamp)
}

func TestOrderSideMapping(t *testing.T) {
	longOpen := &models.Order{PositionType: models.PositionTypeLong, TradeType: models.TradeTypeOpen}
	longClose := &models.Order{PositionType: models.PositionTypeLong, TradeType: models.TradeTypeClose}
	shortOpen := &models.Order{PositionType: models.PositionTypeShort, TradeType: models.TradeTypeOpen}
	shortClose := &models.Order{PositionType: models.PositionTypeShort, TradeType: models.TradeTypeClose}

	assert.Equal(t, goBinance.SideTypeBuy, orderSide(longOpen))
	assert.Equal(t, goBinance.SideTypeSell, orderSide(longClose))
	assert.Equal(t, goBinance.SideTypeSell, orderSide(shortOpen))
	assert.Equal(t, goBinance.SideTypeBuy, orderSide(shortClose))
}
