package backtesting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

func closingTrade(timestamp int64, pnl float64) *models.Trade {
	return &models.Trade{
		UnmatchedTrade: models.UnmatchedTrade{
			Timestamp: timestamp,
			Pair:      "BTCUSDT",
			Quantity:  1,
		},
		PositionType: models.PositionTypeLong,
		TradeType:    models.TradeTypeClose,
		PNL:          pnl,
	}
}

func TestTradeJournalBalancesAndReturns(t *testing.T) {
	journal := TradeJournal(1000, []*models.Trade{
		closingTrade(1, 100),
		closingTrade(2, -200),
		closingTrade(3, 300),
	})

	assert.Equal(t, []float64{1000, 1100, 900, 1200}, journal.AccountBalances)
	assert.Equal(t, []float64{0, 100, -200, 300}, journal.TradePNLs)
	assert.InDelta(t, 0.1, journal.PeriodReturns[1], 1e-9)
	assert.InDelta(t, -200.0/1100.0, journal.PeriodReturns[2], 1e-9)
	assert.InDelta(t, 0.2, journal.TotalReturns[3], 1e-9)
	// peak was 1100, trough 900
	assert.InDelta(t, 200.0/1100.0, journal.MaxDrawdown, 1e-9)
}

func TestTradeJournalWithoutTrades(t *testing.T) {
	journal := TradeJournal(1000, nil)

	assert.Equal(t, []float64{1000}, journal.AccountBalances)
	assert.Equal(t, []float64{0}, journal.TotalReturns)
	assert.Equal(t, 0.0, journal.MaxDrawdown)
}

func TestSessionStatsStreaksAndAverages(t *testing.T) {
	openTrade := &models.Trade{
		UnmatchedTrade: models.UnmatchedTrade{Timestamp: 1, Pair: "BTCUSDT", Quantity: 1},
		PositionType:   models.PositionTypeLong,
		TradeType:      models.TradeTypeOpen,
	}

	stats := SessionStats(1000, []*models.Trade{
		openTrade,
		closingTrade(2, 100),
		closingTrade(3, 200),
		closingTrade(4, -50),
		closingTrade(5, -150),
		closingTrade(6, -100),
		closingTrade(7, 300),
	})

	assert.Equal(t, 3, stats.NumWinningTrades)
	assert.Equal(t, 3, stats.NumLosingTrades)
	assert.Equal(t, 6, stats.CloseTradeCount)
	assert.Equal(t, 2, stats.WinStreak)
	assert.Equal(t, 3, stats.LossStreak)
	assert.InDelta(t, 200.0, stats.AverageWin, 1e-9)
	assert.InDelta(t, -100.0, stats.AverageLoss, 1e-9)
	assert.Equal(t, 600.0, stats.WinningTradesPNL)
	assert.Equal(t, -300.0, stats.LosingTradesPNL)
	assert.InDelta(t, 1.0, stats.WinLossRatio, 1e-9)
	assert.InDelta(t, math.Sqrt(32000.0), stats.PNLStdDev, 1e-9)
	assert.Equal(t, 1300.0, stats.TradeJournal.AccountBalances[len(stats.TradeJournal.AccountBalances)-1])
}

func TestSessionStatsIgnoresOpeningTrades(t *testing.T) {
	stats := SessionStats(1000, []*models.Trade{
		{
			UnmatchedTrade: models.UnmatchedTrade{Timestamp: 1, Pair: "BTCUSDT", Quantity: 1},
			PositionType:   models.PositionTypeLong,
			TradeType:      models.TradeTypeOpen,
		},
	})

	assert.Equal(t, 0, stats.CloseTradeCount)
	assert.Equal(t, 0.0, stats.AverageWin)
	assert.Equal(t, 0.0, stats.WinLossRatio)
	assert.Equal(t, 0.0, stats.PNLStdDev)
	assert.Equal(t, []float64{1000}, stats.TradeJournal.AccountBalances)
}
