package backtesting

import (
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// TradeJournal walks the closed trades in order and tracks the account
// balance after each one, the per-trade and cumulative returns and the
// maximum drawdown from the running peak.
func TradeJournal(startingBalance float64, closedTrades []*models.Trade) models.TradeJournal {
	balance := startingBalance
	peakBalance := startingBalance
	maxDrawdown := 0.0

	timestamps := []int64{0}
	pnls := []float64{0}
	accountBalances := []float64{startingBalance}
	periodReturns := []float64{0}

	if len(closedTrades) > 0 {
		timestamps = []int64{closedTrades[0].Timestamp}
	}

	for _, trade := range closedTrades {
		previousBalance := balance
		balance += trade.PNL

		timestamps = append(timestamps, trade.Timestamp)
		pnls = append(pnls, trade.PNL)
		accountBalances = append(accountBalances, balance)
		periodReturns = append(periodReturns, (balance-previousBalance)/previousBalance)

		if balance > peakBalance {
			peakBalance = balance
		}
		drawdown := (peakBalance - balance) / peakBalance
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	totalReturns := make([]float64, len(accountBalances))
	for i, accountBalance := range accountBalances {
		totalReturns[i] = (accountBalance - startingBalance) / startingBalance
	}

	return models.TradeJournal{
		TradeTimestamps: timestamps,
		TradePNLs:       pnls,
		AccountBalances: accountBalances,
		PeriodReturns:   periodReturns,
		TotalReturns:    totalReturns,
		MaxDrawdown:     maxDrawdown,
	}
}

// SessionStats summarizes the closing trades of a session: win/loss counts
// and streaks, average win and loss and the trade journal.
func SessionStats(startingBalance float64, trades []*models.Trade) models.SessionStats {
	var (
		winStreak         int
		lossStreak        int
		currentWinStreak  int
		currentLossStreak int
		wins              []float64
		losses            []float64
		closedPNLs        []float64
		closedTrades      []*models.Trade
	)

	for _, trade := range trades {
		if trade.TradeType != models.TradeTypeClose {
			continue
		}
		closedTrades = append(closedTrades, trade)
		closedPNLs = append(closedPNLs, trade.PNL)

		if trade.PNL > 0 {
			wins = append(wins, trade.PNL)
			currentWinStreak++
			currentLossStreak = 0
		} else {
			losses = append(losses, trade.PNL)
			currentLossStreak++
			currentWinStreak = 0
		}
		if currentWinStreak > winStreak {
			winStreak = currentWinStreak
		}
		if currentLossStreak > lossStreak {
			lossStreak = currentLossStreak
		}
	}

	winningTradesPNL := helpers.Sum(wins)
	losingTradesPNL := helpers.Sum(losses)
	averageWin := 0.0
	if len(wins) > 0 {
		averageWin = winningTradesPNL / float64(len(wins))
	}
	averageLoss := 0.0
	if len(losses) > 0 {
		averageLoss = losingTradesPNL / float64(len(losses))
	}
	pnlStdDev := 0.0
	if len(closedPNLs) > 1 {
		mean := helpers.Sum(closedPNLs) / float64(len(closedPNLs))
		pnlStdDev = helpers.StdDev(closedPNLs, mean)
	}

	return models.SessionStats{
		AverageWin:       averageWin,
		AverageLoss:      averageLoss,
		NumWinningTrades: len(wins),
		NumLosingTrades:  len(losses),
		WinningTradesPNL: winningTradesPNL,
		LosingTradesPNL:  losingTradesPNL,
		WinStreak:        winStreak,
		LossStreak:       lossStreak,
		CloseTradeCount:  len(closedTrades),
		WinLossRatio:     helpers.PositiveNegativeRatio(closedPNLs),
		PNLStdDev:        pnlStdDev,
		TradeJournal:     TradeJournal(startingBalance, closedTrades),
	}
}
