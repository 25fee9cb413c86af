package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AOAlgoRuntime/backtesting"
	"gitlab.com/aoterocom/AOAlgoRuntime/data"
	"gitlab.com/aoterocom/AOAlgoRuntime/exchange"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
	"gitlab.com/aoterocom/AOAlgoRuntime/monitor"
	"gitlab.com/aoterocom/AOAlgoRuntime/providers/paper"
	"gitlab.com/aoterocom/AOAlgoRuntime/strategies"
	"gitlab.com/aoterocom/AOAlgoRuntime/strategy"
)

type Backtester struct {
}

func (bt *Backtester) Run(c *cli.Context) error {
	helpers.Logger.Infoln("🖖🏻 Backtest started")

	pair := configString(c, "pair")
	interval := configString(c, "interval")
	strategyName := configString(c, "strategy")
	quantity, _ := strconv.ParseFloat(os.Getenv("quantity"), 64)
	aggregations := configList("aggregations")

	initialCash, err := strconv.ParseFloat(os.Getenv("initialCash"), 64)
	if err != nil || initialCash <= 0 {
		initialCash = 10000
	}
	quoteCurrency := os.Getenv("quoteCurrency")
	if quoteCurrency == "" {
		quoteCurrency = "USDT"
	}
	csvDataFolder := os.Getenv("csvDataFolder")
	if csvDataFolder == "" {
		csvDataFolder = ".history"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := exchange.NewStatusTracker()
	venue := paper.NewPaperExchange(tracker, initialCash, quoteCurrency)
	core := exchange.New(venue, tracker, exchange.DefaultConfig())

	source, err := data.NewCSVDataSource(pair, interval, aggregations, csvDataFolder, 0)
	if err != nil {
		return err
	}
	provider := data.NewProvider()
	if err := provider.AddDataSource(source); err != nil {
		return err
	}

	generatedStrategy, err := strategies.StrategyFactory(strategyName, pair, interval, quantity)
	if err != nil {
		return err
	}

	runner := strategy.NewRunner(generatedStrategy, provider, data.NewStore(), core, tracker)

	apiClient := monitor.NewAPIClient()
	sessionMonitor := monitor.NewMonitor(apiClient, tracker)
	sessionMonitor.AddChartSchema(models.ChartSchema{
		Name:      pair,
		DataType:  models.ChartPointOHLCV,
		ChartType: "candlestick",
		Visible:   true,
	})
	runner.OnBar(interval, func(bar models.Bar) {
		sessionMonitor.AddChartPoint(models.ChartPoint{
			Name:      bar.SourceID,
			Value:     bar.OHLCV,
			Timestamp: bar.Timestamp,
		})
	})
	go func() {
		for trade := range core.SubscribeTrades() {
			sessionMonitor.AddTrade(trade)
		}
	}()

	if err := runner.Run(ctx); err != nil {
		return err
	}

	stats := backtesting.SessionStats(initialCash, core.Trades.ListTrades("", "", ""))
	bt.report(venue, stats)

	if apiClient.Configured() {
		backtesting.UploadBacktest(context.Background(), sessionMonitor, apiClient, initialCash)
	}
	return nil
}

func (bt *Backtester) report(venue *paper.PaperExchange, stats models.SessionStats) {
	helpers.Logger.Infoln("---- backtest results ----")
	helpers.Logger.Infoln(fmt.Sprintf("Final cash: %.2f", venue.Cash()))
	helpers.Logger.Infoln(fmt.Sprintf("Closed trades: %d (%d wins / %d losses)",
		stats.CloseTradeCount, stats.NumWinningTrades, stats.NumLosingTrades))
	helpers.Logger.Infoln(fmt.Sprintf("Total PNL: %.2f (wins %.2f / losses %.2f)",
		stats.WinningTradesPNL+stats.LosingTradesPNL, stats.WinningTradesPNL, stats.LosingTradesPNL))
	helpers.Logger.Infoln(fmt.Sprintf("Average win: %.2f, average loss: %.2f", stats.AverageWin, stats.AverageLoss))
	helpers.Logger.Infoln(fmt.Sprintf("Longest win streak: %d, longest loss streak: %d", stats.WinStreak, stats.LossStreak))
	helpers.Logger.Infoln(fmt.Sprintf("Win/loss ratio: %.2f, PNL std dev: %.2f", stats.WinLossRatio, stats.PNLStdDev))
	helpers.Logger.Infoln(fmt.Sprintf("Max drawdown: %.2f%%", stats.TradeJournal.MaxDrawdown*100))
}
