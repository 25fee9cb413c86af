package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	goBinance "github.com/adshao/go-binance/v2"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AOAlgoRuntime/data"
	"gitlab.com/aoterocom/AOAlgoRuntime/database"
	"gitlab.com/aoterocom/AOAlgoRuntime/exchange"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
	"gitlab.com/aoterocom/AOAlgoRuntime/monitor"
	"gitlab.com/aoterocom/AOAlgoRuntime/providers/binance"
	"gitlab.com/aoterocom/AOAlgoRuntime/strategies"
	"gitlab.com/aoterocom/AOAlgoRuntime/strategy"
	"gitlab.com/aoterocom/AOAlgoRuntime/ui"
)

type LiveTrader struct {
}

func init() {
	cwd, _ := os.Getwd()
	_ = godotenv.Load(cwd + "/conf.env")
}

func (lt *LiveTrader) Run(c *cli.Context) error {
	helpers.Logger.Infoln("🖖🏻 Live trader started")

	pair := configString(c, "pair")
	interval := configString(c, "interval")
	strategyName := configString(c, "strategy")
	quantity, _ := strconv.ParseFloat(os.Getenv("quantity"), 64)
	aggregations := configList("aggregations")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := exchange.NewStatusTracker()
	venue := binance.NewBinanceExchange()
	core := exchange.New(venue, tracker, exchange.DefaultConfig())

	dataClient := goBinance.NewClient(os.Getenv("binanceAPIKey"), os.Getenv("binanceAPISecret"))
	source, err := data.NewBinanceDataSource(dataClient, pair, interval, aggregations, 1000)
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
	sessionMonitor.Start(ctx)
	go func() {
		for trade := range core.SubscribeTrades() {
			sessionMonitor.AddTrade(trade)
			if order := core.Orders.GetOrderByServerID(trade.ServerOrderID); order != nil {
				sessionMonitor.AddOrder(order)
			}
		}
	}()

	databaseIsEnabled, _ := strconv.ParseBool(os.Getenv("enableDatabaseRecording"))
	if databaseIsEnabled {
		databaseService, err := database.NewDBService(os.Getenv("databaseHost"), os.Getenv("databasePort"),
			os.Getenv("databaseName"), os.Getenv("databaseUser"), os.Getenv("databasePassword"))
		if err != nil {
			return fmt.Errorf("connecting the database: %w", err)
		}
		database.NewRecorder(databaseService, core).Start(ctx)
		runner.OnBar(interval, func(bar models.Bar) {
			if err := databaseService.AddOrUpdateCandle(bar.SourceID, bar.Timeframe, bar.OHLCV); err != nil {
				helpers.Logger.Warnln(fmt.Sprintf("persisting candle failed: %v", err))
			}
		})
	}

	uiIsEnabled, _ := strconv.ParseBool(os.Getenv("enableUI"))
	if uiIsEnabled {
		dashboard := ui.NewUserInterface(core, tracker, pair)
		go func() {
			if err := dashboard.Run(ctx); err != nil {
				helpers.Logger.Errorln(fmt.Sprintf("dashboard stopped: %v", err))
			}
			stop()
		}()
	}

	return runner.Run(ctx)
}

func configString(c *cli.Context, name string) string {
	if value := c.String(name); value != "" {
		return value
	}
	return os.Getenv(name)
}

func configList(name string) []string {
	raw := strings.Split(os.Getenv(name), ",")
	var values []string
	for _, value := range raw {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
