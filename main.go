package main

import (
	"os"

	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AOAlgoRuntime/bot"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
)

func main() {
	liveTrader := &bot.LiveTrader{}
	backtester := &bot.Backtester{}
	downloader := &bot.HistoryDownloader{}

	flags := []cli.Flag{
		&cli.StringFlag{Name: "strategy", Usage: "strategy name"},
		&cli.StringFlag{Name: "pair", Usage: "trading pair, i.e. BTCUSDT"},
		&cli.StringFlag{Name: "interval", Usage: "candle timeframe, i.e. 1m, 1h, 1d"},
	}

	app := &cli.App{
		Name:  "aoalgoruntime",
		Usage: "algorithmic trading runtime",
		Commands: []*cli.Command{
			{
				Name:   "live",
				Usage:  "trade live on the configured venue",
				Flags:  flags,
				Action: liveTrader.Run,
			},
			{
				Name:   "backtest",
				Usage:  "replay historical data against the paper venue",
				Flags:  flags,
				Action: backtester.Run,
			},
			{
				Name:   "download",
				Usage:  "download candle history into the CSV folder",
				Flags:  flags,
				Action: downloader.Run,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		helpers.Logger.Fatalln(err)
	}
}
