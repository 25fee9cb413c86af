package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	goBinance "github.com/adshao/go-binance/v2"
	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/utils"
)

type HistoryDownloader struct {
}

func (hd *HistoryDownloader) Run(c *cli.Context) error {
	pair := configString(c, "pair")
	interval := configString(c, "interval")
	csvDataFolder := os.Getenv("csvDataFolder")
	if csvDataFolder == "" {
		csvDataFolder = ".history"
	}
	sinceTS, _ := strconv.ParseInt(os.Getenv("downloadSince"), 10, 64)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataClient := goBinance.NewClient(os.Getenv("binanceAPIKey"), os.Getenv("binanceAPISecret"))
	total, err := utils.DownloadHistory(ctx, dataClient, pair, interval, csvDataFolder, sinceTS)
	if err != nil {
		return err
	}
	helpers.Logger.Infoln(fmt.Sprintf("download finished: %d candles for %s %s", total, pair, interval))
	return nil
}
