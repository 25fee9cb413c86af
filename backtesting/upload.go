package backtesting

import (
	"context"
	"fmt"

	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/monitor"
)

// UploadBacktest ships the collected session data for remote analysis. The
// initial cash should match what the paper venue started with. Failures are
// logged, not propagated, so finished backtests still report locally.
func UploadBacktest(ctx context.Context, sessionMonitor *monitor.Monitor,
	client *monitor.APIClient, initialCash float64) {
	payload := map[string]interface{}{
		"data":   sessionMonitor.Serialize(),
		"config": map[string]interface{}{"initial_cash": initialCash},
	}
	if err := client.Call(ctx, "v1-backtest", payload); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("uploading backtest failed: %v", err))
	}
}
