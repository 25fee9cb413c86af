package models

// MonitoringPoint is a named gauge shown on the live monitoring panel
type MonitoringPoint struct {
	Name      string      `json:"name"`
	Value     interface{} `json:"value"`
	Group     string      `json:"group,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ChartPointDataType defines the payload shape of a chart series
type ChartPointDataType string

const (
	ChartPointFloat ChartPointDataType = "float"
	ChartPointOHLCV ChartPointDataType = "ohlcv"
)

// ChartSchema declares a chart series before points are added to it
type ChartSchema struct {
	Name       string             `json:"name"`
	DataType   ChartPointDataType `json:"data_type"`
	ChartType  string             `json:"chart_type"`
	ChartColor string             `json:"chart_color,omitempty"`
	YAxis      int                `json:"y_axis"`
	Visible    bool               `json:"visible"`
}

// ChartPoint is a single value of a chart series
type ChartPoint struct {
	Name      string      `json:"name"`
	Value     interface{} `json:"value"`
	Timestamp int64       `json:"timestamp"`
}

// AnnotationPoint marks a moment on the chart with a message
type AnnotationPoint struct {
	Value     float64 `json:"value"`
	Message   string  `json:"message"`
	Timestamp int64   `json:"timestamp"`
}

// LogMessagePoint is a log line shipped with the monitoring batch
type LogMessagePoint struct {
	Message    string `json:"message"`
	Stacktrace string `json:"stacktrace,omitempty"`
	Level      string `json:"level"`
	Timestamp  int64  `json:"timestamp"`
}

// TradeJournal tracks account growth trade by trade during a session
type TradeJournal struct {
	TradeTimestamps []int64   `json:"trade_timestamps"`
	TradePNLs       []float64 `json:"trade_pnls"`
	AccountBalances []float64 `json:"account_balances"`
	PeriodReturns   []float64 `json:"period_returns"`
	TotalReturns    []float64 `json:"total_returns"`
	MaxDrawdown     float64   `json:"max_drawdown"`
}

// SessionStats summarizes the closed trades of a session
type SessionStats struct {
	AverageWin       float64      `json:"average_win"`
	AverageLoss      float64      `json:"average_loss"`
	NumWinningTrades int          `json:"num_winning_trades"`
	NumLosingTrades  int          `json:"num_losing_trades"`
	WinningTradesPNL float64      `json:"winning_trades_pnl"`
	LosingTradesPNL  float64      `json:"losing_trades_pnl"`
	WinStreak        int          `json:"win_streak"`
	LossStreak       int          `json:"loss_streak"`
	CloseTradeCount  int          `json:"close_trade_count"`
	WinLossRatio     float64      `json:"win_loss_ratio"`
	PNLStdDev        float64      `json:"pnl_std_dev"`
	TradeJournal     TradeJournal `json:"trade_journal"`
}
