package models

// OHLCV is a single candle of market data
type OHLCV struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Bar is an OHLCV tagged with the data source and timeframe it belongs to
type Bar struct {
	Timestamp int64  `json:"timestamp"`
	SourceID  string `json:"sourceId"`
	Timeframe string `json:"timeframe"`
	OHLCV     OHLCV  `json:"ohlcv"`
}

// AggregatorResult is returned by the OHLCV aggregator for every update
type AggregatorResult struct {
	CurrentBar       OHLCV
	IsNewBarStarted  bool
	LastCompletedBar *OHLCV
}

// MarkPrice is the latest observed price of a pair and when it was seen
type MarkPrice struct {
	Timestamp int64   `json:"timestamp"`
	Mark      float64 `json:"mark"`
}
