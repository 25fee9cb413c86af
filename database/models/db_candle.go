package database

import "gorm.io/gorm"

type Candle struct {
	gorm.Model
	Symbol    string  `json:"symbol" gorm:"uniqueIndex:idx_symbol_timeframe_ts;size:200"`
	Timeframe string  `json:"timeframe" gorm:"uniqueIndex:idx_symbol_timeframe_ts;size:20"`
	Timestamp int64   `json:"timestamp" gorm:"uniqueIndex:idx_symbol_timeframe_ts"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}
