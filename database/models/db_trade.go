package database

import "gorm.io/gorm"

type Trade struct {
	gorm.Model
	TradeID       string  `json:"tradeId" gorm:"uniqueIndex;size:200"`
	ServerOrderID string  `json:"serverOrderId" gorm:"size:200"`
	Pair          string  `json:"pair" gorm:"size:200"`
	PositionType  string  `json:"positionType" gorm:"size:20"`
	TradeType     string  `json:"tradeType" gorm:"size:20"`
	Price         float64 `json:"price"`
	Quantity      float64 `json:"quantity"`
	PNL           float64 `json:"pnl"`
	Timestamp     int64   `json:"timestamp"`
}
