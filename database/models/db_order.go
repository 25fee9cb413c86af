package database

import "gorm.io/gorm"

type Order struct {
	gorm.Model
	ClientOrderID int64   `json:"clientOrderId" gorm:"uniqueIndex"`
	ServerOrderID string  `json:"serverOrderId" gorm:"size:200"`
	Pair          string  `json:"pair" gorm:"size:200"`
	PositionType  string  `json:"positionType" gorm:"size:20"`
	TradeType     string  `json:"tradeType" gorm:"size:20"`
	OrderType     string  `json:"orderType" gorm:"size:20"`
	Status        string  `json:"status" gorm:"size:20"`
	Quantity      float64 `json:"quantity"`
	Price         float64 `json:"price"`
	Filled        float64 `json:"filled"`
	Timestamp     int64   `json:"timestamp"`
}
