package database

import "gorm.io/gorm"

// PositionSnapshot is the state of one position after a trade was applied
type PositionSnapshot struct {
	gorm.Model
	Pair         string  `json:"pair" gorm:"size:200"`
	PositionType string  `json:"positionType" gorm:"size:20"`
	Balance      float64 `json:"balance"`
	AverageOpen  float64 `json:"averageOpen"`
	TotalPNL     float64 `json:"totalPnl"`
	Timestamp    int64   `json:"timestamp"`
}
