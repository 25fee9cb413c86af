package models

import "strings"

// PositionType defines the direction of a position
type PositionType string

// TradeType defines whether an order/trade increases or reduces exposure
type TradeType string

// OrderStatus defines the lifecycle state of an order
type OrderStatus string

// OrderType defines the execution type of an order
type OrderType string

// ExchangeType defines whether an exchange is real or simulated
type ExchangeType string

// ExecutionMode defines how the strategy runner is consuming data
type ExecutionMode string

// Global enums
const (
	PositionTypeLong  PositionType = "LONG"
	PositionTypeShort PositionType = "SHORT"

	TradeTypeOpen  TradeType = "OPEN"
	TradeTypeClose TradeType = "CLOSE"

	OrderStatusOpen     OrderStatus = "OPEN"
	OrderStatusClosed   OrderStatus = "CLOSED"
	OrderStatusRejected OrderStatus = "REJECTED"
	OrderStatusCanceled OrderStatus = "CANCELED"
	OrderStatusExpired  OrderStatus = "EXPIRED"

	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"

	ExchangeTypeLive  ExchangeType = "LIVE"
	ExchangeTypePaper ExchangeType = "PAPER"

	ExecutionModeLive    ExecutionMode = "LIVE"
	ExecutionModePreload ExecutionMode = "PRELOAD"
	ExecutionModePaper   ExecutionMode = "PAPER"
)

// ParseOrderStatus maps the status strings venues report to an OrderStatus.
// Binance style ("NEW", "PARTIALLY_FILLED", "FILLED") and plain lowercase
// variants are both understood.
func ParseOrderStatus(status string) (OrderStatus, bool) {
	switch strings.ToUpper(status) {
	case "NEW", "OPEN", "PARTIALLY_FILLED":
		return OrderStatusOpen, true
	case "FILLED", "CLOSED":
		return OrderStatusClosed, true
	case "CANCELED":
		return OrderStatusCanceled, true
	case "EXPIRED":
		return OrderStatusExpired, true
	case "REJECTED":
		return OrderStatusRejected, true
	}
	return "", false
}
