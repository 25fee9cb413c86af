package models

import "encoding/json"

// UnmatchedTrade is a trade execution exactly as the venue reported it. The
// venue knows which server order it fills but not whether that order was
// opening or closing, long or short. Those fields only exist on Trade, which
// an UnmatchedTrade becomes once reconciliation finds the owning order.
type UnmatchedTrade struct {
	TradeID       string  `json:"trade_id"`
	Timestamp     int64   `json:"timestamp"`
	Pair          string  `json:"pair"`
	Price         float64 `json:"price"`
	Quantity      float64 `json:"quantity"`
	ServerOrderID string  `json:"server_order_id"`
}

// Trade is an UnmatchedTrade resolved against the local order that caused it.
// PNL stays 0 until the trade is applied to a position; it is assigned there
// and nowhere else.
type Trade struct {
	UnmatchedTrade
	PositionType PositionType `json:"position_type"`
	TradeType    TradeType    `json:"trade_type"`
	PNL          float64      `json:"pnl"`
}

// Match resolves the unmatched trade against the order it fills, copying the
// direction and intent the venue report was missing.
func (t UnmatchedTrade) Match(order *Order) *Trade {
	return &Trade{
		UnmatchedTrade: t,
		PositionType:   order.PositionType,
		TradeType:      order.TradeType,
	}
}

func (t *Trade) ToJSON() string {
	data, _ := json.Marshal(t)
	return string(data)
}
