package models

// BalanceData holds the balance breakdown of a single currency
type BalanceData struct {
	Free  float64 `json:"free"`
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
	Debt  float64 `json:"debt"`
}

// Balances is the per-currency account snapshot a venue reports
type Balances struct {
	Free       map[string]float64     `json:"free"`
	Used       map[string]float64     `json:"used"`
	Total      map[string]float64     `json:"total"`
	Debt       map[string]float64     `json:"debt"`
	Currencies map[string]BalanceData `json:"currencies"`
}

func NewBalances() *Balances {
	return &Balances{
		Free:       make(map[string]float64),
		Used:       make(map[string]float64),
		Total:      make(map[string]float64),
		Debt:       make(map[string]float64),
		Currencies: make(map[string]BalanceData),
	}
}
