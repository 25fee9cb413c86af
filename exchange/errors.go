package exchange

import "fmt"

// InsufficientFundsError is returned by venues when the session cash cannot
// cover an order. The order involved ends up REJECTED.
type InsufficientFundsError struct {
	Pair     string
	Required float64
	Free     float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for %s: required %f, free %f", e.Pair, e.Required, e.Free)
}
