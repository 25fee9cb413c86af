package interfaces

import (
	"context"

	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// Venue is the narrow set of primitives a concrete exchange adapter has to
// provide. The orchestration layer in exchange.Exchange drives everything else
// (order bookkeeping, reconciliation, retries) through these calls.
//
// CreateLimitOrder and CreateMarketOrder return the server order id, or an
// error when the venue rejected the order synchronously. Adapters ingest the
// venue's trade and order feeds themselves, from goroutines started in Start,
// and push raw notifications into the exchange core.
type Venue interface {
	Type() models.ExchangeType

	CreateLimitOrder(ctx context.Context, order *models.Order) (string, error)
	CreateMarketOrder(ctx context.Context, order *models.Order) (string, error)
	CancelOrder(ctx context.Context, order *models.Order) (bool, error)
	CancelAllOrders(ctx context.Context, pair string) (bool, error)
	GetBalances(ctx context.Context) (*models.Balances, error)

	// Start launches the adapter's feed goroutines. It returns once they are
	// running; they stop when ctx is canceled.
	Start(ctx context.Context) error
}
