package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProviderPayment is the authoritative status document fetched from the provider
type ProviderPayment struct {
	ID                string
	Status            string
	ExternalReference string
	Amount            decimal.Decimal
	ApprovedAt        *time.Time
}

// ProviderClient fetches payments from the external provider.
// Implementations wrap transport failures in ErrProviderUnavailable.
type ProviderClient interface {
	FetchPayment(ctx context.Context, providerPaymentID string) (*ProviderPayment, error)
}
