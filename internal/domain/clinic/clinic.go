package clinic

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxRegime is the clinic's federal tax regime
type TaxRegime string

const (
	RegimeSimples        TaxRegime = "simples"
	RegimePresumedProfit TaxRegime = "lucro_presumido"
	RegimeRealProfit     TaxRegime = "lucro_real"
)

// Clinic holds the billing-relevant profile of a clinic
type Clinic struct {
	ID                        uuid.UUID
	Name                      string
	TaxRegime                 TaxRegime
	ServiceTaxRate            *decimal.Decimal
	WithholdingAlwaysRequired bool
	Active                    bool
}

// UsesSimplifiedRegime reports whether simplified-regime tax applies.
// An unset regime is treated as simples.
func (c *Clinic) UsesSimplifiedRegime() bool {
	return c.TaxRegime == "" || c.TaxRegime == RegimeSimples
}

// Repository reads clinic profiles
type Repository interface {
	// FindByID returns shared.ErrNotFound for unknown clinics
	FindByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}
