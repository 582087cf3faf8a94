package tax

import (
	"context"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// Inputs are the frozen aggregates one computation consumes
type Inputs struct {
	ServiceRevenue     decimal.Decimal
	ProductRevenue     decimal.Decimal
	TrailingRevenue    decimal.Decimal
	TrailingPayroll    decimal.Decimal
	ServiceTaxRate     decimal.Decimal
	SimplifiedRegime   bool
	ContractorPayments []ContractorPayment
	Withholding        WithholdingRule
}

// CurrentRevenue is the month's realized revenue
func (in Inputs) CurrentRevenue() decimal.Decimal {
	return in.ServiceRevenue.Add(in.ProductRevenue)
}

// Computation is the derived tax result of one clinic month
type Computation struct {
	ServiceTax             decimal.Decimal
	SimplifiedTax          decimal.Decimal
	Withholding            decimal.Decimal
	FatorR                 decimal.Decimal
	EffectiveRate          decimal.Decimal
	BracketIndex           *int
	BracketTable           string
	TrailingRevenue        decimal.Decimal
	ProjectedAnnualRevenue decimal.Decimal
}

// Calculate composes the helpers into one deterministic computation
func Calculate(in Inputs, policy BracketPolicy) Computation {
	current := in.CurrentRevenue()
	fatorR := FatorR(in.TrailingPayroll, in.TrailingRevenue)

	out := Computation{
		ServiceTax:             RoundMoney(in.ServiceRevenue.Mul(NormalizeRate(in.ServiceTaxRate))),
		SimplifiedTax:          decimal.Zero,
		Withholding:            TotalWithholding(in.ContractorPayments, in.Withholding),
		FatorR:                 fatorR,
		EffectiveRate:          decimal.Zero,
		TrailingRevenue:        RoundMoney(in.TrailingRevenue),
		ProjectedAnnualRevenue: RoundMoney(current.Mul(monthsPerYear)),
	}

	if !in.SimplifiedRegime {
		return out
	}

	table := policy.TableFor(fatorR)
	idx, ok := SelectBracket(table, in.TrailingRevenue)
	if !ok {
		return out
	}
	rate := EffectiveRate(table.Brackets[idx], in.TrailingRevenue)

	out.BracketIndex = &idx
	out.BracketTable = table.Name
	out.EffectiveRate = RoundRatio(rate)
	if current.IsPositive() {
		out.SimplifiedTax = RoundMoney(current.Mul(rate))
	}
	return out
}

// Figures is the persisted tax result of one clinic month, unique by (ClinicID, Month)
type Figures struct {
	ID       uuid.UUID
	ClinicID uuid.UUID
	Month    time.Time
	Computation
	ComputedAt time.Time
}

// NewFigures wraps a computation for persistence
func NewFigures(clinicID uuid.UUID, month time.Time, c Computation, now time.Time) *Figures {
	return &Figures{
		ID:          uuid.New(),
		ClinicID:    clinicID,
		Month:       ledger.MonthOf(month),
		Computation: c,
		ComputedAt:  now.UTC(),
	}
}

// FiguresRepository persists tax figures keyed by (clinic_id, month)
type FiguresRepository interface {
	Upsert(ctx context.Context, figures *Figures) error
	FindByMonth(ctx context.Context, clinicID uuid.UUID, month time.Time) (*Figures, error)
}

// ContractorPaymentSource lists contractor payments of a window.
// Deployments without contractor payments return an empty slice.
type ContractorPaymentSource interface {
	ContractorPayments(ctx context.Context, clinicID uuid.UUID, window ledger.Window) ([]ContractorPayment, error)
}
