package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlySnapshot is the recomputed revenue aggregate of one clinic month
type MonthlySnapshot struct {
	ID             uuid.UUID
	ClinicID       uuid.UUID
	Month          time.Time
	ServiceRevenue decimal.Decimal
	ProductRevenue decimal.Decimal
	TotalRevenue   decimal.Decimal
	GeneratedAt    time.Time
}

// NewMonthlySnapshot builds a snapshot; the total is always derived from its parts
func NewMonthlySnapshot(clinicID uuid.UUID, month time.Time, service, product decimal.Decimal, now time.Time) *MonthlySnapshot {
	service = service.Round(2)
	product = product.Round(2)
	return &MonthlySnapshot{
		ID:             uuid.New(),
		ClinicID:       clinicID,
		Month:          MonthOf(month),
		ServiceRevenue: service,
		ProductRevenue: product,
		TotalRevenue:   service.Add(product),
		GeneratedAt:    now.UTC(),
	}
}
