package source

import (
	"context"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BudgetPaidStatus is the budget status that turns its service lines into revenue
const BudgetPaidStatus = "paid"

// ServiceAdapter reads performed service lines
type ServiceAdapter struct {
	r    reader
	caps Capabilities
}

// NewServiceAdapter creates a service line adapter
func NewServiceAdapter(db *gorm.DB, caps Capabilities, logger *zap.Logger) *ServiceAdapter {
	return &ServiceAdapter{r: reader{db: db, origin: ledger.OriginService, logger: logger}, caps: caps}
}

// Origin implements ledger.SourceAdapter
func (a *ServiceAdapter) Origin() ledger.Origin { return ledger.OriginService }

type serviceLineRow struct {
	ID           uuid.UUID
	PerformedAt  time.Time
	Description  string
	Amount       decimal.Decimal
	ServiceName  *string
	BudgetID     *uuid.UUID
	BudgetStatus *string
}

// Enumerate implements ledger.SourceAdapter.
// Lines attached to a budget that is not paid yet are receivables, everything else is service revenue.
func (a *ServiceAdapter) Enumerate(ctx context.Context, clinicID uuid.UUID, window ledger.Window) ([]ledger.NormalizedRecord, error) {
	var rows []serviceLineRow
	err := a.r.scan(ctx, &rows, func(db *gorm.DB) *gorm.DB {
		cols := []string{"si.id AS id", "si.performed_at AS performed_at", "si.description AS description", "si.amount AS amount"}
		q := db.Table("service_items AS si")
		if a.caps.ServiceCatalog {
			cols = append(cols, "s.name AS service_name")
			q = q.Joins("LEFT JOIN services AS s ON s.id = si.service_id")
		}
		if a.caps.Budgets {
			cols = append(cols, "si.budget_id AS budget_id", "b.status AS budget_status")
			q = q.Joins("LEFT JOIN budgets AS b ON b.id = si.budget_id")
		}
		return q.Select(cols).
			Where("si.clinic_id = ? AND si.performed_at >= ? AND si.performed_at < ?", clinicID, window.Start, window.End).
			Order("si.performed_at, si.id")
	})
	if err != nil {
		return tolerate(nil, err)
	}

	records := make([]ledger.NormalizedRecord, 0, len(rows))
	for _, row := range rows {
		description := row.Description
		subcategory := ""
		if row.ServiceName != nil {
			subcategory = *row.ServiceName
			if description == "" {
				description = *row.ServiceName
			}
		}
		category := ledger.CategoryRevenueService
		if row.BudgetID != nil && (row.BudgetStatus == nil || *row.BudgetStatus != BudgetPaidStatus) {
			category = ledger.CategoryReceivablePending
		}
		records = append(records, ledger.NormalizedRecord{
			SourceKey:   row.ID.String(),
			OccurredAt:  row.PerformedAt,
			Description: description,
			Value:       row.Amount,
			Category:    category,
			Subcategory: subcategory,
		})
	}
	return records, nil
}
