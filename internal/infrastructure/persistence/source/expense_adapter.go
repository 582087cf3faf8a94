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

// ExpenseAdapter reads operating expenses
type ExpenseAdapter struct {
	r    reader
	caps Capabilities
}

// NewExpenseAdapter creates an expense adapter
func NewExpenseAdapter(db *gorm.DB, caps Capabilities, logger *zap.Logger) *ExpenseAdapter {
	return &ExpenseAdapter{r: reader{db: db, origin: ledger.OriginExpense, logger: logger}, caps: caps}
}

// Origin implements ledger.SourceAdapter
func (a *ExpenseAdapter) Origin() ledger.Origin { return ledger.OriginExpense }

type expenseRow struct {
	ID          uuid.UUID
	IncurredOn  time.Time
	Description string
	Amount      decimal.Decimal
	Kind        *string
	IsInventory *bool
}

// Enumerate implements ledger.SourceAdapter.
// Goods bought for resale are cost of goods; everything else is a generic expense.
func (a *ExpenseAdapter) Enumerate(ctx context.Context, clinicID uuid.UUID, window ledger.Window) ([]ledger.NormalizedRecord, error) {
	var rows []expenseRow
	err := a.r.scan(ctx, &rows, func(db *gorm.DB) *gorm.DB {
		cols := []string{"id", "incurred_on", "description", "amount"}
		if a.caps.ExpenseKind {
			cols = append(cols, "kind")
		}
		if a.caps.ExpenseInventoryFlag {
			cols = append(cols, "is_inventory")
		}
		return db.Table("expenses").
			Select(cols).
			Where("clinic_id = ? AND incurred_on >= ? AND incurred_on < ?", clinicID, window.Start, window.End).
			Order("incurred_on, id")
	})
	if err != nil {
		return tolerate(nil, err)
	}

	records := make([]ledger.NormalizedRecord, 0, len(rows))
	for _, row := range rows {
		kind := ""
		if row.Kind != nil {
			kind = *row.Kind
		}
		category := ledger.CategoryGenericExpense
		if (row.IsInventory != nil && *row.IsInventory) || isInventoryKind(kind) {
			category = ledger.CategoryCostOfGoods
		}
		records = append(records, ledger.NormalizedRecord{
			SourceKey:   row.ID.String(),
			OccurredAt:  row.IncurredOn,
			Description: row.Description,
			Value:       row.Amount.Abs().Neg(),
			Category:    category,
			Subcategory: kind,
		})
	}
	return records, nil
}
