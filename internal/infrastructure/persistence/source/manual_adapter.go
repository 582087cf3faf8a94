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

// ManualEntryAdapter reads operator-entered revenue adjustments
type ManualEntryAdapter struct {
	r reader
}

// NewManualEntryAdapter creates a manual entry adapter
func NewManualEntryAdapter(db *gorm.DB, logger *zap.Logger) *ManualEntryAdapter {
	return &ManualEntryAdapter{r: reader{db: db, origin: ledger.OriginManual, logger: logger}}
}

// Origin implements ledger.SourceAdapter
func (a *ManualEntryAdapter) Origin() ledger.Origin { return ledger.OriginManual }

type manualEntryRow struct {
	ID          uuid.UUID
	EntryDate   time.Time
	Description string
	Amount      decimal.Decimal
}

// Enumerate implements ledger.SourceAdapter
func (a *ManualEntryAdapter) Enumerate(ctx context.Context, clinicID uuid.UUID, window ledger.Window) ([]ledger.NormalizedRecord, error) {
	var rows []manualEntryRow
	err := a.r.scan(ctx, &rows, func(db *gorm.DB) *gorm.DB {
		return db.Table("manual_entries").
			Select("id, entry_date, description, amount").
			Where("clinic_id = ? AND entry_date >= ? AND entry_date < ?", clinicID, window.Start, window.End).
			Order("entry_date, id")
	})
	if err != nil {
		return tolerate(nil, err)
	}

	records := make([]ledger.NormalizedRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ledger.NormalizedRecord{
			SourceKey:   row.ID.String(),
			OccurredAt:  row.EntryDate,
			Description: row.Description,
			Value:       row.Amount,
			Category:    ledger.CategoryRevenueService,
			Subcategory: ledger.SubcategoryManualAdjustment,
		})
	}
	return records, nil
}
