package ledger

import (
	"time"

	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClassifiedTransaction is one normalized, deduplicated billing event.
// (ClinicID, RawID) is unique.
type ClassifiedTransaction struct {
	shared.BaseEntity
	ClinicID    uuid.UUID
	RawID       string
	OccurredOn  time.Time
	Month       time.Time
	Origin      Origin
	Description string
	Value       decimal.Decimal
	Category    Category
	Subcategory string
}

// NewClassifiedTransaction creates a ledger row for a source record
func NewClassifiedTransaction(clinicID uuid.UUID, origin Origin, rec NormalizedRecord, now time.Time) *ClassifiedTransaction {
	tx := &ClassifiedTransaction{
		BaseEntity: shared.NewBaseEntity(now),
		ClinicID:   clinicID,
		RawID:      RawID(origin, rec.SourceKey),
	}
	tx.assign(origin, rec)
	return tx
}

// Reconcile copies rec onto the row when any classified field differs.
// It reports whether the row changed.
func (t *ClassifiedTransaction) Reconcile(origin Origin, rec NormalizedRecord, now time.Time) bool {
	candidate := &ClassifiedTransaction{}
	candidate.assign(origin, rec)
	if t.sameFields(candidate) {
		return false
	}
	t.assign(origin, rec)
	t.Touch(now)
	return true
}

// IsRevenue reports whether the row counts as realized revenue
func (t *ClassifiedTransaction) IsRevenue() bool {
	return t.Category.IsRevenue()
}

func (t *ClassifiedTransaction) assign(origin Origin, rec NormalizedRecord) {
	t.OccurredOn = DateOf(rec.OccurredAt)
	t.Month = MonthOf(rec.OccurredAt)
	t.Origin = origin
	t.Description = rec.Description
	t.Value = rec.Value.Round(2)
	t.Category = rec.Category
	t.Subcategory = rec.Subcategory
}

func (t *ClassifiedTransaction) sameFields(o *ClassifiedTransaction) bool {
	return t.OccurredOn.Equal(o.OccurredOn) &&
		t.Month.Equal(o.Month) &&
		t.Origin == o.Origin &&
		t.Description == o.Description &&
		t.Value.Equal(o.Value) &&
		t.Category == o.Category &&
		t.Subcategory == o.Subcategory
}
