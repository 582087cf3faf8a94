package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRepository persists ledger rows
type TransactionRepository interface {
	// FindByRawID returns shared.ErrNotFound when the row does not exist
	FindByRawID(ctx context.Context, clinicID uuid.UUID, rawID string) (*ClassifiedTransaction, error)
	// Create returns ErrDuplicateRawID on a (clinic_id, raw_id) unique violation
	Create(ctx context.Context, tx *ClassifiedTransaction) error
	Update(ctx context.Context, tx *ClassifiedTransaction) error
	SumValues(ctx context.Context, clinicID uuid.UUID, window Window, categories ...Category) (decimal.Decimal, error)
	FindByMonth(ctx context.Context, clinicID uuid.UUID, month time.Time) ([]ClassifiedTransaction, error)
}

// SnapshotRepository persists monthly snapshots keyed by (clinic_id, month)
type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *MonthlySnapshot) error
	FindByMonth(ctx context.Context, clinicID uuid.UUID, month time.Time) (*MonthlySnapshot, error)
}
