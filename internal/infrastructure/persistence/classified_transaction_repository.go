package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormClassifiedTransactionRepository implements ledger.TransactionRepository using GORM
type GormClassifiedTransactionRepository struct {
	db *gorm.DB
}

// NewGormClassifiedTransactionRepository creates a new GormClassifiedTransactionRepository
func NewGormClassifiedTransactionRepository(db *gorm.DB) *GormClassifiedTransactionRepository {
	return &GormClassifiedTransactionRepository{db: db}
}

// FindByRawID finds a ledger row by its idempotency key
func (r *GormClassifiedTransactionRepository) FindByRawID(ctx context.Context, clinicID uuid.UUID, rawID string) (*ledger.ClassifiedTransaction, error) {
	var model models.ClassifiedTransactionModel
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND raw_id = ?", clinicID, rawID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a ledger row.
// The insert runs under a savepoint so a unique violation leaves the outer transaction usable.
func (r *GormClassifiedTransactionRepository) Create(ctx context.Context, tx *ledger.ClassifiedTransaction) error {
	model := &models.ClassifiedTransactionModel{}
	model.FromDomain(tx)
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return db.Create(model).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ledger.ErrDuplicateRawID
	}
	return err
}

// Update overwrites the classified fields of an existing row
func (r *GormClassifiedTransactionRepository) Update(ctx context.Context, tx *ledger.ClassifiedTransaction) error {
	result := r.db.WithContext(ctx).
		Model(&models.ClassifiedTransactionModel{}).
		Where("clinic_id = ? AND raw_id = ?", tx.ClinicID, tx.RawID).
		Updates(map[string]interface{}{
			"occurred_on": tx.OccurredOn.UTC(),
			"month":       tx.Month.UTC(),
			"origin":      string(tx.Origin),
			"description": tx.Description,
			"value":       tx.Value,
			"category":    string(tx.Category),
			"subcategory": tx.Subcategory,
			"updated_at":  tx.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SumValues sums row values of the given categories over the month buckets in window
func (r *GormClassifiedTransactionRepository) SumValues(ctx context.Context, clinicID uuid.UUID, window ledger.Window, categories ...ledger.Category) (decimal.Decimal, error) {
	if len(categories) == 0 {
		return decimal.Zero, nil
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}

	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.ClassifiedTransactionModel{}).
		Select("SUM(value)").
		Where("clinic_id = ? AND month >= ? AND month < ? AND category IN ?", clinicID, window.Start.UTC(), window.End.UTC(), names).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// FindByMonth lists the rows bucketed into month
func (r *GormClassifiedTransactionRepository) FindByMonth(ctx context.Context, clinicID uuid.UUID, month time.Time) ([]ledger.ClassifiedTransaction, error) {
	var rows []models.ClassifiedTransactionModel
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND month = ?", clinicID, ledger.MonthOf(month)).
		Order("occurred_on ASC, raw_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.ClassifiedTransaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var _ ledger.TransactionRepository = (*GormClassifiedTransactionRepository)(nil)
