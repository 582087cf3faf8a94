package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMonthlySnapshotRepository implements ledger.SnapshotRepository using GORM
type GormMonthlySnapshotRepository struct {
	db *gorm.DB
}

// NewGormMonthlySnapshotRepository creates a new GormMonthlySnapshotRepository
func NewGormMonthlySnapshotRepository(db *gorm.DB) *GormMonthlySnapshotRepository {
	return &GormMonthlySnapshotRepository{db: db}
}

// Upsert inserts the snapshot or fully overwrites the existing (clinic_id, month) row.
// An overwritten row keeps its id, which is copied back into snapshot.
func (r *GormMonthlySnapshotRepository) Upsert(ctx context.Context, snapshot *ledger.MonthlySnapshot) error {
	model := models.MonthlySnapshotModelFromDomain(snapshot)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "clinic_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"service_revenue", "product_revenue", "total_revenue", "generated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return err
	}

	var stored models.MonthlySnapshotModel
	err = r.db.WithContext(ctx).
		Select("id").
		Where("clinic_id = ? AND month = ?", model.ClinicID, model.Month).
		Take(&stored).Error
	if err != nil {
		return err
	}
	snapshot.ID = stored.ID
	return nil
}

// FindByMonth finds the snapshot of a clinic month
func (r *GormMonthlySnapshotRepository) FindByMonth(ctx context.Context, clinicID uuid.UUID, month time.Time) (*ledger.MonthlySnapshot, error) {
	var model models.MonthlySnapshotModel
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND month = ?", clinicID, ledger.MonthOf(month)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ ledger.SnapshotRepository = (*GormMonthlySnapshotRepository)(nil)
