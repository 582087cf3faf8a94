package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaxFiguresRepository implements tax.FiguresRepository using GORM
type GormTaxFiguresRepository struct {
	db *gorm.DB
}

// NewGormTaxFiguresRepository creates a new GormTaxFiguresRepository
func NewGormTaxFiguresRepository(db *gorm.DB) *GormTaxFiguresRepository {
	return &GormTaxFiguresRepository{db: db}
}

// Upsert inserts the figures or overwrites the existing (clinic_id, month) row.
// An overwritten row keeps its id, which is copied back into figures.
func (r *GormTaxFiguresRepository) Upsert(ctx context.Context, figures *tax.Figures) error {
	model := models.TaxFiguresModelFromDomain(figures)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "clinic_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"service_tax", "simplified_tax", "withholding", "fator_r", "effective_rate",
			"bracket_index", "bracket_table", "trailing_revenue", "projected_annual_revenue", "computed_at",
		}),
	}).Create(model).Error
	if err != nil {
		return err
	}

	var stored models.TaxFiguresModel
	err = r.db.WithContext(ctx).
		Select("id").
		Where("clinic_id = ? AND month = ?", model.ClinicID, model.Month).
		Take(&stored).Error
	if err != nil {
		return err
	}
	figures.ID = stored.ID
	return nil
}

// FindByMonth finds the figures of a clinic month
func (r *GormTaxFiguresRepository) FindByMonth(ctx context.Context, clinicID uuid.UUID, month time.Time) (*tax.Figures, error) {
	var model models.TaxFiguresModel
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

var _ tax.FiguresRepository = (*GormTaxFiguresRepository)(nil)
