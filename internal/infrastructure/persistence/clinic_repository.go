package persistence

import (
	"context"
	"errors"

	"github.com/clinicfin/backend/internal/domain/clinic"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClinicRepository implements clinic.Repository using GORM
type GormClinicRepository struct {
	db *gorm.DB
}

// NewGormClinicRepository creates a new GormClinicRepository
func NewGormClinicRepository(db *gorm.DB) *GormClinicRepository {
	return &GormClinicRepository{db: db}
}

// FindByID finds a clinic by ID
func (r *GormClinicRepository) FindByID(ctx context.Context, id uuid.UUID) (*clinic.Clinic, error) {
	var model models.ClinicModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListActiveIDs returns the ids of active clinics ordered by name
func (r *GormClinicRepository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ClinicModel{}).
		Where("active = ?", true).
		Order("name ASC, id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

var _ clinic.Repository = (*GormClinicRepository)(nil)
