package models

import (
	"time"

	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt.UTC()
	m.UpdatedAt = e.UpdatedAt.UTC()
}

// All returns every model in dependency order, for AutoMigrate in tests and local tooling
func All() []interface{} {
	return []interface{}{
		&ClinicModel{},
		&ServiceCatalogModel{},
		&BudgetModel{},
		&ServiceItemModel{},
		&ProductModel{},
		&OrderModel{},
		&OrderItemModel{},
		&ManualEntryModel{},
		&VetPaymentModel{},
		&ExpenseModel{},
		&ClassifiedTransactionModel{},
		&MonthlySnapshotModel{},
		&TaxFiguresModel{},
		&PaymentModel{},
		&WebhookDeliveryModel{},
		&FulfillmentRequestModel{},
	}
}
