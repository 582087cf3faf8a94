package models

import (
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClassifiedTransactionModel is the persistence model for a ledger row.
type ClassifiedTransactionModel struct {
	BaseModel
	ClinicID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_classified_clinic_raw,priority:1;index:ix_classified_clinic_month,priority:1"`
	RawID       string          `gorm:"type:varchar(120);not null;uniqueIndex:ux_classified_clinic_raw,priority:2"`
	OccurredOn  time.Time       `gorm:"not null"`
	Month       time.Time       `gorm:"not null;index:ix_classified_clinic_month,priority:2"`
	Origin      string          `gorm:"type:varchar(20);not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Value       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Category    string          `gorm:"type:varchar(30);not null;index:ix_classified_clinic_month,priority:3"`
	Subcategory string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ClassifiedTransactionModel) TableName() string {
	return "classified_transactions"
}

// ToDomain converts the persistence model to a domain ClassifiedTransaction.
func (m *ClassifiedTransactionModel) ToDomain() *ledger.ClassifiedTransaction {
	return &ledger.ClassifiedTransaction{
		BaseEntity:  m.BaseModel.ToDomain(),
		ClinicID:    m.ClinicID,
		RawID:       m.RawID,
		OccurredOn:  m.OccurredOn.UTC(),
		Month:       m.Month.UTC(),
		Origin:      ledger.Origin(m.Origin),
		Description: m.Description,
		Value:       m.Value,
		Category:    ledger.Category(m.Category),
		Subcategory: m.Subcategory,
	}
}

// FromDomain populates the persistence model from a domain ClassifiedTransaction.
func (m *ClassifiedTransactionModel) FromDomain(t *ledger.ClassifiedTransaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.ClinicID = t.ClinicID
	m.RawID = t.RawID
	m.OccurredOn = t.OccurredOn.UTC()
	m.Month = t.Month.UTC()
	m.Origin = string(t.Origin)
	m.Description = t.Description
	m.Value = t.Value
	m.Category = string(t.Category)
	m.Subcategory = t.Subcategory
}

// MonthlySnapshotModel is the persistence model for a monthly snapshot.
type MonthlySnapshotModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClinicID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_snapshot_clinic_month,priority:1"`
	Month          time.Time       `gorm:"not null;uniqueIndex:ux_snapshot_clinic_month,priority:2"`
	ServiceRevenue decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ProductRevenue decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalRevenue   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	GeneratedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MonthlySnapshotModel) TableName() string {
	return "monthly_snapshots"
}

// ToDomain converts the persistence model to a domain MonthlySnapshot.
func (m *MonthlySnapshotModel) ToDomain() *ledger.MonthlySnapshot {
	return &ledger.MonthlySnapshot{
		ID:             m.ID,
		ClinicID:       m.ClinicID,
		Month:          m.Month.UTC(),
		ServiceRevenue: m.ServiceRevenue,
		ProductRevenue: m.ProductRevenue,
		TotalRevenue:   m.TotalRevenue,
		GeneratedAt:    m.GeneratedAt.UTC(),
	}
}

// MonthlySnapshotModelFromDomain creates a model from a domain MonthlySnapshot.
func MonthlySnapshotModelFromDomain(s *ledger.MonthlySnapshot) *MonthlySnapshotModel {
	return &MonthlySnapshotModel{
		ID:             s.ID,
		ClinicID:       s.ClinicID,
		Month:          s.Month.UTC(),
		ServiceRevenue: s.ServiceRevenue,
		ProductRevenue: s.ProductRevenue,
		TotalRevenue:   s.TotalRevenue,
		GeneratedAt:    s.GeneratedAt.UTC(),
	}
}

// TaxFiguresModel is the persistence model for tax figures.
type TaxFiguresModel struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClinicID               uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_tax_figures_clinic_month,priority:1"`
	Month                  time.Time       `gorm:"not null;uniqueIndex:ux_tax_figures_clinic_month,priority:2"`
	ServiceTax             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SimplifiedTax          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Withholding            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	FatorR                 decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	EffectiveRate          decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	BracketIndex           *int
	BracketTable           string          `gorm:"type:varchar(30)"`
	TrailingRevenue        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ProjectedAnnualRevenue decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ComputedAt             time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TaxFiguresModel) TableName() string {
	return "tax_figures"
}

// ToDomain converts the persistence model to domain tax Figures.
func (m *TaxFiguresModel) ToDomain() *tax.Figures {
	return &tax.Figures{
		ID:       m.ID,
		ClinicID: m.ClinicID,
		Month:    m.Month.UTC(),
		Computation: tax.Computation{
			ServiceTax:             m.ServiceTax,
			SimplifiedTax:          m.SimplifiedTax,
			Withholding:            m.Withholding,
			FatorR:                 m.FatorR,
			EffectiveRate:          m.EffectiveRate,
			BracketIndex:           m.BracketIndex,
			BracketTable:           m.BracketTable,
			TrailingRevenue:        m.TrailingRevenue,
			ProjectedAnnualRevenue: m.ProjectedAnnualRevenue,
		},
		ComputedAt: m.ComputedAt.UTC(),
	}
}

// TaxFiguresModelFromDomain creates a model from domain tax Figures.
func TaxFiguresModelFromDomain(f *tax.Figures) *TaxFiguresModel {
	return &TaxFiguresModel{
		ID:                     f.ID,
		ClinicID:               f.ClinicID,
		Month:                  f.Month.UTC(),
		ServiceTax:             f.ServiceTax,
		SimplifiedTax:          f.SimplifiedTax,
		Withholding:            f.Withholding,
		FatorR:                 f.FatorR,
		EffectiveRate:          f.EffectiveRate,
		BracketIndex:           f.BracketIndex,
		BracketTable:           f.BracketTable,
		TrailingRevenue:        f.TrailingRevenue,
		ProjectedAnnualRevenue: f.ProjectedAnnualRevenue,
		ComputedAt:             f.ComputedAt.UTC(),
	}
}

