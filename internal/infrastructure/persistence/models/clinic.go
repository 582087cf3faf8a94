package models

import (
	"github.com/clinicfin/backend/internal/domain/clinic"
	"github.com/shopspring/decimal"
)

// ClinicModel is the persistence model for the billing profile of a clinic.
type ClinicModel struct {
	BaseModel
	Name                      string           `gorm:"type:varchar(200);not null"`
	TaxRegime                 string           `gorm:"type:varchar(30);not null;default:'simples'"`
	ServiceTaxRate            *decimal.Decimal `gorm:"type:decimal(9,4)"`
	WithholdingAlwaysRequired bool             `gorm:"not null"`
	Active                    bool             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ClinicModel) TableName() string {
	return "clinics"
}

// ToDomain converts the persistence model to a domain Clinic.
func (m *ClinicModel) ToDomain() *clinic.Clinic {
	return &clinic.Clinic{
		ID:                        m.ID,
		Name:                      m.Name,
		TaxRegime:                 clinic.TaxRegime(m.TaxRegime),
		ServiceTaxRate:            m.ServiceTaxRate,
		WithholdingAlwaysRequired: m.WithholdingAlwaysRequired,
		Active:                    m.Active,
	}
}
