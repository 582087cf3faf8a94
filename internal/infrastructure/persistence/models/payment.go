package models

import (
	"time"

	"github.com/clinicfin/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for a checkout payment.
type PaymentModel struct {
	BaseModel
	ClinicID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExternalReference     string          `gorm:"type:varchar(80);not null;uniqueIndex"`
	ProviderTransactionID *string         `gorm:"type:varchar(80)"`
	Status                string          `gorm:"type:varchar(20);not null;default:'pending'"`
	Amount                decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ApprovedAt            *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
// A reference that does not parse keeps its zero value.
func (m *PaymentModel) ToDomain() *payment.Payment {
	ref, _ := payment.ParseReference(m.ExternalReference)
	p := &payment.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		ClinicID:   m.ClinicID,
		Reference:  ref,
		Status:     payment.Status(m.Status),
		Amount:     m.Amount,
	}
	if m.ProviderTransactionID != nil {
		p.ProviderTransactionID = *m.ProviderTransactionID
	}
	if m.ApprovedAt != nil {
		approved := m.ApprovedAt.UTC()
		p.ApprovedAt = &approved
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *payment.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ClinicID = p.ClinicID
	m.ExternalReference = p.Reference.String()
	m.ProviderTransactionID = nil
	if p.ProviderTransactionID != "" {
		id := p.ProviderTransactionID
		m.ProviderTransactionID = &id
	}
	m.Status = string(p.Status)
	m.Amount = p.Amount
	m.ApprovedAt = p.ApprovedAt
}

// WebhookDeliveryModel is the dedupe ledger of webhook event ids.
type WebhookDeliveryModel struct {
	EventID     string     `gorm:"type:varchar(120);primaryKey"`
	PaymentID   *uuid.UUID `gorm:"type:uuid;index"`
	Attempts    int        `gorm:"not null"`
	FirstSeenAt time.Time  `gorm:"not null"`
	LastSeenAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WebhookDeliveryModel) TableName() string {
	return "webhook_deliveries"
}

// ToDomain converts the persistence model to a domain Delivery.
func (m *WebhookDeliveryModel) ToDomain() *payment.Delivery {
	return &payment.Delivery{
		EventID:     m.EventID,
		PaymentID:   m.PaymentID,
		Attempts:    m.Attempts,
		FirstSeenAt: m.FirstSeenAt.UTC(),
		LastSeenAt:  m.LastSeenAt.UTC(),
	}
}

// FulfillmentRequestModel is the follow-up of a completed order payment, one per order.
type FulfillmentRequestModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClinicID  uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FulfillmentRequestModel) TableName() string {
	return "fulfillment_requests"
}
