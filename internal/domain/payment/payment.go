package payment

import (
	"time"

	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a checkout awaiting or holding a provider outcome.
// Only the reconciliation path moves it out of pending.
type Payment struct {
	shared.BaseEntity
	ClinicID              uuid.UUID
	Reference             Reference
	ProviderTransactionID string
	Status                Status
	Amount                decimal.Decimal
	ApprovedAt            *time.Time
}

// NewPayment creates a pending payment for a checkout
func NewPayment(clinicID uuid.UUID, ref Reference, amount decimal.Decimal, now time.Time) *Payment {
	return &Payment{
		BaseEntity: shared.NewBaseEntity(now),
		ClinicID:   clinicID,
		Reference:  ref,
		Status:     StatusPending,
		Amount:     amount,
	}
}

// IsTerminal reports whether the payment reached completed or failed
func (p *Payment) IsTerminal() bool {
	return p.Status.IsTerminal()
}

// Apply moves the payment according to the provider document.
// It reports whether the status changed; a still-pending document changes nothing.
func (p *Payment) Apply(doc ProviderPayment, now time.Time) (bool, error) {
	if p.IsTerminal() {
		return false, ErrTerminalState
	}
	target := MapProviderStatus(doc.Status)
	if target == StatusPending {
		return false, nil
	}

	if doc.ID != "" {
		p.ProviderTransactionID = doc.ID
	}
	p.Status = target
	if target == StatusCompleted {
		approved := now.UTC()
		if doc.ApprovedAt != nil {
			approved = doc.ApprovedAt.UTC()
		}
		p.ApprovedAt = &approved
	}
	p.Touch(now)
	return true, nil
}

// RelevantDate is the date whose month the payment's revenue belongs to
func (p *Payment) RelevantDate() time.Time {
	if p.ApprovedAt != nil {
		return *p.ApprovedAt
	}
	return p.CreatedAt
}
