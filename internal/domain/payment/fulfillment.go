package payment

import (
	"time"

	"github.com/google/uuid"
)

// FulfillmentRequest is the single follow-up created when an order payment completes
type FulfillmentRequest struct {
	ID        uuid.UUID
	ClinicID  uuid.UUID
	OrderID   uuid.UUID
	PaymentID uuid.UUID
	CreatedAt time.Time
}

// NewFulfillmentRequest creates the follow-up for a completed order payment
func NewFulfillmentRequest(p *Payment, now time.Time) *FulfillmentRequest {
	return &FulfillmentRequest{
		ID:        uuid.New(),
		ClinicID:  p.ClinicID,
		OrderID:   p.Reference.ID,
		PaymentID: p.ID,
		CreatedAt: now.UTC(),
	}
}

// Statuses written onto budgets and orders by reconciliation
const (
	TargetStatusPending   = "pending"
	TargetStatusPaid      = "paid"
	TargetStatusFailed    = "failed"
	TargetStatusCancelled = "cancelled"
)
