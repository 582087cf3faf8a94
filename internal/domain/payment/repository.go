package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists payments
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByReference(ctx context.Context, ref string) (*Payment, error)
	// LockByID reads the payment holding a row lock until the transaction ends
	LockByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// UpdateStatus persists p only if its stored status still equals from.
	// It returns ErrConcurrentUpdate when no row matched.
	UpdateStatus(ctx context.Context, p *Payment, from Status) error
	Create(ctx context.Context, p *Payment) error
}

// DeliveryRepository persists the webhook dedupe ledger
type DeliveryRepository interface {
	FindByEventID(ctx context.Context, eventID string) (*Delivery, error)
	// Record inserts the delivery or increments its attempts, attaching paymentID when given
	Record(ctx context.Context, eventID string, paymentID *uuid.UUID, now time.Time) (*Delivery, error)
}

// FulfillmentRepository persists fulfillment requests, unique by order
type FulfillmentRepository interface {
	// CreateIfAbsent reports whether a new request was stored
	CreateIfAbsent(ctx context.Context, req *FulfillmentRequest) (bool, error)
}

// TargetRepository updates the budget or order a payment settles
type TargetRepository interface {
	SetBudgetStatus(ctx context.Context, budgetID uuid.UUID, status string, at time.Time) error
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string, at time.Time) error
}
