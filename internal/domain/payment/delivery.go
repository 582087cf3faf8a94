package payment

import (
	"time"

	"github.com/google/uuid"
)

// Delivery is the dedupe ledger entry of one webhook event id
type Delivery struct {
	EventID     string
	PaymentID   *uuid.UUID
	Attempts    int
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}
