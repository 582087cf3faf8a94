package payment

import (
	"errors"

	"github.com/clinicfin/backend/internal/domain/shared"
)

var (
	// ErrInvalidSignature is a non-retryable authenticity failure
	ErrInvalidSignature = shared.NewDomainError("BAD_SIGNATURE", "webhook signature verification failed")

	// ErrInvalidPayload is returned when the notification cannot be parsed
	ErrInvalidPayload = shared.NewDomainError("BAD_REQUEST", "webhook payload is malformed")

	// ErrProviderUnavailable is a retryable failure fetching the provider document
	ErrProviderUnavailable = shared.NewDomainError("INTERNAL_RETRYABLE", "payment provider is unavailable")

	// ErrPaymentBusy is a retryable failure to acquire the per-payment lock
	ErrPaymentBusy = shared.NewDomainError("INTERNAL_RETRYABLE", "payment is being reconciled by another worker")
)

var (
	ErrTerminalState    = errors.New("payment: status is terminal")
	ErrInvalidReference = errors.New("payment: malformed external reference")
	ErrConcurrentUpdate = errors.New("payment: status changed concurrently")
	ErrMissingSecret    = errors.New("payment: webhook secret is not configured")
)
