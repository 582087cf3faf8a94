package payment

import (
	"context"
)

// PaymentLocker serializes reconciliation of one payment across goroutines or replicas.
// The database row lock stays authoritative; the locker only reduces contention.
type PaymentLocker interface {
	// Lock blocks until key is held or ctx ends. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
