package cache

import (
	"context"
	"sync"

	apppayment "github.com/clinicfin/backend/internal/application/payment"
)

type keyedLock struct {
	slot chan struct{}
	refs int
}

// InMemoryPaymentLocker serializes payments within one process.
// Suitable for single-replica deployments and tests.
type InMemoryPaymentLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

// NewInMemoryPaymentLocker creates an empty locker
func NewInMemoryPaymentLocker() *InMemoryPaymentLocker {
	return &InMemoryPaymentLocker{locks: make(map[string]*keyedLock)}
}

// Lock implements PaymentLocker
func (l *InMemoryPaymentLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{slot: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.slot <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.slot
				l.unref(key, kl)
			})
		}, nil
	case <-ctx.Done():
		l.unref(key, kl)
		return nil, ctx.Err()
	}
}

func (l *InMemoryPaymentLocker) unref(key string, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// Size returns the number of keys held or awaited
func (l *InMemoryPaymentLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

var _ apppayment.PaymentLocker = (*InMemoryPaymentLocker)(nil)
