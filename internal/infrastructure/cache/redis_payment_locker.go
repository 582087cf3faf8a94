package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apppayment "github.com/clinicfin/backend/internal/application/payment"
)

const defaultLockPrefix = "clinicfin:payment-lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another replica is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisPaymentLocker implements PaymentLocker with SET NX PX keys shared by
// every replica
type RedisPaymentLocker struct {
	client        redis.UniversalClient
	keyPrefix     string
	ttl           time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

// RedisLockerOption configures a RedisPaymentLocker
type RedisLockerOption func(*RedisPaymentLocker)

// WithKeyPrefix namespaces lock keys
func WithKeyPrefix(prefix string) RedisLockerOption {
	return func(l *RedisPaymentLocker) {
		if prefix != "" {
			l.keyPrefix = prefix
		}
	}
}

// WithRetryInterval sets how long to wait between acquisition attempts
func WithRetryInterval(d time.Duration) RedisLockerOption {
	return func(l *RedisPaymentLocker) {
		if d > 0 {
			l.retryInterval = d
		}
	}
}

// NewRedisPaymentLocker wraps an existing client. ttl bounds how long a
// crashed holder can block others.
func NewRedisPaymentLocker(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger, opts ...RedisLockerOption) *RedisPaymentLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	l := &RedisPaymentLocker{
		client:        client,
		keyPrefix:     defaultLockPrefix,
		ttl:           ttl,
		retryInterval: 50 * time.Millisecond,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock implements PaymentLocker
func (l *RedisPaymentLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("acquire payment lock %s: %w", key, err)
		}
		if ok {
			return func() { l.release(redisKey, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisPaymentLocker) release(redisKey, token string) {
	// the caller's context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		l.logger.Warn("Failed to release payment lock", zap.String("key", redisKey), zap.Error(err))
	}
}

var _ apppayment.PaymentLocker = (*RedisPaymentLocker)(nil)
