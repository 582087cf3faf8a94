package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apppayment "github.com/clinicfin/backend/internal/application/payment"
	"github.com/clinicfin/backend/internal/infrastructure/config"
)

// LockerFactory builds the payment locker for the configured deployment
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption configures the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory and the lockers it builds
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to a
// process-local locker. Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the locker and a close func for its resources. An empty
// Redis host selects the in-memory locker without trying Redis.
func (f *LockerFactory) Create(ctx context.Context) (apppayment.PaymentLocker, func() error, error) {
	noClose := func() error { return nil }
	if f.redisConfig.Host == "" {
		f.logger.Info("Using in-memory payment locker")
		return NewInMemoryPaymentLocker(), noClose, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if !f.allowInMemoryFallback {
			return nil, nil, fmt.Errorf("redis required for payment locks but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory payment locker; "+
			"replicas will rely on database row locks alone",
			zap.Error(err),
		)
		return NewInMemoryPaymentLocker(), noClose, nil
	}

	f.logger.Info("Using Redis payment locker", zap.String("addr", f.redisConfig.Addr()))
	return NewRedisPaymentLocker(client, f.redisConfig.LockTTL, f.logger), client.Close, nil
}
