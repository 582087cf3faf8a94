//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisPaymentLocker(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	locker := NewRedisPaymentLocker(client, time.Second, nil, WithRetryInterval(10*time.Millisecond))

	unlock, err := locker.Lock(ctx, "p-1")
	require.NoError(t, err)

	t.Run("second holder waits until ctx ends", func(t *testing.T) {
		waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := locker.Lock(waitCtx, "p-1")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("release lets the next holder in", func(t *testing.T) {
		unlock()
		next, err := locker.Lock(ctx, "p-1")
		require.NoError(t, err)
		next()
	})

	t.Run("expired lock is not released by the old holder", func(t *testing.T) {
		short := NewRedisPaymentLocker(client, 30*time.Millisecond, nil, WithRetryInterval(5*time.Millisecond))
		stale, err := short.Lock(ctx, "p-2")
		require.NoError(t, err)

		long := NewRedisPaymentLocker(client, time.Minute, nil, WithRetryInterval(5*time.Millisecond))
		current, err := long.Lock(ctx, "p-2") // acquired after expiry
		require.NoError(t, err)

		stale()
		exists, err := client.Exists(ctx, defaultLockPrefix+"p-2").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
		current()
	})
}
