package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-ledger/internal/cache"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client, err := cache.NewClient(context.Background(), addr, "", 0)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	store := cache.NewIdempotencyStore(client, time.Minute)
	key := "test:idempotency:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })

	id, reserved, err := store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Zero(t, id)

	id, reserved, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.False(t, reserved, "second claim while pending")
	assert.Zero(t, id)

	require.NoError(t, store.Complete(ctx, key, 42))
	id, reserved, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, uint(42), id)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestIdempotencyStore_Release(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	store := cache.NewIdempotencyStore(client, time.Minute)
	key := "test:idempotency:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })

	_, reserved, err := store.Reserve(ctx, key)
	require.NoError(t, err)
	require.True(t, reserved)

	require.NoError(t, store.Release(ctx, key))

	_, reserved, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, reserved, "released keys can be claimed again")
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := cache.NewClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
