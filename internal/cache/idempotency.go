package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"go-inventory-ledger/internal/service"
)

const (
	pendingMarker      = "pending"
	defaultIdempotency = 24 * time.Hour
)

// IdempotencyStore keeps idempotency keys in Redis. A key is claimed with
// SETNX and later overwritten with the id of the ledger entry it produced.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotency
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (uint, bool, error) {
	ok, err := s.client.SetNX(ctx, key, pendingMarker, s.ttl).Result()
	if err != nil {
		return 0, false, err
	}
	if ok {
		return 0, true, nil
	}

	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Released between SETNX and GET; try once more.
		ok, err = s.client.SetNX(ctx, key, pendingMarker, s.ttl).Result()
		if err != nil {
			return 0, false, err
		}
		return 0, ok, nil
	}
	if err != nil {
		return 0, false, err
	}
	if val == pendingMarker {
		return 0, false, nil
	}

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency value for %s: %w", key, err)
	}
	return uint(id), false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, entryID uint) error {
	return s.client.Set(ctx, key, strconv.FormatUint(uint64(entryID), 10), s.ttl).Err()
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

var _ service.IdempotencyStore = (*IdempotencyStore)(nil)
