// internal/infrastructure/database/redis/cart_state.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
)

const maxUpdateAttempts = 5

var releaseSubmitScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CartStateStore keeps serialized carts as plain string values. Every write
// refreshes the expiry, so a cart lives ttl past its last change. It also
// holds the per-cart submission locks shared by all replicas.
type CartStateStore struct {
	client *Client
	ttl    time.Duration
}

// NewCartStateStore creates a cart state store. A zero ttl keeps carts forever.
func NewCartStateStore(client *Client, ttl time.Duration) *CartStateStore {
	return &CartStateStore{client: client, ttl: ttl}
}

// LoadState reads the value at key
func (s *CartStateStore) LoadState(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// SaveState overwrites the value at key
func (s *CartStateStore) SaveState(ctx context.Context, key string, data []byte) error {
	if err := s.client.Redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// UpdateState applies fn optimistically under WATCH and retries when another
// client wrote the key between the read and the write
func (s *CartStateStore) UpdateState(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.ttl)
			return nil
		})
		return err
	}

	for range maxUpdateAttempts {
		err := s.client.Redis.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis update %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("redis update %s: %w", key, redis.TxFailedErr)
}

// AcquireSubmit sets key with a fresh token unless it already exists
func (s *CartStateStore) AcquireSubmit(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.Redis.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return token, ok, nil
}

// ReleaseSubmit deletes key only while it still holds token
func (s *CartStateStore) ReleaseSubmit(ctx context.Context, key, token string) error {
	if err := releaseSubmitScript.Run(ctx, s.client.Redis, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}
