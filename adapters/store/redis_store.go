package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xrpstake/stakeboard/ports"
)

// RedisStore is a Redis implementation of the consumption store.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(client *redis.Client) ports.ConsumptionStore {
	return &RedisStore{
		client: client,
		prefix: "stakeboard:consumed:",
	}
}

// Consume records outcome for requestID unless one is already recorded.
// SETNX makes the first finalize win across instances.
func (s *RedisStore) Consume(ctx context.Context, requestID, outcome string, ttl time.Duration) (string, bool, error) {
	key := s.prefix + requestID

	set, err := s.client.SetNX(ctx, key, outcome, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to record consumption: %w", err)
	}
	if set {
		return outcome, false, nil
	}

	recorded, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// The earlier record expired between SetNX and Get; take
			// ownership of the outcome now.
			if err := s.client.Set(ctx, key, outcome, ttl).Err(); err != nil {
				return "", false, fmt.Errorf("failed to record consumption: %w", err)
			}
			return outcome, false, nil
		}
		return "", false, fmt.Errorf("failed to read recorded consumption: %w", err)
	}

	return recorded, true, nil
}
