package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisStatusCache caches subscription gate decisions per user.
type RedisStatusCache struct {
	client redis.Cmdable
}

// NewRedisStatusCache creates a status cache on top of a redis client
func NewRedisStatusCache(client redis.Cmdable) ports.StatusCache {
	return &RedisStatusCache{client: client}
}

func (c *RedisStatusCache) Get(ctx context.Context, userID string) (*domain.GateDecision, error) {
	payload, err := c.client.Get(ctx, statusKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached status: %w", err)
	}
	var decision domain.GateDecision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return nil, fmt.Errorf("failed to decode cached status: %w", err)
	}
	return &decision, nil
}

func (c *RedisStatusCache) Set(ctx context.Context, userID string, decision domain.GateDecision, ttl time.Duration) error {
	payload, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	if err := c.client.Set(ctx, statusKeyPrefix+userID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache status: %w", err)
	}
	return nil
}

func (c *RedisStatusCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, statusKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate status: %w", err)
	}
	return nil
}
