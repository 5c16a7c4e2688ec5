package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hermes/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// FieldCache caches external field catalogue responses in Redis so webhook
// bursts do not hammer the field listing endpoints. Values are opaque bytes;
// a missing or expired key is a miss, never an error.
type FieldCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewFieldCache creates a FieldCache with the given TTL.
func NewFieldCache(rdb *redis.Client, ttl time.Duration) *FieldCache {
	return &FieldCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached bytes for key, with a hit flag.
func (c *FieldCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set stores the bytes for key with the cache's TTL.
func (c *FieldCache) Set(ctx context.Context, key string, data []byte) error {
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate drops the cached entry for key.
func (c *FieldCache) Invalidate(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}
