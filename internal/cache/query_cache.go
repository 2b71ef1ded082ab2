// Package cache stores query results in Redis under string keys.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueryCache is a JSON value cache with key-based invalidation
type QueryCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewQueryCache creates a QueryCache storing entries as "<prefix>:<key>"
func NewQueryCache(client *redis.Client, keyPrefix string, ttl time.Duration) *QueryCache {
	return &QueryCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (c *QueryCache) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", c.keyPrefix, key)
}

// Get decodes the entry for key into dst. It reports false on a miss.
func (c *QueryCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return true, nil
}

// Set stores v under key with the cache TTL
func (c *QueryCache) Set(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.redisKey(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// Invalidate removes the entry for key
func (c *QueryCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache entry %s: %w", key, err)
	}
	return nil
}
