package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each queue in a Redis list of JSON encoded intents
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a RedisStore. Keys are stored as "<prefix>:<key>".
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) redisKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", s.keyPrefix, key)
}

// Get returns every intent in the list, in insertion order
func (s *RedisStore) Get(ctx context.Context, key string) ([]domain.Intent, error) {
	raw, err := s.client.LRange(ctx, s.redisKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read queue %s: %w", key, err)
	}

	intents := make([]domain.Intent, 0, len(raw))
	for _, item := range raw {
		var intent domain.Intent
		if err := json.Unmarshal([]byte(item), &intent); err != nil {
			return nil, fmt.Errorf("failed to decode queued intent: %w", err)
		}
		intents = append(intents, intent)
	}
	return intents, nil
}

// Append pushes intent onto the tail of the list
func (s *RedisStore) Append(ctx context.Context, key string, intent domain.Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to encode intent: %w", err)
	}
	if err := s.client.RPush(ctx, s.redisKey(key), payload).Err(); err != nil {
		return fmt.Errorf("failed to append to queue %s: %w", key, err)
	}
	return nil
}

// Delete removes the list
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete queue %s: %w", key, err)
	}
	return nil
}
