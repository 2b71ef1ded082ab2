// Package storage provides durable backends for the offline cart queue.
package storage

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// MemoryStore keeps queues in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	queues map[string][]domain.Intent
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{queues: make(map[string][]domain.Intent)}
}

// Get returns a copy of the queue stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]domain.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Intent{}, s.queues[key]...), nil
}

// Append adds intent to the end of the queue stored under key
func (s *MemoryStore) Append(ctx context.Context, key string, intent domain.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[key] = append(s.queues[key], intent)
	return nil
}

// Delete removes the queue stored under key
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, key)
	return nil
}
