// Package offlinecart keeps cart mutations made while the upstream cart API
// is unreachable and replays them once it comes back.
//
// Replay is at-least-once: the queue is cleared only after every queued
// intent was accepted, so an interruption between acceptance and the clear
// resends the already accepted intents on the next drain.
package offlinecart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/network"

	"go.uber.org/zap"
)

// DefaultQueueKey is the record name the queue is stored under
const DefaultQueueKey = "offline-cart"

// Cache keys invalidated after cart mutations
const (
	CacheKeyCart      = "cart"
	CacheKeyCartItems = "cart-items"
)

var ErrReplayFailed = errors.New("offline cart replay failed")

// Store is a durable ordered list of intents per key.
// Get returns an empty slice for a missing key. Append must be atomic.
type Store interface {
	Get(ctx context.Context, key string) ([]domain.Intent, error)
	Append(ctx context.Context, key string, intent domain.Intent) error
	Delete(ctx context.Context, key string) error
}

// Backend is the upstream cart API
type Backend interface {
	AddItem(ctx context.Context, intent domain.Intent) (*domain.Cart, error)
}

// Invalidator drops cached query results by key
type Invalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// Queue buffers intents in a Store and replays them against a Backend
type Queue struct {
	// mu serializes Enqueue and DrainAndReplay so the final Delete of a
	// drain never removes an intent appended while it was running.
	mu sync.Mutex

	key      string
	store    Store
	backend  Backend
	cache    Invalidator
	notifier Notifier
	status   network.Status
	logger   *zap.Logger
}

// NewQueue creates a Queue stored under key (DefaultQueueKey when empty)
func NewQueue(
	key string,
	store Store,
	backend Backend,
	cache Invalidator,
	notifier Notifier,
	status network.Status,
	logger *zap.Logger,
) *Queue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &Queue{
		key:      key,
		store:    store,
		backend:  backend,
		cache:    cache,
		notifier: notifier,
		status:   status,
		logger:   logger,
	}
}

// Key returns the record name of the queue
func (q *Queue) Key() string {
	return q.key
}

// Enqueue appends intent to the queue. Duplicates are kept.
func (q *Queue) Enqueue(ctx context.Context, intent domain.Intent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.appendLocked(ctx, intent)
}

// submit sends intent to the backend, or appends it behind older queued
// intents when the queue is not empty so the upstream sees them in order.
// It reports whether intent was queued.
func (q *Queue) submit(ctx context.Context, intent domain.Intent) (queued bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := q.store.Get(ctx, q.key)
	if err != nil {
		return false, fmt.Errorf("failed to read offline queue: %w", err)
	}
	if len(pending) > 0 {
		if err := q.appendLocked(ctx, intent); err != nil {
			return false, err
		}
		return true, nil
	}

	if _, err := q.backend.AddItem(ctx, intent); err != nil {
		return false, err
	}
	return false, nil
}

func (q *Queue) appendLocked(ctx context.Context, intent domain.Intent) error {
	if err := q.store.Append(ctx, q.key, intent); err != nil {
		return fmt.Errorf("failed to enqueue offline intent: %w", err)
	}

	q.logger.Info("Queued offline cart intent",
		zap.String("queue", q.key),
		zap.Int64("variant_id", intent.VariantID),
		zap.Int("quantity", intent.Quantity),
	)
	return nil
}

// Pending returns the queued intents in insertion order
func (q *Queue) Pending(ctx context.Context) ([]domain.Intent, error) {
	intents, err := q.store.Get(ctx, q.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read offline queue: %w", err)
	}
	return intents, nil
}

// DrainResult summarises one DrainAndReplay call
type DrainResult struct {
	Replayed int `json:"replayed"`
}

// DrainAndReplay sends every queued intent to the backend, one at a time
// and in insertion order. The queue is deleted only if all of them succeed;
// the first failure stops the drain and leaves the whole queue in place.
func (q *Queue) DrainAndReplay(ctx context.Context) (DrainResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	intents, err := q.store.Get(ctx, q.key)
	if err != nil {
		return DrainResult{}, fmt.Errorf("failed to read offline queue: %w", err)
	}
	if len(intents) == 0 {
		return DrainResult{}, nil
	}

	q.logger.Info("Replaying offline cart queue",
		zap.String("queue", q.key),
		zap.Int("pending", len(intents)),
	)

	for i, intent := range intents {
		if _, err := q.backend.AddItem(ctx, intent); err != nil {
			q.logger.Error("Offline cart replay failed",
				zap.String("queue", q.key),
				zap.Int("position", i),
				zap.Int64("variant_id", intent.VariantID),
				zap.Error(err),
			)
			q.notifier.Failure("Could not sync cart items added while offline, will retry when back online")
			return DrainResult{Replayed: i}, fmt.Errorf("%w: intent %d of %d: %w", ErrReplayFailed, i+1, len(intents), err)
		}
	}

	if err := q.store.Delete(ctx, q.key); err != nil {
		return DrainResult{Replayed: len(intents)}, fmt.Errorf("failed to clear offline queue: %w", err)
	}

	if err := q.cache.Invalidate(ctx, CacheKeyCart); err != nil {
		q.logger.Warn("Failed to invalidate cart cache", zap.Error(err))
	}

	q.notifier.Info(fmt.Sprintf("Synced %d cart item(s) added while offline", len(intents)))
	return DrainResult{Replayed: len(intents)}, nil
}

// Watch drains the queue on every offline to online transition of the
// network status. The drain runs on the goroutine that reports the
// transition. Calling the returned function stops watching.
func (q *Queue) Watch(ctx context.Context) (unsubscribe func()) {
	return q.status.OnStatusChange(func(online bool) {
		if !online {
			return
		}
		if _, err := q.DrainAndReplay(ctx); err != nil {
			q.logger.Warn("Offline queue left pending", zap.Error(err))
		}
	})
}
