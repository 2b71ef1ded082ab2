package offlinecart

import (
	"context"
	"fmt"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

// Cart routes cart mutations to the backend while online and to the offline
// queue while offline
type Cart struct {
	queue *Queue
}

// NewCart creates a Cart on top of queue
func NewCart(queue *Queue) *Cart {
	return &Cart{queue: queue}
}

// Add applies intent. Offline it is queued and acknowledged with an
// informational notification. Online it is sent upstream unless intents
// queued earlier have not been replayed yet, in which case it is queued
// behind them. An upstream rejection is returned to the caller without retry.
func (c *Cart) Add(ctx context.Context, intent domain.Intent) (domain.MutationOutcome, error) {
	q := c.queue

	if !q.status.IsOnline() {
		if err := q.Enqueue(ctx, intent); err != nil {
			return "", err
		}
		q.notifier.Info("Added to cart offline, it will sync when you are back online")
		return domain.OutcomeQueuedOffline, nil
	}

	queued, err := q.submit(ctx, intent)
	if err != nil {
		q.notifier.Failure("Could not add item to cart")
		return "", fmt.Errorf("failed to add item to cart: %w", err)
	}
	if queued {
		q.notifier.Info("Added to cart, it will sync after items added while offline")
		return domain.OutcomeQueuedOffline, nil
	}

	for _, key := range []string{CacheKeyCart, CacheKeyCartItems} {
		if err := q.cache.Invalidate(ctx, key); err != nil {
			q.logger.Warn("Failed to invalidate cache", zap.String("key", key), zap.Error(err))
		}
	}

	return domain.OutcomeApplied, nil
}
