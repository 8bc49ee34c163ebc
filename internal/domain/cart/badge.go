// internal/domain/cart/badge.go
package cart

import (
	"context"
	"sync"

	"github.com/your-org/storefront-gateway/internal/domain/session"
	"github.com/your-org/storefront-gateway/internal/pkg/bus"
)

// BadgeCache serves the header cart badge without hitting the remote cart
// service on every page view. It subscribes to the notification bus: a
// CartUpdated event drops the cached count for that session so the next read
// recomputes it, and a logout drops it entirely.
type BadgeCache struct {
	service *Service

	mu     sync.RWMutex
	counts map[string]int

	unsubscribes []func()
}

// NewBadgeCache creates a badge cache over the cart service
func NewBadgeCache(service *Service) *BadgeCache {
	return &BadgeCache{
		service: service,
		counts:  make(map[string]int),
	}
}

// Start subscribes the cache to the notification bus
func (b *BadgeCache) Start(eventBus *bus.Bus) {
	b.unsubscribes = append(b.unsubscribes,
		eventBus.Subscribe(bus.TopicCartUpdated, func(event bus.Event) {
			b.invalidate(event.SessionID)
		}),
		eventBus.Subscribe(bus.TopicUserLoggedOut, func(event bus.Event) {
			b.invalidate(event.SessionID)
		}),
	)
}

// Stop deregisters the cache from the bus
func (b *BadgeCache) Stop() {
	for _, unsubscribe := range b.unsubscribes {
		unsubscribe()
	}
	b.unsubscribes = nil
}

// Count returns the session's cart item count, from cache when fresh
func (b *BadgeCache) Count(ctx context.Context, sess session.Handle) (int, error) {
	b.mu.RLock()
	count, ok := b.counts[sess.ID()]
	b.mu.RUnlock()
	if ok {
		return count, nil
	}

	count, err := b.service.ItemCount(ctx, sess)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	b.counts[sess.ID()] = count
	b.mu.Unlock()

	return count, nil
}

func (b *BadgeCache) invalidate(sessionID string) {
	b.mu.Lock()
	delete(b.counts, sessionID)
	b.mu.Unlock()
}
