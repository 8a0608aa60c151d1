package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryCartCache implements CartCache with process-local state. Suitable
// for tests and single-instance deployments; carts are not shared across
// processes and do not survive restarts.
type InMemoryCartCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	carts map[uuid.UUID]*inMemoryCart
}

type inMemoryCart struct {
	items     map[uuid.UUID]int
	expiresAt time.Time
}

// NewInMemoryCartCache creates an in-memory cart cache
func NewInMemoryCartCache(ttl time.Duration) *InMemoryCartCache {
	return &InMemoryCartCache{
		ttl:   ttl,
		carts: make(map[uuid.UUID]*inMemoryCart),
	}
}

func (c *InMemoryCartCache) liveCart(userID uuid.UUID) *inMemoryCart {
	cart, ok := c.carts[userID]
	if !ok {
		return nil
	}
	if time.Now().After(cart.expiresAt) {
		delete(c.carts, userID)
		return nil
	}
	return cart
}

// GetItems returns the full cart for a user
func (c *InMemoryCartCache) GetItems(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart := c.liveCart(userID)
	if cart == nil {
		return map[uuid.UUID]int{}, nil
	}

	items := make(map[uuid.UUID]int, len(cart.items))
	for productID, quantity := range cart.items {
		items[productID] = quantity
	}
	return items, nil
}

// SetItem writes one cart line and slides the expiry window
func (c *InMemoryCartCache) SetItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart := c.liveCart(userID)
	if cart == nil {
		cart = &inMemoryCart{items: make(map[uuid.UUID]int)}
		c.carts[userID] = cart
	}
	cart.items[productID] = quantity
	cart.expiresAt = time.Now().Add(c.ttl)
	return nil
}

// RemoveItem deletes one cart line
func (c *InMemoryCartCache) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cart := c.liveCart(userID); cart != nil {
		delete(cart.items, productID)
	}
	return nil
}

// Invalidate drops the whole cart
func (c *InMemoryCartCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.carts, userID)
	return nil
}

// Ensure InMemoryCartCache implements CartCache
var _ CartCache = (*InMemoryCartCache)(nil)
