package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRecommendationCache implements RecommendationCache with
// process-local state for tests and single-instance deployments
type InMemoryRecommendationCache struct {
	mu       sync.Mutex
	views    map[uuid.UUID]int64
	recent   map[uuid.UUID][]uuid.UUID
	frequent map[uuid.UUID]frequentEntry
}

type frequentEntry struct {
	products  []uuid.UUID
	expiresAt time.Time
}

// NewInMemoryRecommendationCache creates an in-memory recommendation cache
func NewInMemoryRecommendationCache() *InMemoryRecommendationCache {
	return &InMemoryRecommendationCache{
		views:    make(map[uuid.UUID]int64),
		recent:   make(map[uuid.UUID][]uuid.UUID),
		frequent: make(map[uuid.UUID]frequentEntry),
	}
}

// IncrementViewCount bumps the global view counter for a product
func (c *InMemoryRecommendationCache) IncrementViewCount(ctx context.Context, productID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.views[productID]++
	return c.views[productID], nil
}

// TopViewed returns up to n products ordered by view count, highest first
func (c *InMemoryRecommendationCache) TopViewed(ctx context.Context, n int) ([]ProductViewCount, error) {
	if n <= 0 {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]ProductViewCount, 0, len(c.views))
	for productID, views := range c.views {
		result = append(result, ProductViewCount{ProductID: productID, Views: views})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Views != result[j].Views {
			return result[i].Views > result[j].Views
		}
		return result[i].ProductID.String() < result[j].ProductID.String()
	})

	if len(result) > n {
		result = result[:n]
	}
	return result, nil
}

// PushRecentlyViewed records a view at the head of the user's list
func (c *InMemoryRecommendationCache) PushRecentlyViewed(ctx context.Context, userID, productID uuid.UUID, limit int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.recent[userID]
	filtered := make([]uuid.UUID, 0, len(list)+1)
	filtered = append(filtered, productID)
	for _, id := range list {
		if id != productID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	c.recent[userID] = filtered
	return nil
}

// RecentlyViewed returns the user's most recent product views, newest first
func (c *InMemoryRecommendationCache) RecentlyViewed(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.recent[userID]
	if len(list) > limit {
		list = list[:limit]
	}
	result := make([]uuid.UUID, len(list))
	copy(result, list)
	return result, nil
}

// GetFrequentlyBought returns the cached co-purchase list; ok is false on miss
func (c *InMemoryRecommendationCache) GetFrequentlyBought(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.frequent[productID]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.frequent, productID)
		return nil, false, nil
	}

	products := make([]uuid.UUID, len(entry.products))
	copy(products, entry.products)
	return products, true, nil
}

// SetFrequentlyBought caches the co-purchase list with a TTL
func (c *InMemoryRecommendationCache) SetFrequentlyBought(ctx context.Context, productID uuid.UUID, products []uuid.UUID, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]uuid.UUID, len(products))
	copy(stored, products)
	c.frequent[productID] = frequentEntry{
		products:  stored,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// InvalidateFrequentlyBought drops the cached list for a product
func (c *InMemoryRecommendationCache) InvalidateFrequentlyBought(ctx context.Context, productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.frequent, productID)
	return nil
}

// Ensure InMemoryRecommendationCache implements RecommendationCache
var _ RecommendationCache = (*InMemoryRecommendationCache)(nil)
