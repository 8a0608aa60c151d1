package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ProductViewCount pairs a product with its accumulated view counter
type ProductViewCount struct {
	ProductID uuid.UUID
	Views     int64
}

// RecommendationCache holds the view counters and recommendation projections.
// Counters are best-effort: losing them degrades recommendations, never orders.
type RecommendationCache interface {
	// IncrementViewCount bumps the global view counter for a product
	IncrementViewCount(ctx context.Context, productID uuid.UUID) (int64, error)
	// TopViewed returns up to n products ordered by view count, highest first
	TopViewed(ctx context.Context, n int) ([]ProductViewCount, error)
	// PushRecentlyViewed records a view at the head of the user's list,
	// deduplicated, trimmed to limit entries
	PushRecentlyViewed(ctx context.Context, userID, productID uuid.UUID, limit int) error
	// RecentlyViewed returns the user's most recent product views, newest first
	RecentlyViewed(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)
	// GetFrequentlyBought returns the cached co-purchase list; ok is false on miss
	GetFrequentlyBought(ctx context.Context, productID uuid.UUID) (products []uuid.UUID, ok bool, err error)
	// SetFrequentlyBought caches the co-purchase list with a TTL
	SetFrequentlyBought(ctx context.Context, productID uuid.UUID, products []uuid.UUID, ttl time.Duration) error
	// InvalidateFrequentlyBought drops the cached list for a product
	InvalidateFrequentlyBought(ctx context.Context, productID uuid.UUID) error
}

// RedisRecommendationCache implements RecommendationCache on Redis
type RedisRecommendationCache struct {
	client *redis.Client
}

// NewRedisRecommendationCache creates a recommendation cache on an existing client
func NewRedisRecommendationCache(client *redis.Client) *RedisRecommendationCache {
	return &RedisRecommendationCache{client: client}
}

// IncrementViewCount bumps the product's score in the views sorted set
func (c *RedisRecommendationCache) IncrementViewCount(ctx context.Context, productID uuid.UUID) (int64, error) {
	score, err := c.client.ZIncrBy(ctx, ProductViewsKey(), 1, productID.String()).Result()
	if err != nil {
		return 0, err
	}
	return int64(score), nil
}

// TopViewed returns the highest-scoring products from the views sorted set
func (c *RedisRecommendationCache) TopViewed(ctx context.Context, n int) ([]ProductViewCount, error) {
	if n <= 0 {
		return nil, nil
	}
	members, err := c.client.ZRevRangeWithScores(ctx, ProductViewsKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	result := make([]ProductViewCount, 0, len(members))
	for _, member := range members {
		raw, ok := member.Member.(string)
		if !ok {
			continue
		}
		productID, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		result = append(result, ProductViewCount{ProductID: productID, Views: int64(member.Score)})
	}
	return result, nil
}

// PushRecentlyViewed records a view at the head of the user's list. The LRem
// first keeps each product at most once in the list.
func (c *RedisRecommendationCache) PushRecentlyViewed(ctx context.Context, userID, productID uuid.UUID, limit int) error {
	key := RecentlyViewedKey(userID)
	pipe := c.client.TxPipeline()
	pipe.LRem(ctx, key, 0, productID.String())
	pipe.LPush(ctx, key, productID.String())
	pipe.LTrim(ctx, key, 0, int64(limit-1))
	_, err := pipe.Exec(ctx)
	return err
}

// RecentlyViewed returns the user's most recent product views, newest first
func (c *RedisRecommendationCache) RecentlyViewed(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	values, err := c.client.LRange(ctx, RecentlyViewedKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	products := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		productID, err := uuid.Parse(value)
		if err != nil {
			continue
		}
		products = append(products, productID)
	}
	return products, nil
}

// GetFrequentlyBought returns the cached co-purchase list for a product
func (c *RedisRecommendationCache) GetFrequentlyBought(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, bool, error) {
	raw, err := c.client.Get(ctx, FrequentlyBoughtKey(productID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []uuid.UUID
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

// SetFrequentlyBought caches the co-purchase list with a TTL
func (c *RedisRecommendationCache) SetFrequentlyBought(ctx context.Context, productID uuid.UUID, products []uuid.UUID, ttl time.Duration) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, FrequentlyBoughtKey(productID), payload, ttl).Err()
}

// InvalidateFrequentlyBought drops the cached list for a product
func (c *RedisRecommendationCache) InvalidateFrequentlyBought(ctx context.Context, productID uuid.UUID) error {
	return c.client.Del(ctx, FrequentlyBoughtKey(productID)).Err()
}

// Ensure RedisRecommendationCache implements RecommendationCache
var _ RecommendationCache = (*RedisRecommendationCache)(nil)
