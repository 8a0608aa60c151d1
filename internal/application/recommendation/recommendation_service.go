package recommendation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// CoPurchaseSource computes which products are bought together with a given
// product, most frequent first
type CoPurchaseSource interface {
	FrequentlyBoughtWith(ctx context.Context, productID uuid.UUID, limit int) ([]uuid.UUID, error)
}

// RecommendationService tracks product views and serves co-purchase
// recommendations. Everything here is best-effort: a cache outage degrades
// recommendations but never blocks browsing or checkout.
type RecommendationService struct {
	recCache            cache.RecommendationCache
	coPurchases         CoPurchaseSource
	frequentlyBoughtTTL time.Duration
	recentlyViewedLimit int
	logger              *zap.Logger
}

// NewRecommendationService creates a new RecommendationService
func NewRecommendationService(
	recCache cache.RecommendationCache,
	coPurchases CoPurchaseSource,
	frequentlyBoughtTTL time.Duration,
	recentlyViewedLimit int,
	logger *zap.Logger,
) *RecommendationService {
	return &RecommendationService{
		recCache:            recCache,
		coPurchases:         coPurchases,
		frequentlyBoughtTTL: frequentlyBoughtTTL,
		recentlyViewedLimit: recentlyViewedLimit,
		logger:              logger,
	}
}

// TrackProductView records one view: the global counter and the user's
// recently-viewed list
func (s *RecommendationService) TrackProductView(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.recCache.IncrementViewCount(ctx, productID); err != nil {
		return err
	}
	return s.recCache.PushRecentlyViewed(ctx, userID, productID, s.recentlyViewedLimit)
}

// RecentlyViewed returns the user's most recent product views, newest first
func (s *RecommendationService) RecentlyViewed(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.recCache.RecentlyViewed(ctx, userID, s.recentlyViewedLimit)
}

// TopViewed returns the most viewed products platform-wide
func (s *RecommendationService) TopViewed(ctx context.Context, n int) ([]cache.ProductViewCount, error) {
	return s.recCache.TopViewed(ctx, n)
}

// FrequentlyBoughtTogether returns the co-purchase list of a product,
// read-through with a TTL so the order join runs at most once per window
func (s *RecommendationService) FrequentlyBoughtTogether(ctx context.Context, productID uuid.UUID, limit int) ([]uuid.UUID, error) {
	cached, ok, err := s.recCache.GetFrequentlyBought(ctx, productID)
	if err != nil {
		s.logger.Warn("frequently-bought cache read failed, recomputing",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	} else if ok {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	products, err := s.coPurchases.FrequentlyBoughtWith(ctx, productID, limit)
	if err != nil {
		return nil, err
	}

	if err := s.recCache.SetFrequentlyBought(ctx, productID, products, s.frequentlyBoughtTTL); err != nil {
		s.logger.Warn("failed to cache frequently-bought list",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
	return products, nil
}

// InvalidateForProducts drops the cached co-purchase lists of the given
// products, called when a new order changes their co-purchase data
func (s *RecommendationService) InvalidateForProducts(ctx context.Context, productIDs []uuid.UUID) {
	for _, productID := range productIDs {
		if err := s.recCache.InvalidateFrequentlyBought(ctx, productID); err != nil {
			s.logger.Warn("failed to invalidate frequently-bought cache",
				zap.String("product_id", productID.String()),
				zap.Error(err),
			)
		}
	}
}
