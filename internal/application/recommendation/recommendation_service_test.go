package recommendation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockCoPurchaseSource serves canned co-purchase lists and counts queries
type mockCoPurchaseSource struct {
	lists   map[uuid.UUID][]uuid.UUID
	queries int
}

func newMockCoPurchaseSource() *mockCoPurchaseSource {
	return &mockCoPurchaseSource{lists: make(map[uuid.UUID][]uuid.UUID)}
}

func (s *mockCoPurchaseSource) FrequentlyBoughtWith(ctx context.Context, productID uuid.UUID, limit int) ([]uuid.UUID, error) {
	s.queries++
	list := s.lists[productID]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func newTestRecommendationService(source *mockCoPurchaseSource) *RecommendationService {
	return NewRecommendationService(cache.NewInMemoryRecommendationCache(), source, 6*time.Hour, 20, zap.NewNop())
}

func TestRecommendationService_TrackProductView(t *testing.T) {
	svc := newTestRecommendationService(newMockCoPurchaseSource())
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	require.NoError(t, svc.TrackProductView(ctx, userID, productID))
	require.NoError(t, svc.TrackProductView(ctx, userID, productID))

	viewed, err := svc.RecentlyViewed(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{productID}, viewed)

	top, err := svc.TopViewed(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(2), top[0].Views)
}

func TestRecommendationService_FrequentlyBoughtTogether_ReadThrough(t *testing.T) {
	source := newMockCoPurchaseSource()
	svc := newTestRecommendationService(source)
	ctx := context.Background()
	productID := uuid.New()
	related := []uuid.UUID{uuid.New(), uuid.New()}
	source.lists[productID] = related

	got, err := svc.FrequentlyBoughtTogether(ctx, productID, 10)
	require.NoError(t, err)
	assert.Equal(t, related, got)
	assert.Equal(t, 1, source.queries)

	// Second call is served from the cache.
	got, err = svc.FrequentlyBoughtTogether(ctx, productID, 10)
	require.NoError(t, err)
	assert.Equal(t, related, got)
	assert.Equal(t, 1, source.queries, "the order join runs once per TTL window")
}

func TestRecommendationService_FrequentlyBoughtTogether_EmptyList(t *testing.T) {
	source := newMockCoPurchaseSource()
	svc := newTestRecommendationService(source)

	got, err := svc.FrequentlyBoughtTogether(context.Background(), uuid.New(), 10)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecommendationService_InvalidateForProducts(t *testing.T) {
	source := newMockCoPurchaseSource()
	svc := newTestRecommendationService(source)
	ctx := context.Background()
	productID := uuid.New()
	source.lists[productID] = []uuid.UUID{uuid.New()}

	_, err := svc.FrequentlyBoughtTogether(ctx, productID, 10)
	require.NoError(t, err)
	require.Equal(t, 1, source.queries)

	svc.InvalidateForProducts(ctx, []uuid.UUID{productID})

	_, err = svc.FrequentlyBoughtTogether(ctx, productID, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, source.queries, "invalidation forces a recompute")
}
