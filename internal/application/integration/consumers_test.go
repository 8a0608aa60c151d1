package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsphere/backend/internal/application/recommendation"
	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/domain/ordering"
	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockOrderRepository serves canned orders
type mockOrderRepository struct {
	orders map[uuid.UUID]*ordering.Order
}

func (r *mockOrderRepository) Create(ctx context.Context, order *ordering.Order, events ...shared.IntegrationEvent) error {
	r.orders[order.ID] = order
	return nil
}

func (r *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

// mockProductIndexRepository records projection writes
type mockProductIndexRepository struct {
	entries map[uuid.UUID]*catalog.ProductIndexEntry
}

func newMockProductIndexRepository() *mockProductIndexRepository {
	return &mockProductIndexRepository{entries: make(map[uuid.UUID]*catalog.ProductIndexEntry)}
}

func (r *mockProductIndexRepository) Upsert(ctx context.Context, entry *catalog.ProductIndexEntry) error {
	r.entries[entry.ProductID] = entry
	return nil
}

func (r *mockProductIndexRepository) Delete(ctx context.Context, productID uuid.UUID) error {
	delete(r.entries, productID)
	return nil
}

type staticCoPurchaseSource struct{}

func (staticCoPurchaseSource) FrequentlyBoughtWith(ctx context.Context, productID uuid.UUID, limit int) ([]uuid.UUID, error) {
	return nil, nil
}

func TestOrderCreatedConsumer_InvalidatesRecommendations(t *testing.T) {
	ctx := context.Background()
	recCache := cache.NewInMemoryRecommendationCache()
	recSvc := recommendation.NewRecommendationService(recCache, staticCoPurchaseSource{}, 6*time.Hour, 20, zap.NewNop())

	price := decimal.NewFromInt(10)
	order := ordering.NewOrder(uuid.New(), "ORD-20260301-0001", []ordering.OrderItem{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: price, TotalPrice: price},
	})
	orders := &mockOrderRepository{orders: map[uuid.UUID]*ordering.Order{order.ID: order}}

	productID := order.Items[0].ProductID
	require.NoError(t, recCache.SetFrequentlyBought(ctx, productID, []uuid.UUID{uuid.New()}, time.Hour))

	consumer := NewOrderCreatedConsumer(orders, recSvc, zap.NewNop())
	err := consumer.Handle(ctx, ordering.NewOrderCreatedEvent(order))

	require.NoError(t, err)
	_, ok, err := recCache.GetFrequentlyBought(ctx, productID)
	require.NoError(t, err)
	assert.False(t, ok, "the ordered product's co-purchase cache is dropped")
}

func TestOrderCreatedConsumer_UnknownOrder(t *testing.T) {
	orders := &mockOrderRepository{orders: map[uuid.UUID]*ordering.Order{}}
	recSvc := recommendation.NewRecommendationService(cache.NewInMemoryRecommendationCache(), staticCoPurchaseSource{}, 6*time.Hour, 20, zap.NewNop())
	consumer := NewOrderCreatedConsumer(orders, recSvc, zap.NewNop())

	event := &ordering.OrderCreatedEvent{
		BaseEvent: shared.NewBaseEvent(ordering.EventTypeOrderCreated),
		OrderID:   uuid.New(),
	}
	err := consumer.Handle(context.Background(), event)

	require.ErrorIs(t, err, shared.ErrNotFound, "the relay retries until the order is visible")
}

func TestProductIndexSyncConsumer_Upsert(t *testing.T) {
	index := newMockProductIndexRepository()
	consumer := NewProductIndexSyncConsumer(index, zap.NewNop())

	product := &catalog.Product{
		ID:       uuid.New(),
		SKU:      "SKU-1",
		Name:     "Widget",
		Price:    decimal.RequireFromString("12.34"),
		IsActive: true,
	}
	err := consumer.Handle(context.Background(), catalog.NewProductIndexSyncEvent(product, false))

	require.NoError(t, err)
	entry, ok := index.entries[product.ID]
	require.True(t, ok)
	assert.Equal(t, "SKU-1", entry.SKU)
	assert.Equal(t, "Widget", entry.Name)
	assert.True(t, entry.Price.Equal(product.Price))
	assert.True(t, entry.IsActive)
}

func TestProductIndexSyncConsumer_ReplayConverges(t *testing.T) {
	index := newMockProductIndexRepository()
	consumer := NewProductIndexSyncConsumer(index, zap.NewNop())

	product := &catalog.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(10), IsActive: true}
	event := catalog.NewProductIndexSyncEvent(product, false)

	require.NoError(t, consumer.Handle(context.Background(), event))
	require.NoError(t, consumer.Handle(context.Background(), event))

	assert.Len(t, index.entries, 1)
}

func TestProductIndexSyncConsumer_Delete(t *testing.T) {
	index := newMockProductIndexRepository()
	consumer := NewProductIndexSyncConsumer(index, zap.NewNop())

	product := &catalog.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(10), IsActive: false}
	require.NoError(t, consumer.Handle(context.Background(), catalog.NewProductIndexSyncEvent(product, false)))
	require.Len(t, index.entries, 1)

	err := consumer.Handle(context.Background(), catalog.NewProductIndexSyncEvent(product, true))

	require.NoError(t, err)
	assert.Empty(t, index.entries)
}
