package ordering

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/shopsphere/backend/internal/application/inventory"
	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/domain/ordering"
	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/infrastructure/cache"
	"github.com/shopsphere/backend/internal/infrastructure/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockProductRepository is an in-memory ProductRepository for service tests
type mockProductRepository struct {
	products map[uuid.UUID]*catalog.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *mockProductRepository) Save(ctx context.Context, product *catalog.Product, events ...shared.IntegrationEvent) error {
	r.products[product.ID] = product
	return nil
}

func (r *mockProductRepository) add(price string, active bool) *catalog.Product {
	p := &catalog.Product{
		ID:       uuid.New(),
		SKU:      "SKU-" + uuid.NewString()[:8],
		Name:     "Test Product",
		Price:    decimal.RequireFromString(price),
		IsActive: active,
	}
	r.products[p.ID] = p
	return p
}

// mockInventoryRepository is an in-memory InventoryRepository for service tests
type mockInventoryRepository struct {
	mu    sync.Mutex
	stock map[uuid.UUID]*catalog.Inventory
}

func newMockInventoryRepository() *mockInventoryRepository {
	return &mockInventoryRepository{stock: make(map[uuid.UUID]*catalog.Inventory)}
}

func (r *mockInventoryRepository) GetByProductID(ctx context.Context, productID uuid.UUID) (*catalog.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.stock[productID]; ok {
		clone := *inv
		return &clone, nil
	}
	return nil, shared.ErrNotFound
}

func (r *mockInventoryRepository) Update(ctx context.Context, inventory *catalog.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *inventory
	r.stock[inventory.ProductID] = &clone
	return nil
}

func (r *mockInventoryRepository) AddMovement(ctx context.Context, movement *catalog.InventoryMovement) error {
	return nil
}

func (r *mockInventoryRepository) seed(productID uuid.UUID, quantity int) {
	r.stock[productID] = &catalog.Inventory{
		ID:                uuid.New(),
		ProductID:         productID,
		QuantityAvailable: quantity,
	}
}

func (r *mockInventoryRepository) available(productID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stock[productID].QuantityAvailable
}

// mockOrderRepository records Create calls and their events
type mockOrderRepository struct {
	orders         map[uuid.UUID]*ordering.Order
	savedEvents    []shared.IntegrationEvent
	createFailWith error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*ordering.Order)}
}

func (r *mockOrderRepository) Create(ctx context.Context, order *ordering.Order, events ...shared.IntegrationEvent) error {
	if r.createFailWith != nil {
		return r.createFailWith
	}
	r.orders[order.ID] = order
	r.savedEvents = append(r.savedEvents, events...)
	return nil
}

func (r *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

type orderServiceFixture struct {
	svc       *OrderService
	orders    *mockOrderRepository
	products  *mockProductRepository
	inventory *mockInventoryRepository
	carts     cache.CartCache
}

func newOrderServiceFixture() *orderServiceFixture {
	products := newMockProductRepository()
	inventoryRepo := newMockInventoryRepository()
	orders := newMockOrderRepository()
	carts := cache.NewInMemoryCartCache(time.Hour)

	inventorySvc := appinventory.NewInventoryService(inventoryRepo, lock.NewInMemoryLock(), 10*time.Second, zap.NewNop())
	svc := NewOrderService(orders, products, inventorySvc, carts, zap.NewNop())

	return &orderServiceFixture{
		svc:       svc,
		orders:    orders,
		products:  products,
		inventory: inventoryRepo,
		carts:     carts,
	}
}

func TestOrderService_PlaceOrder(t *testing.T) {
	f := newOrderServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	productA := f.products.add("10.00", true)
	productB := f.products.add("5.50", true)
	f.inventory.seed(productA.ID, 10)
	f.inventory.seed(productB.ID, 10)

	require.NoError(t, f.carts.SetItem(ctx, userID, productA.ID, 2))

	order, err := f.svc.PlaceOrder(ctx, userID, []PlaceOrderItem{
		{ProductID: productA.ID, Quantity: 2},
		{ProductID: productB.ID, Quantity: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, ordering.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.50")), "got total %s", order.TotalAmount)
	require.Len(t, order.Items, 2)

	// Stock was reserved.
	assert.Equal(t, 8, f.inventory.available(productA.ID))
	assert.Equal(t, 9, f.inventory.available(productB.ID))

	// The order-created event rode along with the commit.
	require.Len(t, f.orders.savedEvents, 1)
	evt, ok := f.orders.savedEvents[0].(*ordering.OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, order.ID, evt.OrderID)
	assert.Equal(t, ordering.EventTypeOrderCreated, evt.EventType())

	// Checkout cleared the cart.
	items, err := f.carts.GetItems(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderService_PlaceOrder_NoItems(t *testing.T) {
	f := newOrderServiceFixture()

	_, err := f.svc.PlaceOrder(context.Background(), uuid.New(), nil)

	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestOrderService_PlaceOrder_InsufficientStock(t *testing.T) {
	f := newOrderServiceFixture()
	ctx := context.Background()

	product := f.products.add("10.00", true)
	f.inventory.seed(product.ID, 1)

	_, err := f.svc.PlaceOrder(ctx, uuid.New(), []PlaceOrderItem{
		{ProductID: product.ID, Quantity: 5},
	})

	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Empty(t, f.orders.orders)
	assert.Equal(t, 1, f.inventory.available(product.ID))
}

func TestOrderService_PlaceOrder_ReturnsStockWhenLaterItemFails(t *testing.T) {
	f := newOrderServiceFixture()
	ctx := context.Background()

	available := f.products.add("10.00", true)
	scarce := f.products.add("20.00", true)
	f.inventory.seed(available.ID, 10)
	f.inventory.seed(scarce.ID, 0)

	_, err := f.svc.PlaceOrder(ctx, uuid.New(), []PlaceOrderItem{
		{ProductID: available.ID, Quantity: 3},
		{ProductID: scarce.ID, Quantity: 1},
	})

	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 10, f.inventory.available(available.ID), "reserved stock is returned")
	assert.Empty(t, f.orders.orders)
}

func TestOrderService_PlaceOrder_ReturnsStockWhenCommitFails(t *testing.T) {
	f := newOrderServiceFixture()
	ctx := context.Background()

	product := f.products.add("10.00", true)
	f.inventory.seed(product.ID, 10)
	f.orders.createFailWith = assert.AnError

	_, err := f.svc.PlaceOrder(ctx, uuid.New(), []PlaceOrderItem{
		{ProductID: product.ID, Quantity: 4},
	})

	require.Error(t, err)
	assert.Equal(t, 10, f.inventory.available(product.ID))
}

func TestOrderService_PlaceOrder_InactiveProduct(t *testing.T) {
	f := newOrderServiceFixture()

	product := f.products.add("10.00", false)
	f.inventory.seed(product.ID, 10)

	_, err := f.svc.PlaceOrder(context.Background(), uuid.New(), []PlaceOrderItem{
		{ProductID: product.ID, Quantity: 1},
	})

	require.ErrorIs(t, err, shared.ErrInvalidState)
}
