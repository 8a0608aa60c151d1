package ordering

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/shopsphere/backend/internal/application/inventory"
	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/domain/ordering"
	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// OrderService places and reads orders. PlaceOrder is the write path the
// outbox exists for: order rows and the order-created event commit in one
// transaction, stock is decremented under the product lock first.
type OrderService struct {
	orders    ordering.OrderRepository
	products  catalog.ProductRepository
	inventory *appinventory.InventoryService
	carts     cache.CartCache
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orders ordering.OrderRepository,
	products catalog.ProductRepository,
	inventory *appinventory.InventoryService,
	carts cache.CartCache,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		inventory: inventory,
		carts:     carts,
		logger:    logger,
	}
}

// PlaceOrder prices the requested items, reserves stock per product and
// commits the order together with its outbox row. Stock already taken is
// returned when a later step fails.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, requests []PlaceOrderItem) (*ordering.Order, error) {
	if len(requests) == 0 {
		return nil, shared.ErrInvalidInput
	}

	items := make([]ordering.OrderItem, 0, len(requests))
	reserved := make([]PlaceOrderItem, 0, len(requests))

	release := func() {
		for _, r := range reserved {
			if err := s.inventory.IncreaseStock(ctx, userID, r.ProductID, r.Quantity, "order failed, stock returned"); err != nil {
				s.logger.Error("failed to return reserved stock",
					zap.String("product_id", r.ProductID.String()),
					zap.Int("quantity", r.Quantity),
					zap.Error(err),
				)
			}
		}
	}

	for _, req := range requests {
		if req.Quantity <= 0 {
			release()
			return nil, shared.ErrInvalidInput
		}

		product, err := s.products.FindByID(ctx, req.ProductID)
		if err != nil {
			release()
			return nil, err
		}
		if !product.IsActive {
			release()
			return nil, shared.ErrInvalidState
		}

		if err := s.inventory.DecreaseStock(ctx, userID, req.ProductID, req.Quantity, "order placement"); err != nil {
			release()
			return nil, err
		}
		reserved = append(reserved, req)

		items = append(items, ordering.OrderItem{
			ProductID:  req.ProductID,
			Quantity:   req.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: product.Price.Mul(decimal.NewFromInt(int64(req.Quantity))),
		})
	}

	order := ordering.NewOrder(userID, newOrderNumber(), items)
	event := ordering.NewOrderCreatedEvent(order)

	if err := s.orders.Create(ctx, order, event); err != nil {
		release()
		return nil, err
	}

	// The order is committed; cart cleanup is best-effort.
	if err := s.carts.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("failed to clear cart after checkout",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.String("total", order.TotalAmount.String()),
	)
	return order, nil
}

// GetOrder returns one order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%04d", time.Now().UTC().Format("20060102150405"), rand.Intn(10000))
}
