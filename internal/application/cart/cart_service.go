package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// CartService manages per-user shopping carts. The cart itself lives in the
// cache; products are read through the catalog so every view reflects current
// prices and availability.
type CartService struct {
	products catalog.ProductRepository
	carts    cache.CartCache
	logger   *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(products catalog.ProductRepository, carts cache.CartCache, logger *zap.Logger) *CartService {
	return &CartService{
		products: products,
		carts:    carts,
		logger:   logger,
	}
}

// AddItem puts a quantity of a product into the user's cart, replacing any
// previous quantity for that product
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.ErrInvalidInput
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return shared.ErrInvalidState
	}

	return s.carts.SetItem(ctx, userID, productID, quantity)
}

// RemoveItem deletes one product from the cart
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return s.carts.RemoveItem(ctx, userID, productID)
}

// GetCart returns the priced cart. Lines whose product vanished or was
// deactivated since they were added are pruned from the cache on the way out.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	items, err := s.carts.GetItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		UserID: userID,
		Items:  make([]CartLine, 0, len(items)),
		Total:  decimal.Zero,
	}

	for productID, quantity := range items {
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.pruneLine(ctx, userID, productID)
				continue
			}
			return nil, err
		}
		if !product.IsActive {
			s.pruneLine(ctx, userID, productID)
			continue
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
		view.Items = append(view.Items, CartLine{
			ProductID:   productID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    quantity,
			LineTotal:   lineTotal,
		})
		view.Total = view.Total.Add(lineTotal)
	}

	return view, nil
}

// Clear drops the whole cart, used after checkout
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.carts.Invalidate(ctx, userID)
}

func (s *CartService) pruneLine(ctx context.Context, userID, productID uuid.UUID) {
	if err := s.carts.RemoveItem(ctx, userID, productID); err != nil {
		s.logger.Warn("failed to prune stale cart line",
			zap.String("user_id", userID.String()),
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}
