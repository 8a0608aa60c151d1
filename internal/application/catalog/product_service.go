package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService manages the catalog. Every write enqueues a
// product-index-sync event in the same transaction, keeping the search
// projection eventually consistent with the catalog.
type ProductService struct {
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, logger: logger}
}

// CreateProduct adds a new catalog item
func (s *ProductService) CreateProduct(ctx context.Context, sku, name, description string, price decimal.Decimal) (*catalog.Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" || name == "" || price.IsNegative() {
		return nil, shared.ErrInvalidInput
	}

	now := time.Now().UTC()
	product := &catalog.Product{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        name,
		Description: description,
		Price:       price,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	event := catalog.NewProductIndexSyncEvent(product, false)
	if err := s.products.Save(ctx, product, event); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	return product, nil
}

// UpdateProduct changes name, description or price of a product
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, name, description string, price decimal.Decimal) (*catalog.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" || price.IsNegative() {
		return nil, shared.ErrInvalidInput
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = name
	product.Description = description
	product.Price = price
	product.UpdatedAt = time.Now().UTC()

	event := catalog.NewProductIndexSyncEvent(product, false)
	if err := s.products.Save(ctx, product, event); err != nil {
		return nil, err
	}
	return product, nil
}

// DeactivateProduct retires a product from sale. The index sync event marks
// it deleted so search stops returning it.
func (s *ProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	product.IsActive = false
	product.UpdatedAt = time.Now().UTC()

	event := catalog.NewProductIndexSyncEvent(product, true)
	if err := s.products.Save(ctx, product, event); err != nil {
		return err
	}

	s.logger.Info("product deactivated",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	return nil
}

// GetProduct returns one product
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.products.FindByID(ctx, id)
}
