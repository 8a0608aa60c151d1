package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db       *gorm.DB
	enqueuer shared.OutboxEnqueuer
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB, enqueuer shared.OutboxEnqueuer) *GormProductRepository {
	return &GormProductRepository{db: db, enqueuer: enqueuer}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Save persists the product and its integration events' outbox rows in one
// transaction, so either both commit or neither does
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product, events ...shared.IntegrationEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(product).Error; err != nil {
			return err
		}
		return r.enqueuer.EnqueueInTx(ctx, tx, events...)
	})
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
