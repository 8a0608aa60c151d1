package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/domain/catalog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductIndexRepository implements ProductIndexRepository using GORM
type GormProductIndexRepository struct {
	db *gorm.DB
}

// NewGormProductIndexRepository creates a new GormProductIndexRepository
func NewGormProductIndexRepository(db *gorm.DB) *GormProductIndexRepository {
	return &GormProductIndexRepository{db: db}
}

// Upsert writes the projection row, replacing an existing one for the product.
// The consumer replays are idempotent because the row converges on the latest
// committed product state.
func (r *GormProductIndexRepository) Upsert(ctx context.Context, entry *catalog.ProductIndexEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			UpdateAll: true,
		}).
		Create(entry).Error
}

// Delete removes the projection row of a product
func (r *GormProductIndexRepository) Delete(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&catalog.ProductIndexEntry{}, "product_id = ?", productID).Error
}

// Ensure GormProductIndexRepository implements ProductIndexRepository
var _ catalog.ProductIndexRepository = (*GormProductIndexRepository)(nil)
