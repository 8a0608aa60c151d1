package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCoPurchaseRepository derives co-purchase recommendations from committed
// order lines
type GormCoPurchaseRepository struct {
	db *gorm.DB
}

// NewGormCoPurchaseRepository creates a new GormCoPurchaseRepository
func NewGormCoPurchaseRepository(db *gorm.DB) *GormCoPurchaseRepository {
	return &GormCoPurchaseRepository{db: db}
}

// FrequentlyBoughtWith returns products that appear in the same orders as the
// given product, most frequent first
func (r *GormCoPurchaseRepository) FrequentlyBoughtWith(ctx context.Context, productID uuid.UUID, limit int) ([]uuid.UUID, error) {
	var productIDs []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT other.product_id
		FROM order_items target
		JOIN order_items other
			ON other.order_id = target.order_id
			AND other.product_id <> target.product_id
		WHERE target.product_id = ?
		GROUP BY other.product_id
		ORDER BY COUNT(*) DESC, other.product_id
		LIMIT ?`, productID, limit).
		Scan(&productIDs).Error
	return productIDs, err
}
