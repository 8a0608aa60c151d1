package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInventoryRepository implements InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// GetByProductID finds the inventory row of a product
func (r *GormInventoryRepository) GetByProductID(ctx context.Context, productID uuid.UUID) (*catalog.Inventory, error) {
	var inv catalog.Inventory
	if err := r.db.WithContext(ctx).First(&inv, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// Update persists the inventory row
func (r *GormInventoryRepository) Update(ctx context.Context, inventory *catalog.Inventory) error {
	return r.db.WithContext(ctx).Save(inventory).Error
}

// AddMovement appends one audit record
func (r *GormInventoryRepository) AddMovement(ctx context.Context, movement *catalog.InventoryMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// Ensure GormInventoryRepository implements InventoryRepository
var _ catalog.InventoryRepository = (*GormInventoryRepository)(nil)
