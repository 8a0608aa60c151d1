package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/backend/internal/domain/shared"
)

// Product is a sellable catalog item
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SKU         string          `gorm:"size:64;uniqueIndex;not null"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IsActive    bool            `gorm:"not null;default:true;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the GORM table name
func (Product) TableName() string {
	return "products"
}

// Inventory tracks the available stock of one product. All mutations must run
// inside the product's distributed lock critical section.
type Inventory struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	QuantityAvailable int       `gorm:"not null;default:0"`
	UpdatedAt         time.Time
}

// TableName overrides the GORM table name
func (Inventory) TableName() string {
	return "inventories"
}

// InventoryMovement is the audit trail of stock changes
type InventoryMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	Delta     int       `gorm:"not null"`
	Reason    string    `gorm:"size:255;not null"`
	CreatedAt time.Time
}

// TableName overrides the GORM table name
func (InventoryMovement) TableName() string {
	return "inventory_movements"
}

// ProductIndexEntry is the denormalized search-index projection refreshed by
// the product-index-sync consumer
type ProductIndexEntry struct {
	ProductID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SKU       string          `gorm:"size:64;not null"`
	Name      string          `gorm:"size:255;not null;index"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IsActive  bool            `gorm:"not null"`
	SyncedAt  time.Time       `gorm:"not null"`
}

// TableName overrides the GORM table name
func (ProductIndexEntry) TableName() string {
	return "product_index"
}

// ProductRepository defines catalog persistence. Save commits the product and
// any integration events atomically through the outbox.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, product *Product, events ...shared.IntegrationEvent) error
}

// InventoryRepository defines stock persistence
type InventoryRepository interface {
	GetByProductID(ctx context.Context, productID uuid.UUID) (*Inventory, error)
	Update(ctx context.Context, inventory *Inventory) error
	AddMovement(ctx context.Context, movement *InventoryMovement) error
}

// ProductIndexRepository maintains the search-index projection
type ProductIndexRepository interface {
	Upsert(ctx context.Context, entry *ProductIndexEntry) error
	Delete(ctx context.Context, productID uuid.UUID) error
}
