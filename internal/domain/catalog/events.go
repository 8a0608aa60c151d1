package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/backend/internal/domain/shared"
)

// EventTypeProductIndexSync is the discriminator for search-index sync events
const EventTypeProductIndexSync = "product-index-sync"

// ProductIndexSyncEvent asks consumers to refresh the search-index projection
// of one product. Deleted is true when the product was removed.
type ProductIndexSyncEvent struct {
	shared.BaseEvent
	ProductID uuid.UUID       `json:"productId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"isActive"`
	Deleted   bool            `json:"deleted"`
}

// NewProductIndexSyncEvent creates a sync event from the product's committed state
func NewProductIndexSyncEvent(p *Product, deleted bool) *ProductIndexSyncEvent {
	return &ProductIndexSyncEvent{
		BaseEvent: shared.NewBaseEvent(EventTypeProductIndexSync),
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     p.Price,
		IsActive:  p.IsActive,
		Deleted:   deleted,
	}
}
