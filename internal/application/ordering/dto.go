package ordering

import "github.com/google/uuid"

// PlaceOrderItem is one requested product line of a checkout
type PlaceOrderItem struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}
