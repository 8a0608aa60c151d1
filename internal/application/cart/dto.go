package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one priced product line of a cart
type CartLine struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// CartView is the priced cart returned to the interface layer
type CartView struct {
	UserID uuid.UUID       `json:"userId"`
	Items  []CartLine      `json:"items"`
	Total  decimal.Decimal `json:"total"`
}
