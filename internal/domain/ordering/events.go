package ordering

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/backend/internal/domain/shared"
)

// EventTypeOrderCreated is the discriminator for order creation events
const EventTypeOrderCreated = "order-created"

// OrderCreatedEvent is published after an order commits
type OrderCreatedEvent struct {
	shared.BaseEvent
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      uuid.UUID       `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
}

// NewOrderCreatedEvent creates the event from a committed order
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseEvent:   shared.NewBaseEvent(EventTypeOrderCreated),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
	}
}
