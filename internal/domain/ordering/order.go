package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/backend/internal/domain/shared"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a customer purchase
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderNumber string          `gorm:"size:32;uniqueIndex;not null"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status      OrderStatus     `gorm:"size:16;not null"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the GORM table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one product line of an order
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// TableName overrides the GORM table name
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrder assembles a pending order from priced items
func NewOrder(userID uuid.UUID, orderNumber string, items []OrderItem) *Order {
	now := time.Now().UTC()
	order := &Order{
		ID:          uuid.New(),
		OrderNumber: orderNumber,
		UserID:      userID,
		Status:      OrderStatusPending,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = order.ID
		order.TotalAmount = order.TotalAmount.Add(items[i].TotalPrice)
	}
	order.Items = items
	return order
}

// OrderRepository defines order persistence. Create commits the order rows and
// the integration events' outbox rows in one transaction.
type OrderRepository interface {
	Create(ctx context.Context, order *Order, events ...shared.IntegrationEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
}
