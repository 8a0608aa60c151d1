package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/domain/ordering"
	"github.com/shopsphere/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db       *gorm.DB
	enqueuer shared.OutboxEnqueuer
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB, enqueuer shared.OutboxEnqueuer) *GormOrderRepository {
	return &GormOrderRepository{db: db, enqueuer: enqueuer}
}

// Create persists the order, its items and the integration events' outbox
// rows in one transaction. A crash can never leave an order without its
// event or an event without its order.
func (r *GormOrderRepository) Create(ctx context.Context, order *ordering.Order, events ...shared.IntegrationEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		if len(order.Items) > 0 {
			if err := tx.Create(&order.Items).Error; err != nil {
				return err
			}
		}
		return r.enqueuer.EnqueueInTx(ctx, tx, events...)
	})
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ ordering.OrderRepository = (*GormOrderRepository)(nil)
