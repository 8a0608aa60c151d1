package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/infrastructure/cache"
	"github.com/shopsphere/backend/internal/infrastructure/lock"
	"go.uber.org/zap"
)

// InventoryService mutates stock levels. Every mutation runs inside the
// product's distributed lock so concurrent checkouts on different instances
// cannot oversell.
type InventoryService struct {
	inventories catalog.InventoryRepository
	locks       lock.DistributedLock
	lockTTL     time.Duration
	logger      *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	inventories catalog.InventoryRepository,
	locks lock.DistributedLock,
	lockTTL time.Duration,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		inventories: inventories,
		locks:       locks,
		lockTTL:     lockTTL,
		logger:      logger,
	}
}

// DecreaseStock removes quantity units of a product. Fails with
// ErrInsufficientStock when the product cannot cover the request and with
// ErrSystemBusy when another writer holds the product's lock.
func (s *InventoryService) DecreaseStock(ctx context.Context, userID, productID uuid.UUID, quantity int, reason string) error {
	return s.adjustStock(ctx, userID, productID, -quantity, reason)
}

// IncreaseStock adds quantity units of a product, used for restocks and
// cancellation returns
func (s *InventoryService) IncreaseStock(ctx context.Context, userID, productID uuid.UUID, quantity int, reason string) error {
	return s.adjustStock(ctx, userID, productID, quantity, reason)
}

// GetStock returns the current availability of a product
func (s *InventoryService) GetStock(ctx context.Context, productID uuid.UUID) (*catalog.Inventory, error) {
	return s.inventories.GetByProductID(ctx, productID)
}

func (s *InventoryService) adjustStock(ctx context.Context, userID, productID uuid.UUID, delta int, reason string) error {
	if delta == 0 {
		return shared.ErrInvalidInput
	}

	return s.locks.ExecuteWithLock(ctx, cache.ProductLockKey(productID), s.lockTTL, func(ctx context.Context) error {
		inv, err := s.inventories.GetByProductID(ctx, productID)
		if err != nil {
			return err
		}

		if inv.QuantityAvailable+delta < 0 {
			return shared.ErrInsufficientStock
		}

		inv.QuantityAvailable += delta
		inv.UpdatedAt = time.Now().UTC()
		if err := s.inventories.Update(ctx, inv); err != nil {
			return err
		}

		movement := &catalog.InventoryMovement{
			ID:        uuid.New(),
			ProductID: productID,
			UserID:    userID,
			Delta:     delta,
			Reason:    reason,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.inventories.AddMovement(ctx, movement); err != nil {
			return err
		}

		s.logger.Info("stock adjusted",
			zap.String("product_id", productID.String()),
			zap.Int("delta", delta),
			zap.Int("available", inv.QuantityAvailable),
			zap.String("reason", reason),
		)
		return nil
	})
}
