package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductIndexSyncConsumerName keys this consumer's inbox rows
const ProductIndexSyncConsumerName = "product-index-sync-consumer"

// ProductIndexSyncConsumer keeps the denormalized search-index projection in
// step with the catalog. The event payload is self-contained, so replays
// simply rewrite the same row.
type ProductIndexSyncConsumer struct {
	index  catalog.ProductIndexRepository
	logger *zap.Logger
}

// NewProductIndexSyncConsumer creates a new ProductIndexSyncConsumer
func NewProductIndexSyncConsumer(index catalog.ProductIndexRepository, logger *zap.Logger) *ProductIndexSyncConsumer {
	return &ProductIndexSyncConsumer{index: index, logger: logger}
}

// EventTypes returns the discriminators this consumer handles
func (c *ProductIndexSyncConsumer) EventTypes() []string {
	return []string{catalog.EventTypeProductIndexSync}
}

// Handle processes one product-index-sync event
func (c *ProductIndexSyncConsumer) Handle(ctx context.Context, event shared.IntegrationEvent) error {
	syncEvent, ok := event.(*catalog.ProductIndexSyncEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, catalog.EventTypeProductIndexSync)
	}

	if syncEvent.Deleted {
		if err := c.index.Delete(ctx, syncEvent.ProductID); err != nil {
			return err
		}
		c.logger.Info("product removed from index",
			zap.String("product_id", syncEvent.ProductID.String()),
		)
		return nil
	}

	entry := &catalog.ProductIndexEntry{
		ProductID: syncEvent.ProductID,
		SKU:       syncEvent.SKU,
		Name:      syncEvent.Name,
		Price:     syncEvent.Price,
		IsActive:  syncEvent.IsActive,
		SyncedAt:  time.Now().UTC(),
	}
	if err := c.index.Upsert(ctx, entry); err != nil {
		return err
	}

	c.logger.Debug("product index refreshed",
		zap.String("product_id", syncEvent.ProductID.String()),
		zap.String("sku", syncEvent.SKU),
	)
	return nil
}

// Ensure ProductIndexSyncConsumer implements EventHandler
var _ shared.EventHandler = (*ProductIndexSyncConsumer)(nil)
