package integration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/application/recommendation"
	"github.com/shopsphere/backend/internal/domain/ordering"
	"github.com/shopsphere/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderCreatedConsumerName keys this consumer's inbox rows
const OrderCreatedConsumerName = "order-created-consumer"

// OrderCreatedConsumer reacts to committed orders: it drops the co-purchase
// caches of the ordered products so recommendations pick up the new data.
// Wrapped with inbox dedup at wiring time, so redeliveries are no-ops.
type OrderCreatedConsumer struct {
	orders          ordering.OrderRepository
	recommendations *recommendation.RecommendationService
	logger          *zap.Logger
}

// NewOrderCreatedConsumer creates a new OrderCreatedConsumer
func NewOrderCreatedConsumer(
	orders ordering.OrderRepository,
	recommendations *recommendation.RecommendationService,
	logger *zap.Logger,
) *OrderCreatedConsumer {
	return &OrderCreatedConsumer{
		orders:          orders,
		recommendations: recommendations,
		logger:          logger,
	}
}

// EventTypes returns the discriminators this consumer handles
func (c *OrderCreatedConsumer) EventTypes() []string {
	return []string{ordering.EventTypeOrderCreated}
}

// Handle processes one order-created event
func (c *OrderCreatedConsumer) Handle(ctx context.Context, event shared.IntegrationEvent) error {
	orderEvent, ok := event.(*ordering.OrderCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, ordering.EventTypeOrderCreated)
	}

	order, err := c.orders.FindByID(ctx, orderEvent.OrderID)
	if err != nil {
		return err
	}

	productIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	c.recommendations.InvalidateForProducts(ctx, productIDs)

	c.logger.Info("order processed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("products", len(productIDs)),
	)
	return nil
}

// Ensure OrderCreatedConsumer implements EventHandler
var _ shared.EventHandler = (*OrderCreatedConsumer)(nil)
