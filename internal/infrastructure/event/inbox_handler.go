package event

import (
	"context"
	"errors"
	"time"

	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InboxHandler wraps an EventHandler with inbox deduplication. The broker
// delivers at-least-once; the inbox row keyed by (consumer, message ID)
// guarantees the wrapped handler's effects happen at most once.
type InboxHandler struct {
	handler      shared.EventHandler
	inbox        shared.InboxRepository
	consumerName string
	metrics      *telemetry.PipelineMetrics
	logger       *zap.Logger
}

// NewInboxHandler creates a new inbox-deduplicating handler wrapper
func NewInboxHandler(
	handler shared.EventHandler,
	inbox shared.InboxRepository,
	consumerName string,
	metrics *telemetry.PipelineMetrics,
	logger *zap.Logger,
) *InboxHandler {
	return &InboxHandler{
		handler:      handler,
		inbox:        inbox,
		consumerName: consumerName,
		metrics:      metrics,
		logger:       logger,
	}
}

// EventTypes returns the event types the wrapped handler is interested in
func (h *InboxHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless the inbox shows it was already handled.
// A dedup lookup failure is returned as-is: the broker redelivers, and the
// inbox absorbs the duplicate once the store recovers.
func (h *InboxHandler) Handle(ctx context.Context, event shared.IntegrationEvent) error {
	processed, err := h.inbox.AlreadyProcessed(ctx, h.consumerName, event.EventID())
	if err != nil {
		return err
	}
	if processed {
		h.metrics.RecordInboxDuplicate(ctx, h.consumerName)
		h.logger.Debug("duplicate event skipped",
			zap.String("consumer", h.consumerName),
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.metrics.RecordInboxFailure(ctx, h.consumerName)
		h.logger.Error("consumer failed to process event",
			zap.String("consumer", h.consumerName),
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}

	record := &shared.InboxMessage{
		MessageID:      event.EventID(),
		ConsumerName:   h.consumerName,
		MessageType:    event.EventType(),
		ProcessedOnUTC: time.Now().UTC(),
	}
	if err := h.inbox.Record(ctx, record); err != nil {
		// A concurrent delivery won the insert race; its effects stand.
		if errors.Is(err, shared.ErrAlreadyExists) {
			h.metrics.RecordInboxDuplicate(ctx, h.consumerName)
			return nil
		}
		return err
	}

	h.metrics.RecordInboxProcessed(ctx, h.consumerName)
	return nil
}

// Ensure InboxHandler implements EventHandler
var _ shared.EventHandler = (*InboxHandler)(nil)
