package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopsphere/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxEnqueuer appends outbox rows inside the caller's transaction so the
// event record commits or rolls back together with the domain write.
type OutboxEnqueuer struct{}

// NewOutboxEnqueuer creates a new outbox enqueuer
func NewOutboxEnqueuer() *OutboxEnqueuer {
	return &OutboxEnqueuer{}
}

// EnqueueWithTx serializes events and inserts their outbox rows on the
// provided transaction handle
func (e *OutboxEnqueuer) EnqueueWithTx(ctx context.Context, tx *gorm.DB, events ...shared.IntegrationEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]*shared.OutboxMessage, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to serialize %s event: %w", event.EventType(), err)
		}
		messages = append(messages, shared.NewOutboxMessage(event, payload))
	}

	return NewGormOutboxRepository(tx).Save(ctx, messages...)
}

// EnqueueInTx implements the shared.OutboxEnqueuer interface
func (e *OutboxEnqueuer) EnqueueInTx(ctx context.Context, txProvider interface{}, events ...shared.IntegrationEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}

	return e.EnqueueWithTx(ctx, tx, events...)
}

// Ensure OutboxEnqueuer implements shared.OutboxEnqueuer
var _ shared.OutboxEnqueuer = (*OutboxEnqueuer)(nil)
