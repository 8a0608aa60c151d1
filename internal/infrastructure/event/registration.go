package event

import (
	"encoding/json"

	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/domain/ordering"
	"github.com/shopsphere/backend/internal/domain/shared"
)

// RegisterKnownEvents binds every event type the platform emits to its
// decoder. New event types are added here and nowhere else.
func RegisterKnownEvents(registry *DispatchRegistry) {
	registry.Register(ordering.EventTypeOrderCreated, func(payload []byte) (shared.IntegrationEvent, error) {
		var event ordering.OrderCreatedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return &event, nil
	})

	registry.Register(catalog.EventTypeProductIndexSync, func(payload []byte) (shared.IntegrationEvent, error) {
		var event catalog.ProductIndexSyncEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return &event, nil
	})
}
