package shared

import "context"

// EventHandler handles integration events delivered by the broker
type EventHandler interface {
	// Handle processes a single event. Delivery is at-least-once: handlers
	// must be idempotent or wrapped with inbox deduplication.
	Handle(ctx context.Context, event IntegrationEvent) error
	// EventTypes returns the discriminators this handler is interested in
	EventTypes() []string
}

// EventPublisher is the broker publish port consumed by the outbox relay
type EventPublisher interface {
	Publish(ctx context.Context, events ...IntegrationEvent) error
}

// EventSubscriber registers handlers for event types
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
