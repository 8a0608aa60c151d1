package shared

import (
	"time"

	"github.com/google/uuid"
)

// IntegrationEvent represents an event that crosses service boundaries through
// the outbox. Payloads must be fully self-contained: consumers never join back
// to producer state that was not committed in the same transaction.
type IntegrationEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all integration events
type BaseEvent struct {
	ID        uuid.UUID `json:"eventId"`
	Type      string    `json:"eventType"`
	Timestamp time.Time `json:"occurredAt"`
}

// EventID returns the stable identifier consumers use for deduplication
func (e *BaseEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the discriminator string used to route the event
func (e *BaseEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent creates a new base event with a fresh event ID
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}
