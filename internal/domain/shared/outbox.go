package shared

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Outbox delivery constants
const (
	// MaxRetryCount is the retry budget per outbox row. A row that fails this
	// many times is dead: excluded from polling forever, never auto-retried.
	MaxRetryCount = 10

	// LastErrorMaxLen bounds the stored error message
	LastErrorMaxLen = 2000
)

// OutboxMessage is a persisted record of an integration event awaiting
// publication. It is created in the same transaction as the domain write that
// produced the event and mutated only by the outbox relay.
type OutboxMessage struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	EventID        uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	EventType      string     `gorm:"size:512;not null"`
	Payload        []byte     `gorm:"not null"`
	ProcessedOnUTC *time.Time `gorm:"index"`
	RetryCount     int        `gorm:"not null;default:0;index"`
	LastError      *string    `gorm:"size:2000"`
	CreatedAt      time.Time  `gorm:"index"`
	UpdatedAt      time.Time
}

// TableName overrides the GORM table name
func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

// NewOutboxMessage creates a pending outbox row for an integration event
func NewOutboxMessage(event IntegrationEvent, payload []byte) *OutboxMessage {
	now := time.Now().UTC()
	return &OutboxMessage{
		EventID:   event.EventID(),
		EventType: event.EventType(),
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPending reports whether the row is still eligible for publishing
func (m *OutboxMessage) IsPending() bool {
	return m.ProcessedOnUTC == nil && m.RetryCount < MaxRetryCount
}

// IsDead reports whether the retry budget is exhausted
func (m *OutboxMessage) IsDead() bool {
	return m.ProcessedOnUTC == nil && m.RetryCount >= MaxRetryCount
}

// MarkPublished records a successful publish. Terminal: the row is never
// mutated again afterwards.
func (m *OutboxMessage) MarkPublished() {
	now := time.Now().UTC()
	m.ProcessedOnUTC = &now
	m.LastError = nil
	m.UpdatedAt = now
}

// MarkFailed consumes one retry attempt and records the truncated error.
// Unknown event types and transient broker failures are deliberately treated
// the same here, matching the relay's retry semantics.
func (m *OutboxMessage) MarkFailed(errMsg string) {
	errMsg = truncateError(errMsg)
	m.RetryCount++
	m.LastError = &errMsg
	m.UpdatedAt = time.Now().UTC()
}

// truncateError cuts the message to LastErrorMaxLen bytes without splitting a
// rune, keeping the stored value valid UTF-8 for the varchar column.
func truncateError(errMsg string) string {
	if len(errMsg) <= LastErrorMaxLen {
		return errMsg
	}
	cut := LastErrorMaxLen
	for cut > 0 && !utf8.RuneStart(errMsg[cut]) {
		cut--
	}
	return errMsg[:cut]
}

// InboxMessage is the consumer-side dedup record. The existence of a row for a
// (consumer, message ID) pair means "already processed"; rows are written once
// and never updated.
type InboxMessage struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	MessageID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inbox_consumer_message,priority:2"`
	ConsumerName   string    `gorm:"size:200;not null;uniqueIndex:idx_inbox_consumer_message,priority:1"`
	MessageType    string    `gorm:"size:512;not null"`
	ProcessedOnUTC time.Time `gorm:"not null;index"`
}

// TableName overrides the GORM table name
func (InboxMessage) TableName() string {
	return "inbox_messages"
}

// OutboxRepository defines the interface for outbox persistence
type OutboxRepository interface {
	// Save persists one or more outbox rows
	Save(ctx context.Context, messages ...*OutboxMessage) error
	// FindPending retrieves pending rows ordered by creation time, oldest first
	FindPending(ctx context.Context, limit int) ([]*OutboxMessage, error)
	// UpdateBatch persists the mutations of a processed batch in one commit
	UpdateBatch(ctx context.Context, messages []*OutboxMessage) error
	// CountDead returns the number of rows whose retry budget is exhausted
	CountDead(ctx context.Context) (int64, error)
}

// InboxRepository defines the interface for consumer-side dedup persistence
type InboxRepository interface {
	// AlreadyProcessed reports whether a consumer has handled a message
	AlreadyProcessed(ctx context.Context, consumerName string, messageID uuid.UUID) (bool, error)
	// Record inserts the dedup row. A concurrent duplicate insert is not an
	// error: implementations return ErrAlreadyExists so callers can treat the
	// race as "processed elsewhere".
	Record(ctx context.Context, message *InboxMessage) error
}

// OutboxEnqueuer appends outbox rows inside a caller-owned transaction.
// The txProvider is the transaction handle of the persistence layer.
type OutboxEnqueuer interface {
	EnqueueInTx(ctx context.Context, txProvider interface{}, events ...IntegrationEvent) error
}
