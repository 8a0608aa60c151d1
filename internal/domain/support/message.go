package support

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is one chat message in a support conversation
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Body           string    `gorm:"size:4000;not null"`
	CreatedAt      time.Time
}

// TableName overrides the GORM table name
func (Message) TableName() string {
	return "support_messages"
}

// MessageRepository defines support chat persistence
type MessageRepository interface {
	Save(ctx context.Context, message *Message) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]*Message, error)
}
