package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/domain/support"
	"gorm.io/gorm"
)

// GormSupportMessageRepository implements MessageRepository using GORM
type GormSupportMessageRepository struct {
	db *gorm.DB
}

// NewGormSupportMessageRepository creates a new GormSupportMessageRepository
func NewGormSupportMessageRepository(db *gorm.DB) *GormSupportMessageRepository {
	return &GormSupportMessageRepository{db: db}
}

// Save persists one chat message
func (r *GormSupportMessageRepository) Save(ctx context.Context, message *support.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListByConversation returns the newest messages of a conversation
func (r *GormSupportMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]*support.Message, error) {
	var messages []*support.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// Ensure GormSupportMessageRepository implements MessageRepository
var _ support.MessageRepository = (*GormSupportMessageRepository)(nil)
