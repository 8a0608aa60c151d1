package event

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopsphere/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInboxRepository implements InboxRepository using GORM
type GormInboxRepository struct {
	db *gorm.DB
}

// NewGormInboxRepository creates a new GORM-based inbox repository
func NewGormInboxRepository(db *gorm.DB) *GormInboxRepository {
	return &GormInboxRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormInboxRepository) WithTx(tx *gorm.DB) *GormInboxRepository {
	return &GormInboxRepository{db: tx}
}

// AlreadyProcessed reports whether the consumer has handled the message
func (r *GormInboxRepository) AlreadyProcessed(ctx context.Context, consumerName string, messageID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&shared.InboxMessage{}).
		Where("consumer_name = ? AND message_id = ?", consumerName, messageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Record inserts the dedup row. When two deliveries of the same message race,
// the unique index rejects the loser; that surfaces as ErrAlreadyExists so the
// caller treats it as processed elsewhere, not as a failure.
func (r *GormInboxRepository) Record(ctx context.Context, message *shared.InboxMessage) error {
	err := r.db.WithContext(ctx).Create(message).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// Ensure GormInboxRepository implements InboxRepository
var _ shared.InboxRepository = (*GormInboxRepository)(nil)
