package event

import (
	"context"

	"github.com/shopsphere/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOutboxRepository implements OutboxRepository using GORM
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM-based outbox repository
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormOutboxRepository) WithTx(tx *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: tx}
}

// Save persists one or more outbox rows
func (r *GormOutboxRepository) Save(ctx context.Context, messages ...*shared.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(messages).Error
}

// FindPending retrieves unprocessed rows that still have retry budget,
// oldest first. Rows at the retry ceiling are dead and never returned.
func (r *GormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxMessage, error) {
	var messages []*shared.OutboxMessage
	err := r.db.WithContext(ctx).
		Where("processed_on_utc IS NULL AND retry_count < ?", shared.MaxRetryCount).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// UpdateBatch persists the mutations of a processed batch in a single
// transaction so a crash mid-batch re-delivers rather than loses updates.
func (r *GormOutboxRepository) UpdateBatch(ctx context.Context, messages []*shared.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, msg := range messages {
			if err := tx.Save(msg).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountDead returns the number of rows whose retry budget is exhausted
func (r *GormOutboxRepository) CountDead(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&shared.OutboxMessage{}).
		Where("processed_on_utc IS NULL AND retry_count >= ?", shared.MaxRetryCount).
		Count(&count).Error
	return count, err
}

// Ensure GormOutboxRepository implements OutboxRepository
var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
