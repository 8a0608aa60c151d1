package persistence

import (
	"context"

	"github.com/shopsphere/backend/internal/domain/support"
	"gorm.io/gorm"
)

// GormContactRepository implements ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Save persists one contact form submission
func (r *GormContactRepository) Save(ctx context.Context, message *support.ContactMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// Ensure GormContactRepository implements ContactRepository
var _ support.ContactRepository = (*GormContactRepository)(nil)
