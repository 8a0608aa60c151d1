package support

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContactMessage is one submission of the public contact form. Unlike chat
// messages it carries no user identity, only the sender's email.
type ContactMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"size:320;not null"`
	Subject   string    `gorm:"size:255;not null"`
	Body      string    `gorm:"size:4000;not null"`
	CreatedAt time.Time
}

// TableName overrides the GORM table name
func (ContactMessage) TableName() string {
	return "contact_messages"
}

// ContactRepository defines contact form persistence
type ContactRepository interface {
	Save(ctx context.Context, message *ContactMessage) error
}
