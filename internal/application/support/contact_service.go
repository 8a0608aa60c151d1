package support

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/domain/support"
	"github.com/shopsphere/backend/internal/infrastructure/ratelimit"
	"go.uber.org/zap"
)

// MaxSubjectLength bounds the contact form subject line
const MaxSubjectLength = 255

// ContactService handles the public contact form. Submissions are rate
// limited per client IP since the form requires no account.
type ContactService struct {
	contacts support.ContactRepository
	limiter  ratelimit.Limiter
	policy   ratelimit.Policy
	logger   *zap.Logger
}

// NewContactService creates a new ContactService
func NewContactService(
	contacts support.ContactRepository,
	limiter ratelimit.Limiter,
	policy ratelimit.Policy,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contacts: contacts,
		limiter:  limiter,
		policy:   policy,
		logger:   logger,
	}
}

// Submit validates and persists one contact form submission after passing
// the per-IP limit
func (s *ContactService) Submit(ctx context.Context, clientIP, email, subject, body string) (*support.ContactMessage, error) {
	email = strings.TrimSpace(email)
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.ErrInvalidInput
	}
	if subject == "" || len(subject) > MaxSubjectLength {
		return nil, shared.ErrInvalidInput
	}
	if body == "" || len(body) > MaxMessageLength {
		return nil, shared.ErrInvalidInput
	}

	decision, err := s.limiter.Allow(ctx, s.policy, clientIP)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.logger.Info("contact form rate limited",
			zap.String("client_ip", clientIP),
			zap.Duration("retry_after", decision.RetryAfter),
		)
		return nil, &ratelimit.ExceededError{Scope: s.policy.Scope, RetryAfter: decision.RetryAfter}
	}

	message := &support.ContactMessage{
		ID:        uuid.New(),
		Email:     email,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.contacts.Save(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}
