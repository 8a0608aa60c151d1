package support

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/domain/support"
	"github.com/shopsphere/backend/internal/infrastructure/ratelimit"
	"go.uber.org/zap"
)

// MaxMessageLength bounds one chat message body
const MaxMessageLength = 4000

// SupportService handles customer support chat. Sending is rate limited per
// user so a runaway client cannot flood a conversation.
type SupportService struct {
	messages support.MessageRepository
	limiter  ratelimit.Limiter
	policy   ratelimit.Policy
	logger   *zap.Logger
}

// NewSupportService creates a new SupportService
func NewSupportService(
	messages support.MessageRepository,
	limiter ratelimit.Limiter,
	policy ratelimit.Policy,
	logger *zap.Logger,
) *SupportService {
	return &SupportService{
		messages: messages,
		limiter:  limiter,
		policy:   policy,
		logger:   logger,
	}
}

// SendMessage persists one chat message after passing the per-user limit
func (s *SupportService) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, body string) (*support.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > MaxMessageLength {
		return nil, shared.ErrInvalidInput
	}

	decision, err := s.limiter.Allow(ctx, s.policy, userID.String())
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.logger.Info("support message rate limited",
			zap.String("user_id", userID.String()),
			zap.Duration("retry_after", decision.RetryAfter),
		)
		return nil, &ratelimit.ExceededError{Scope: s.policy.Scope, RetryAfter: decision.RetryAfter}
	}

	message := &support.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         userID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Save(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages returns the newest messages of a conversation
func (s *SupportService) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]*support.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.messages.ListByConversation(ctx, conversationID, limit)
}
