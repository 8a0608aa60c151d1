package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	supportapp "github.com/shopsphere/backend/internal/application/support"
	"github.com/shopsphere/backend/internal/domain/support"
	"github.com/shopsphere/backend/internal/infrastructure/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type inMemoryMessageRepository struct {
	messages []*support.Message
}

func (r *inMemoryMessageRepository) Save(ctx context.Context, message *support.Message) error {
	r.messages = append(r.messages, message)
	return nil
}

func (r *inMemoryMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]*support.Message, error) {
	var out []*support.Message
	for i := len(r.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if r.messages[i].ConversationID == conversationID {
			out = append(out, r.messages[i])
		}
	}
	return out, nil
}

func newSupportTestRouter(limit int64) (*gin.Engine, uuid.UUID) {
	svc := supportapp.NewSupportService(
		&inMemoryMessageRepository{},
		ratelimit.NewInMemoryLimiter(),
		ratelimit.Policy{Scope: "support-message", Limit: limit, Window: time.Minute},
		zap.NewNop(),
	)
	h := NewSupportHandler(svc)

	userID := uuid.New()
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		setAuthContext(c, userID)
	})
	h.RegisterRoutes(engine.Group(""))
	return engine, userID
}

func sendSupportMessage(engine *gin.Engine, conversationID uuid.UUID, body string) *httptest.ResponseRecorder {
	payload := fmt.Sprintf(`{"body": %q}`, body)
	req := httptest.NewRequest("POST",
		"/support/conversations/"+conversationID.String()+"/messages",
		bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSupportHandler_SendMessage(t *testing.T) {
	engine, userID := newSupportTestRouter(20)
	conversationID := uuid.New()

	w := sendSupportMessage(engine, conversationID, "hello there")
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeResponse(t, w)
	require.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "hello there", data["body"])
	assert.Equal(t, userID.String(), data["user_id"])
}

func TestSupportHandler_RateLimited(t *testing.T) {
	engine, _ := newSupportTestRouter(3)
	conversationID := uuid.New()

	for i := 0; i < 3; i++ {
		w := sendSupportMessage(engine, conversationID, "spam")
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := sendSupportMessage(engine, conversationID, "spam")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestSupportHandler_EmptyBodyRejected(t *testing.T) {
	engine, _ := newSupportTestRouter(20)

	w := sendSupportMessage(engine, uuid.New(), "   ")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSupportHandler_ListMessages(t *testing.T) {
	engine, _ := newSupportTestRouter(20)
	conversationID := uuid.New()

	for i := 0; i < 3; i++ {
		w := sendSupportMessage(engine, conversationID, fmt.Sprintf("message %d", i))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	req := httptest.NewRequest("GET",
		"/support/conversations/"+conversationID.String()+"/messages", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	messages, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 3)
}
