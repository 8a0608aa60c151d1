package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	supportapp "github.com/shopsphere/backend/internal/application/support"
	"github.com/shopsphere/backend/internal/domain/support"
	"github.com/shopsphere/backend/internal/interfaces/http/middleware"
)

// SupportHandler handles support chat HTTP requests
type SupportHandler struct {
	BaseHandler
	support *supportapp.SupportService
}

// NewSupportHandler creates a new support handler
func NewSupportHandler(support *supportapp.SupportService) *SupportHandler {
	return &SupportHandler{support: support}
}

// SendMessageRequest is the request body for sending a support message
type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// MessageResponse represents a support message in API responses
type MessageResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Body           string `json:"body"`
	CreatedAt      string `json:"created_at"`
}

func toMessageResponse(m *support.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		UserID:         m.UserID.String(),
		Body:           m.Body,
		CreatedAt:      m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// SendMessage handles POST /support/conversations/:id/messages
func (h *SupportHandler) SendMessage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	message, err := h.support.SendMessage(c.Request.Context(), userID, conversationID, req.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toMessageResponse(message))
}

// ListMessages handles GET /support/conversations/:id/messages
func (h *SupportHandler) ListMessages(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
	}

	messages, err := h.support.ListMessages(c.Request.Context(), conversationID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}

	h.Success(c, out)
}

// RegisterRoutes registers authenticated support routes
func (h *SupportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/support/conversations/:id/messages", h.SendMessage)
	rg.GET("/support/conversations/:id/messages", h.ListMessages)
}
