package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	supportapp "github.com/shopsphere/backend/internal/application/support"
	"github.com/shopsphere/backend/internal/interfaces/http/middleware"
)

// ContactHandler handles the public contact form
type ContactHandler struct {
	BaseHandler
	contacts *supportapp.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contacts *supportapp.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// ContactRequest is the request body for a contact form submission
type ContactRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,max=255"`
	Body    string `json:"body" binding:"required"`
}

// ContactResponse acknowledges a contact form submission
type ContactResponse struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

// Submit handles POST /contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	message, err := h.contacts.Submit(c.Request.Context(), c.ClientIP(), req.Email, req.Subject, req.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ContactResponse{
		ID:        message.ID.String(),
		CreatedAt: message.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// RegisterPublicRoutes registers routes that do not require authentication
func (h *ContactHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/contact", h.Submit)
}

// RegisterRoutes registers authenticated routes; the contact form has none
func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup) {}
