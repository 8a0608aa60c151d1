package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/shopsphere/backend/internal/application/cart"
	"github.com/shopsphere/backend/internal/interfaces/http/middleware"
)

// CartHandler handles shopping cart HTTP requests
type CartHandler struct {
	BaseHandler
	carts *cartapp.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cartapp.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// AddCartItemRequest is the request body for adding a cart item
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	view, err := h.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.carts.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RemoveItem handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.carts.RemoveItem(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.carts.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers authenticated cart routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cart", h.Get)
	rg.POST("/cart/items", h.AddItem)
	rg.DELETE("/cart/items/:productId", h.RemoveItem)
	rg.DELETE("/cart", h.Clear)
}
