package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/shopsphere/backend/internal/application/inventory"
	"github.com/shopsphere/backend/internal/interfaces/http/middleware"
)

// InventoryHandler handles stock management HTTP requests
type InventoryHandler struct {
	BaseHandler
	inventory *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventory *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// AdjustStockRequest is the request body for stock adjustments
type AdjustStockRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Reason   string `json:"reason" binding:"required,max=255"`
}

// StockResponse represents the stock level of one product
type StockResponse struct {
	ProductID         string `json:"product_id"`
	QuantityAvailable int    `json:"quantity_available"`
}

// GetStock handles GET /inventory/:productId
func (h *InventoryHandler) GetStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	inv, err := h.inventory.GetStock(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, StockResponse{
		ProductID:         inv.ProductID.String(),
		QuantityAvailable: inv.QuantityAvailable,
	})
}

type adjustFunc func(ctx context.Context, userID, productID uuid.UUID, quantity int, reason string) error

// IncreaseStock handles POST /inventory/:productId/increase
func (h *InventoryHandler) IncreaseStock(c *gin.Context) {
	h.adjust(c, h.inventory.IncreaseStock)
}

// DecreaseStock handles POST /inventory/:productId/decrease
func (h *InventoryHandler) DecreaseStock(c *gin.Context) {
	h.adjust(c, h.inventory.DecreaseStock)
}

func (h *InventoryHandler) adjust(c *gin.Context, op adjustFunc) {
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

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := op(c.Request.Context(), userID, productID, req.Quantity, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers authenticated inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/inventory/:productId", h.GetStock)
	rg.POST("/inventory/:productId/increase", h.IncreaseStock)
	rg.POST("/inventory/:productId/decrease", h.DecreaseStock)
}
