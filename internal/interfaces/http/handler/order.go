package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/shopsphere/backend/internal/application/ordering"
	"github.com/shopsphere/backend/internal/domain/ordering"
	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	BaseHandler
	orders *orderapp.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// PlaceOrderRequest is the request body for checkout
type PlaceOrderRequest struct {
	Items []orderapp.PlaceOrderItem `json:"items" binding:"required,min=1,dive"`
}

// OrderItemResponse represents one order line in API responses
type OrderItemResponse struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID          string              `json:"id"`
	OrderNumber string              `json:"order_number"`
	UserID      string              `json:"user_id"`
	Status      string              `json:"status"`
	TotalAmount string              `json:"total_amount"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   string              `json:"created_at"`
}

func toOrderResponse(o *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:  item.ProductID.String(),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.StringFixed(2),
			TotalPrice: item.TotalPrice.StringFixed(2),
		})
	}
	return OrderResponse{
		ID:          o.ID.String(),
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID.String(),
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount.StringFixed(2),
		Items:       items,
		CreatedAt:   o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Place handles POST /orders
func (h *OrderHandler) Place(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), userID, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toOrderResponse(order))
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Orders are only visible to their owner
	if order.UserID != userID {
		h.HandleError(c, shared.ErrNotFound)
		return
	}

	h.Success(c, toOrderResponse(order))
}

// RegisterRoutes registers authenticated order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders", h.Place)
	rg.GET("/orders/:id", h.Get)
}
