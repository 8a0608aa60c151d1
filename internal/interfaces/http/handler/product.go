package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/shopsphere/backend/internal/application/catalog"
	"github.com/shopsphere/backend/internal/domain/catalog"
	"github.com/shopsphere/backend/internal/interfaces/http/middleware"
)

// ProductHandler handles product catalog HTTP requests
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	SKU         string `json:"sku" binding:"required,max=64"`
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
}

// UpdateProductRequest is the request body for updating a product
type UpdateProductRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		h.BadRequest(c, "Invalid price")
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), req.SKU, req.Name, req.Description, price)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toProductResponse(product))
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		h.BadRequest(c, "Invalid price")
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), id, req.Name, req.Description, price)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponse(product))
}

// Deactivate handles DELETE /products/:id
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.products.DeactivateProduct(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponse(product))
}

// RegisterPublicRoutes registers routes that do not require authentication
func (h *ProductHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/products/:id", h.Get)
}

// RegisterRoutes registers authenticated routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/products", h.Create)
	rg.PUT("/products/:id", h.Update)
	rg.DELETE("/products/:id", h.Deactivate)
}
