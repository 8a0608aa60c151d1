package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	recapp "github.com/shopsphere/backend/internal/application/recommendation"
)

// RecommendationHandler handles recommendation HTTP requests
type RecommendationHandler struct {
	BaseHandler
	recommendations *recapp.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendations *recapp.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

// ProductViewsResponse represents one entry of the most-viewed ranking
type ProductViewsResponse struct {
	ProductID string `json:"product_id"`
	Views     int64  `json:"views"`
}

// TrackView handles POST /products/:id/view
func (h *RecommendationHandler) TrackView(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.recommendations.TrackProductView(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RecentlyViewed handles GET /recommendations/recently-viewed
func (h *RecommendationHandler) RecentlyViewed(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	ids, err := h.recommendations.RecentlyViewed(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toIDStrings(ids))
}

// TopViewed handles GET /recommendations/top-viewed
func (h *RecommendationHandler) TopViewed(c *gin.Context) {
	n := parseLimitQuery(c, 10, 100)
	if n < 0 {
		h.BadRequest(c, "Invalid limit")
		return
	}

	ranking, err := h.recommendations.TopViewed(c.Request.Context(), n)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ProductViewsResponse, 0, len(ranking))
	for _, entry := range ranking {
		out = append(out, ProductViewsResponse{
			ProductID: entry.ProductID.String(),
			Views:     entry.Views,
		})
	}

	h.Success(c, out)
}

// FrequentlyBought handles GET /products/:id/frequently-bought
func (h *RecommendationHandler) FrequentlyBought(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	limit := parseLimitQuery(c, 5, 20)
	if limit < 0 {
		h.BadRequest(c, "Invalid limit")
		return
	}

	ids, err := h.recommendations.FrequentlyBoughtTogether(c.Request.Context(), productID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toIDStrings(ids))
}

func toIDStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// parseLimitQuery reads the limit query parameter, applying a default and a
// cap. Returns -1 on malformed input.
func parseLimitQuery(c *gin.Context, def, max int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return -1
	}
	if n > max {
		return max
	}
	return n
}

// RegisterPublicRoutes registers routes that do not require authentication
func (h *RecommendationHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/recommendations/top-viewed", h.TopViewed)
	rg.GET("/products/:id/frequently-bought", h.FrequentlyBought)
}

// RegisterRoutes registers authenticated routes
func (h *RecommendationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/products/:id/view", h.TrackView)
	rg.GET("/recommendations/recently-viewed", h.RecentlyViewed)
}
