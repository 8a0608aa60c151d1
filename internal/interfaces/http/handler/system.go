package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/shopsphere/backend/internal/infrastructure/persistence"
)

// SystemHandler handles health and operational HTTP requests
type SystemHandler struct {
	BaseHandler
	db     *persistence.Database
	redis  *redis.Client
	outbox shared.OutboxRepository
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *persistence.Database, redisClient *redis.Client, outbox shared.OutboxRepository) *SystemHandler {
	return &SystemHandler{
		db:     db,
		redis:  redisClient,
		outbox: outbox,
	}
}

// HealthResponse reports the status of each dependency
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "ok", Redis: "ok"}
	status := http.StatusOK

	if err := h.db.Ping(); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		resp.Status = "degraded"
		resp.Redis = "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

// DeadLetterCountResponse reports how many outbox entries exhausted retries
type DeadLetterCountResponse struct {
	Count int64 `json:"count"`
}

// OutboxDeadCount handles GET /system/outbox/dead/count
func (h *SystemHandler) OutboxDeadCount(c *gin.Context) {
	count, err := h.outbox.CountDead(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, DeadLetterCountResponse{Count: count})
}

// RegisterPublicRoutes registers routes that do not require authentication
func (h *SystemHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// RegisterRoutes registers authenticated routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/system/outbox/dead/count", h.OutboxDeadCount)
}
