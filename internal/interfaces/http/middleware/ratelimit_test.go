package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopsphere/backend/internal/infrastructure/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, policy ratelimit.Policy, actor string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis unreachable")
}

func newLimitedRouter(limiter ratelimit.Limiter, limit int64) *gin.Engine {
	engine := gin.New()
	policy := ratelimit.Policy{Scope: "http", Limit: limit, Window: time.Minute}
	engine.Use(RateLimit(limiter, policy, zap.NewNop()))
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return engine
}

func doPing(engine *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	engine := newLimitedRouter(ratelimit.NewInMemoryLimiter(), 5)

	w := doPing(engine)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	engine := newLimitedRouter(ratelimit.NewInMemoryLimiter(), 2)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, doPing(engine).Code)
	}

	w := doPing(engine)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_RejectsWhenStoreUnavailable(t *testing.T) {
	engine := newLimitedRouter(failingLimiter{}, 1)

	// A broken store must not grant unthrottled access.
	for i := 0; i < 3; i++ {
		w := doPing(engine)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_SYSTEM_BUSY")
	}
}
