package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopsphere/backend/internal/infrastructure/ratelimit"
	"github.com/shopsphere/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RateLimit returns a middleware that throttles requests per client IP under
// the given policy. Authenticated requests are keyed by user ID instead so a
// shared NAT address does not starve individual users.
//
// The limiter store being unreachable fails closed: requests are rejected with
// 503 rather than passed through unthrottled.
func RateLimit(limiter ratelimit.Limiter, policy ratelimit.Policy, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetJWTUserID(c)
		if actor == "" {
			actor = c.ClientIP()
		}

		decision, err := limiter.Allow(c.Request.Context(), policy, actor)
		if err != nil {
			if logger != nil {
				logger.Error("rate limiter unavailable, rejecting request",
					zap.String("scope", policy.Scope),
					zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				dto.NewErrorResponse(dto.ErrCodeSystemBusy, "Service temporarily unavailable. Please try again later."))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(policy.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))

		if !decision.Allowed {
			retryAfter := int64(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "Too many requests. Please try again later."))
			return
		}

		c.Next()
	}
}
