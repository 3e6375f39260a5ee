package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/ratelimit"
)

// LoginRateLimit throttles login attempts per client IP. A nil limiter
// disables the check; redis failures let the request through.
func LoginRateLimit(limiter *ratelimit.Limiter, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), "login:"+c.ClientIP())
		if err != nil {
			logger.Warn().Err(err).Msg("Login rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", res.Remaining))
		if !res.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%.0f", res.RetryIn.Seconds()))
			logger.Warn().Str("ip", c.ClientIP()).Msg("Login rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse("Too many login attempts, try again later", nil))
			return
		}
		c.Next()
	}
}
