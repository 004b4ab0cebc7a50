package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"quill/internal/logging"
	"quill/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

const rateLimitMessage = "Too many requests from this IP, please try again after 20 minutes. Like for real, chill out a bit."

var limitLog = logging.New("ratelimit")

type Limiter interface {
	Hit(ctx context.Context, key string) (ratelimit.Result, error)
}

// RateLimit counts requests per client IP. When the store is unreachable
// the request is let through.
func RateLimit(l Limiter, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := l.Hit(c.Request.Context(), c.ClientIP())
		if err != nil {
			limitLog.Error("rate limiter unavailable", slog.Any("error", err))
			c.Next()
			return
		}

		c.Header("RateLimit-Limit", strconv.Itoa(max))
		c.Header("RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(int(res.ResetIn.Seconds())))

		if !res.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": rateLimitMessage})
			return
		}
		c.Next()
	}
}
