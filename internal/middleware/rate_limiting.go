package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"pagecraft-backend/internal/metrics"
)

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(manager *RateLimitManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldBypassRateLimit(c.Request) {
			c.Next()
			return
		}
		if !allow(manager.GetVisitor(c.ClientIP()), "general") {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}

// UploadRateLimitMiddleware applies the stricter upload budget to multipart
// requests only, so JSON edits on the same route are not counted.
func UploadRateLimitMiddleware(manager *RateLimitManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/") {
			c.Next()
			return
		}
		if !allow(manager.GetUploadLimiter(c.ClientIP()), "upload") {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "upload rate limit exceeded",
				"message": "Too many upload requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

func allow(limiter *rate.Limiter, scope string) bool {
	if limiter == nil || limiter.Allow() {
		return true
	}
	if metrics.RateLimited != nil {
		metrics.RateLimited.WithLabelValues(scope).Inc()
	}
	return false
}

func shouldBypassRateLimit(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}

	path := r.URL.Path
	for _, prefix := range []string{"/uploads/", "/static/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	switch path {
	case "/favicon.ico", "/health", "/metrics":
		return true
	}
	return false
}
