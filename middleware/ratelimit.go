package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitOptions configures the per-client token bucket.
type RateLimitOptions struct {
	RPS   rate.Limit
	Burst int
}

// RateLimit applies a per-client-IP token bucket to the API surface.
// Limiters are kept in memory for the process lifetime; this service has a
// small, stable set of callers, so no eviction is needed.
func RateLimit(opts RateLimitOptions) gin.HandlerFunc {
	if opts.RPS <= 0 {
		opts.RPS = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 20
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		key := c.ClientIP()

		mu.Lock()
		lim, ok := limiters[key]
		if !ok {
			lim = rate.NewLimiter(opts.RPS, opts.Burst)
			limiters[key] = lim
		}
		mu.Unlock()

		if !lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
