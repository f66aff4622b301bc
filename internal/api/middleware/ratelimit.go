package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/homedeck/homedeck/internal/service"
	"golang.org/x/time/rate"
)

// maxLimiters bounds the number of tracked clients. The least recently seen
// client is evicted first.
const maxLimiters = 10000

// RateLimiter limits requests per client ip.
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	skip     map[string]bool
}

// NewRateLimiter creates a limiter allowing requestsPerSecond with the given burst.
// Requests to skipPaths are never limited.
func NewRateLimiter(requestsPerSecond float64, burst int, skipPaths ...string) *RateLimiter {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	// only fails for a non-positive size
	limiters, _ := lru.New[string, *rate.Limiter](maxLimiters)
	return &RateLimiter{
		limiters: limiters,
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		skip:     skip,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, limiter)
	}
	return limiter
}

// Handler returns the gin middleware. Clients are keyed by gin's ClientIP, which
// only honours forwarding headers from trusted proxies.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		key := c.ClientIP()
		if !rl.getLimiter(key).Allow() {
			httpLogger.Warn("rate limit exceeded", "ip", key, "path", c.Request.URL.Path)
			abort(c, service.Failure("Too many requests, please try again later", http.StatusTooManyRequests))
			return
		}
		c.Next()
	}
}
