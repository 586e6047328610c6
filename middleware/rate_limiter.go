package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dev-mohitbeniwal/tokengate/db"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
)

const localLimiterEntries = 10000

// localLimiter is the per-process fallback used while redis is absent or
// failing. Per-IP token buckets are LRU-bounded.
type localLimiter struct {
	buckets *lru.Cache
	every   rate.Limit
	burst   int
}

func newLocalLimiter(limit int, per time.Duration) *localLimiter {
	buckets, _ := lru.New(localLimiterEntries)
	return &localLimiter{
		buckets: buckets,
		every:   rate.Every(per / time.Duration(limit)),
		burst:   limit,
	}
}

func (l *localLimiter) allow(key string) bool {
	value, ok := l.buckets.Get(key)
	if !ok {
		limiter := rate.NewLimiter(l.every, l.burst)
		// another request for key may have raced us here
		if previous, found, _ := l.buckets.PeekOrAdd(key, limiter); found {
			value = previous
		} else {
			value = limiter
		}
	}
	return value.(*rate.Limiter).Allow()
}

// RateLimiter allows limit requests per client IP in every window of per.
// The window is shared through redis when client is non-nil.
func RateLimiter(client *redis.Client, limit int, per time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	local := newLocalLimiter(limit, per)

	return func(c *gin.Context) {
		key := c.ClientIP()

		var allowed bool
		if client != nil {
			var err error
			allowed, err = db.RateLimit(c.Request.Context(), client, key, limit, per)
			if err != nil {
				logger.Warn("Redis rate limiting failed, using local limiter", zap.Error(err), zap.String("ip", key))
				allowed = local.allow(key)
			}
		} else {
			allowed = local.allow(key)
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("ip", key),
				zap.Int("limit", limit),
				zap.Duration("per", per))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
