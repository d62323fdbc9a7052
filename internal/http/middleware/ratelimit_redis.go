package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// SetRedisClient installs the shared client used by the Redis limiters. A nil client
// switches them to the in-process fallback.
func SetRedisClient(client *redis.Client) {
	redisClient = client
}

// fixedWindow counts a hit on key in Redis. ok is false when Redis is unavailable.
func fixedWindow(ctx context.Context, key string, window time.Duration) (count int64, ok bool) {
	if redisClient == nil {
		return 0, false
	}
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}
	return val, true
}

// RedisRateLimit implements a fixed-window rate limiter per client IP using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<identifier>
// Without Redis it falls back to an in-process token bucket of the same rate.
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	local := NewLocalLimiter(maxRequests, window)

	return func(c *gin.Context) {
		ident := c.ClientIP()
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident

		allowed := true
		if val, ok := fixedWindow(c.Request.Context(), key, window); ok {
			allowed = val <= int64(maxRequests)
		} else {
			if redisClient != nil {
				c.Header("X-RateLimit-Error", "redis-error")
			}
			allowed = local.Allow(ident)
		}

		if !allowed {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
