package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// SelectRateLimit limits card selections per session (not per IP).
// Uses the session id set by the JWT middleware, which must run first.
func SelectRateLimit(maxSelects int, window time.Duration) gin.HandlerFunc {
	local := NewLocalLimiter(maxSelects, window)

	return func(c *gin.Context) {
		sessionID, ok := SessionID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if maxSelects <= 0 {
			c.Next()
			return
		}

		key := "select_rl:" + sessionID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)

		allowed := true
		if val, ok := fixedWindow(c.Request.Context(), key, window); ok {
			c.Header("X-SelectRateLimit-Limit", strconv.Itoa(maxSelects))
			c.Header("X-SelectRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxSelects)-val), 10))
			allowed = val <= int64(maxSelects)
		} else {
			allowed = local.Allow(sessionID)
		}

		if !allowed {
			RLBlocked.WithLabelValues("select").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "select rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("select").Inc()
		c.Next()
	}
}
