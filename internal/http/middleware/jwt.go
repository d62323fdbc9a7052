package middleware

import (
	"net/http"
	"strings"

	"memory_game/internal/service"

	"github.com/gin-gonic/gin"
)

const sessionIDKey = "session_id"

// JWT validates the Bearer session token and stores the session id in the context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		sessionID, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// SessionID returns the id stored by JWT.
func SessionID(c *gin.Context) (string, bool) {
	id := c.GetString(sessionIDKey)
	return id, id != ""
}
