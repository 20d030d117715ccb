package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// clientCtxKey is the Gin context key used to store the authenticated client name.
const clientCtxKey = "client"

// APIKeyMiddleware maps X-API-Key to a client name and rejects unknown keys.
// The client name scopes idempotency keys and is attached to request logs.
func APIKeyMiddleware(keys map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader("X-API-Key"))
		client, ok := keys[apiKey]
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(clientCtxKey, client)
		c.Next()
	}
}

// Client returns the authenticated client name from the request context.
func Client(c *gin.Context) string {
	v, _ := c.Get(clientCtxKey)
	s, _ := v.(string)
	return s
}
