package middleware

import (
	"github.com/gin-gonic/gin"
)

// CacheControl sets the Cache-Control header for responses, e.g. "no-store"
// for credentials or "private, max-age=30" for slow-moving rollups.
func CacheControl(directive string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", directive)
		c.Next()
	}
}
