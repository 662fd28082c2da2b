package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxRequestBodySize — ограничение тела POST/PUT/PATCH (limit < 1 — 1 MiB).
func MaxRequestBodySize(limit int64) gin.HandlerFunc {
	if limit < 1 {
		limit = 1 << 20
	}
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
