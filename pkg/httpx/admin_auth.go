package httpx

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminToken — доступ по заголовку "Authorization: Bearer <token>".
// Пустой token отключает защищённые маршруты целиком (403).
func AdminToken(token string) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin api disabled"})
			return
		}

		got, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
			c.Header("WWW-Authenticate", `Bearer realm="admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
