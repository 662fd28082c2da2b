package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gunvolt24/checkout_gateway/pkg/ctxmeta"
)

// HeaderRequestID — заголовок корреляции запросов.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// RequestIDMiddleware:
// - принимает X-Request-ID от клиента (печатный ASCII, до 128 символов) или генерирует UUID
// - кладёт request_id в контекст
// - возвращает его в ответном заголовке X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if !validRequestID(requestID) {
			requestID = uuid.New().String()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := ctxmeta.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
