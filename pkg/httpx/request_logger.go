package httpx

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/checkout_gateway/internal/ports"
)

// RequestLogger — middleware для логирования HTTP-запросов.
// request_id и trace_id добавляет сам логгер из контекста.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// служебные маршруты не логируем
		switch c.FullPath() {
		case "/metrics", "/ping", "/health":
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		cacheStatus := c.Writer.Header().Get(HeaderXCache)
		if cacheStatus == "" {
			cacheStatus = "-"
		}

		status := c.Writer.Status()
		logf := log.Infof
		if status >= 500 {
			logf = log.Errorf
		}
		logf(
			c.Request.Context(),
			"request method=%s path=%s status=%d cache=%s ip=%s duration=%s size=%d",
			c.Request.Method,
			path,
			status,
			cacheStatus,
			c.ClientIP(),
			time.Since(start),
			c.Writer.Size(),
		)
	}
}
