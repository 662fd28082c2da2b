package httpx

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/pkg/metrics"
)

// HeaderXCache — заголовок с результатом поиска в кэше ответов (HIT/MISS).
const HeaderXCache = "X-Cache"

const responseKeyPrefix = "route:"

// CachedResponse — снимок успешного ответа, который хранится в кэше.
type CachedResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// ResponseCacheKey — ключ вида "route:GET /api/v1/products?limit=10".
func ResponseCacheKey(r *http.Request) string {
	return responseKeyPrefix + r.Method + " " + r.URL.RequestURI()
}

// ResponseCache — кэширование ответов GET/HEAD.
//
// Попадание отдаёт сохранённые статус, Content-Type и тело без вызова обработчика.
// Промах пропускает запрос дальше, перехватывая тело, и сохраняет ответ, если статус 2xx
// и тело не длиннее maxBodyBytes (0 — без ограничения). Остальные методы идут мимо кэша.
// Любая проблема при сохранении только логируется: ответ клиенту доставляется всегда.
func ResponseCache(store ports.Cache, ttl time.Duration, maxBodyBytes int, log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodGet && method != http.MethodHead {
			metrics.ResponseCacheRequests.WithLabelValues("bypass").Inc()
			c.Next()
			return
		}

		key := ResponseCacheKey(c.Request)
		if v, ok := store.Get(key); ok {
			if cached, ok := v.(*CachedResponse); ok {
				metrics.ResponseCacheRequests.WithLabelValues("hit").Inc()
				c.Header(HeaderXCache, "HIT")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		metrics.ResponseCacheRequests.WithLabelValues("miss").Inc()
		c.Header(HeaderXCache, "MISS")

		cw := &captureWriter{ResponseWriter: c.Writer, limit: maxBodyBytes}
		c.Writer = cw
		c.Next()
		c.Writer = cw.ResponseWriter

		status := cw.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			metrics.ResponseCacheRequests.WithLabelValues("skipped").Inc()
			return
		}
		if cw.overflow {
			metrics.ResponseCacheRequests.WithLabelValues("skipped").Inc()
			log.Warnf(c.Request.Context(), "response not cached key=%s: body exceeds %d bytes", key, maxBodyBytes)
			return
		}

		storeResponse(c, store, key, ttl, &CachedResponse{
			Status:      status,
			ContentType: contentTypeOrDefault(cw.Header().Get("Content-Type")),
			Body:        bytes.Clone(cw.buf.Bytes()),
		}, log)
	}
}

// storeResponse — сохранение без права уронить запрос.
func storeResponse(c *gin.Context, store ports.Cache, key string, ttl time.Duration, resp *CachedResponse, log ports.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf(c.Request.Context(), "response cache store failed key=%s: %v", key, r)
		}
	}()

	if ttl > 0 {
		store.Set(key, resp, ttl)
	} else {
		store.SetDefault(key, resp)
	}
}

func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

// captureWriter — копирует тело ответа в буфер до limit байт; при переполнении буфер сбрасывается.
type captureWriter struct {
	gin.ResponseWriter
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.capture(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *captureWriter) capture(b []byte) {
	if w.overflow {
		return
	}
	if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
		w.overflow = true
		w.buf.Reset()
		return
	}
	w.buf.Write(b)
}
