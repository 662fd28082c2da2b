package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/checkout_gateway/internal/ports"
)

// Handler — HTTP-обработчики поверх сервисов каталога, заказов и оформления оплаты.
type Handler struct {
	products ports.ProductService
	checkout ports.CheckoutService
	orders   ports.OrderService
	cache    ports.Cache
	log      ports.Logger
	timeout  time.Duration
}

// NewHandler — конструктор. timeout ограничивает обработку одного запроса (0 — без ограничения).
func NewHandler(
	products ports.ProductService,
	checkout ports.CheckoutService,
	orders ports.OrderService,
	cache ports.Cache,
	log ports.Logger,
	timeout time.Duration,
) *Handler {
	return &Handler{
		products: products,
		checkout: checkout,
		orders:   orders,
		cache:    cache,
		log:      log,
		timeout:  timeout,
	}
}

// requestContext — контекст запроса с таймаутом обработчика.
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return c.Request.Context(), func() {}
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"cache_size": h.cache.Size(),
	})
}
