package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/checkout_gateway/pkg/httpx"
)

// RouterOptions — параметры middleware-конвейера.
type RouterOptions struct {
	OtelServiceName string // пусто — трейсинг выключен

	AdminToken string // пусто — admin-маршруты отвечают 403

	RateLimitPerMinute int // 0 — без ограничения
	RateLimitBurst     int

	ResponseTTL          time.Duration // TTL кэша GET-ответов каталога (<= 0 — TTL кэша)
	ResponseMaxBodyBytes int           // ответы длиннее не кэшируются
	MaxRequestBodyBytes  int64         // 0 — без ограничения
}

// NewRouter — gin-роутер со всеми маршрутами API.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	if opts.OtelServiceName != "" {
		r.Use(otelgin.Middleware(opts.OtelServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"error": "route not found"}) })
	r.NoMethod(func(c *gin.Context) { c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"}) })

	api := r.Group("/api/v1")
	if opts.RateLimitPerMinute > 0 {
		api.Use(httpx.NewIPRateLimiter(opts.RateLimitPerMinute, opts.RateLimitBurst).Middleware())
	}
	if opts.MaxRequestBodyBytes > 0 {
		api.Use(httpx.MaxRequestBodySize(opts.MaxRequestBodyBytes))
	}
	admin := httpx.AdminToken(opts.AdminToken)
	cached := httpx.ResponseCache(h.cache, opts.ResponseTTL, opts.ResponseMaxBodyBytes, h.log)

	products := api.Group("/products")
	{
		products.GET("", cached, h.listProducts)
		products.GET("/featured", cached, h.featuredProducts)
		products.GET("/:id", cached, h.getProduct)
		products.POST("", admin, h.createProduct)
		products.PATCH("/:id", admin, h.updateProduct)
		products.DELETE("/:id", admin, h.deleteProduct)
	}

	payments := api.Group("/payments")
	{
		payments.POST("/orders", h.createPaymentOrder)
		payments.POST("/verify", h.verifyPayment)
	}

	shipping := api.Group("/shipping")
	{
		shipping.POST("/orders", h.createShipment)
		shipping.GET("/track/:awb", h.trackShipment)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", h.createOrder)
		orders.GET("/:number", h.getOrder)
		orders.GET("/:number/tracking", h.trackOrder)
		orders.POST("/:number/cancel", h.cancelOrder)
	}

	adminOrders := api.Group("/admin/orders", admin)
	{
		adminOrders.GET("", h.listOrders)
		adminOrders.PATCH("/:number/status", h.updateOrderStatus)
	}

	adminCache := api.Group("/admin/cache", admin)
	{
		adminCache.GET("/stats", h.cacheStats)
		adminCache.POST("/invalidate", h.invalidateCache)
		adminCache.POST("/cleanup", h.cleanupCache)
		adminCache.DELETE("", h.clearCache)
	}

	return r
}
