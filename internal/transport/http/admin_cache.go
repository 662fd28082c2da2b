package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type invalidateRequest struct {
	Pattern string `json:"pattern"`
}

func (h *Handler) cacheStats(c *gin.Context) {
	stats := h.cache.Stats()
	c.JSON(http.StatusOK, gin.H{
		"size":                stats.Size,
		"max_size":            stats.MaxSize,
		"expired_count":       stats.ExpiredCount,
		"average_age_seconds": stats.AverageAge.Seconds(),
	})
}

func (h *Handler) invalidateCache(c *gin.Context) {
	var req invalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json: "+err.Error())
		return
	}
	pattern := strings.TrimSpace(req.Pattern)
	if pattern == "" {
		badRequest(c, "pattern is required")
		return
	}

	removed := h.cache.InvalidatePattern(pattern)
	h.log.Infof(c.Request.Context(), "admin cache invalidate pattern=%q removed=%d", pattern, removed)
	c.JSON(http.StatusOK, gin.H{"pattern": pattern, "removed": removed})
}

func (h *Handler) cleanupCache(c *gin.Context) {
	removed := h.cache.Cleanup()
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) clearCache(c *gin.Context) {
	dropped := h.cache.Size()
	h.cache.Clear()
	h.log.Infof(c.Request.Context(), "admin cache cleared dropped=%d", dropped)
	c.JSON(http.StatusOK, gin.H{"cleared": dropped})
}
