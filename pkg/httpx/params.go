package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ClampInt — ограничение значения v в диапазоне [min, max].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseLimitOffset - читает limit/offset из query с дефолтами и границами.
func ParseLimitOffset(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit))); err == nil {
		limit = ClampInt(v, 1, maxLimit)
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v >= 0 {
		offset = v
	}
	return
}

// QueryInt64 — необязательный целочисленный query-параметр; (0, false) если отсутствует или не число.
func QueryInt64(c *gin.Context, name string) (int64, bool) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
