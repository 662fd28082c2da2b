package httpx

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter — token bucket на каждый IP клиента.
type IPRateLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	perMinute int
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter — perMinute запросов в минуту с допустимым всплеском burst (оба минимум 1).
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		entries:   make(map[string]*limiterEntry),
		perMinute: perMinute,
		burst:     burst,
		idleTTL:   15 * time.Minute,
		now:       time.Now,
	}
}

// Allow — можно ли пропустить ещё один запрос с ip.
func (r *IPRateLimiter) Allow(ip string) bool {
	return r.limiterFor(ip).Allow()
}

func (r *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Простаивающие IP вычищаем не чаще раза в idleTTL.
	if now.Sub(r.lastSweep) > r.idleTTL {
		for key, entry := range r.entries {
			if now.Sub(entry.lastSeen) > r.idleTTL {
				delete(r.entries, key)
			}
		}
		r.lastSweep = now
	}

	entry, ok := r.entries[ip]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(r.perMinute)/60.0), r.burst),
		}
		r.entries[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Middleware — 429 при превышении лимита.
func (r *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !r.Allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
