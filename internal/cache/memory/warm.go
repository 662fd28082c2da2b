package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/pkg/metrics"
)

// ErrFetcherPanic — fetcher запаниковал при прогреве ключа.
var ErrFetcherPanic = errors.New("cache warm fetcher panicked")

// WarmCache — параллельно загружает ключи через fetcher и кладёт успешные значения в кэш.
// results[i] соответствует keys[i]. Ошибка одного ключа не влияет на остальные,
// сам вызов не завершается ошибкой. ttl <= 0 — TTL по умолчанию.
func (s *Store) WarmCache(ctx context.Context, keys []string, fetcher ports.Fetcher, ttl time.Duration) []ports.WarmResult {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.log.Infof(ctx, "warming cache keys=%d", len(keys))

	results := make([]ports.WarmResult, len(keys))
	var wg sync.WaitGroup
	wg.Add(len(keys))
	for i, key := range keys {
		go func(i int, key string) {
			defer wg.Done()
			results[i] = s.warmOne(ctx, key, fetcher, ttl)
		}(i, key)
	}
	wg.Wait()

	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}
	s.log.Infof(ctx, "cache warming completed: %d/%d successful", successful, len(keys))
	return results
}

func (s *Store) warmOne(ctx context.Context, key string, fetcher ports.Fetcher, ttl time.Duration) (res ports.WarmResult) {
	res.Key = key
	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Err = fmt.Errorf("%w: key=%s: %v", ErrFetcherPanic, key, r)
			metrics.CacheWarm.WithLabelValues("failure").Inc()
			s.log.Errorf(ctx, "failed to warm cache key=%s: %v", key, res.Err)
		}
	}()

	value, err := fetcher(ctx, key)
	if err != nil {
		res.Err = err
		metrics.CacheWarm.WithLabelValues("failure").Inc()
		s.log.Errorf(ctx, "failed to warm cache key=%s: %v", key, err)
		return res
	}

	s.Set(key, value, ttl)
	res.Success = true
	metrics.CacheWarm.WithLabelValues("success").Inc()
	return res
}
