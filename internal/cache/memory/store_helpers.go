package memory

import (
	"container/list"
	"context"
	"time"

	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/pkg/metrics"
)

// isExpired — запись живёт в полуинтервале [createdAt, expiresAt).
func (e *entry) isExpired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// removeElement — удалить элемент из списка и индекса. Требует s.mu.
func (s *Store) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry)
	s.ll.Remove(elem)
	delete(s.index, ent.key)
}

// evictOldest — вытеснить самую старую по вставке запись. Требует s.mu.
func (s *Store) evictOldest() {
	front := s.ll.Front()
	if front == nil {
		return
	}
	s.removeElement(front)
	metrics.CacheOps.WithLabelValues("evicted").Inc()
}

// pruneExpired — удалить все истёкшие записи. Требует s.mu.
func (s *Store) pruneExpired(now time.Time) int {
	removed := 0
	for elem := s.ll.Front(); elem != nil; {
		next := elem.Next()
		if elem.Value.(*entry).isExpired(now) {
			s.removeElement(elem)
			removed++
		}
		elem = next
	}
	if removed > 0 {
		metrics.CacheOps.WithLabelValues("expired").Add(float64(removed))
	}
	return removed
}

// publishSize — обновить gauge размера. Требует s.mu.
func (s *Store) publishSize() {
	metrics.CacheSize.Set(float64(s.ll.Len()))
}

// GetAs — типизированное чтение: несовпадение типа считается промахом.
func GetAs[T any](cache ports.Cache, key string) (T, bool) {
	var zero T
	v, ok := cache.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}
