package memory

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/pkg/metrics"
)

// Проверка, что Store удовлетворяет интерфейсу ports.Cache.
var _ ports.Cache = (*Store)(nil)

// ErrInvalidConfig — некорректные параметры при создании хранилища.
var ErrInvalidConfig = errors.New("invalid cache config")

type entry struct {
	key       string
	value     any
	createdAt time.Time
	expiresAt time.Time
}

// Store — ограниченное по размеру хранилище ключ/значение с TTL.
//
// Порядок в списке — порядок вставки: Front — самая старая запись, Back — самая новая.
// При переполнении вытесняется самая старая живая запись (FIFO). Чтения порядок
// не меняют: это не LRU. Повторный Set того же ключа считается новой вставкой.
//
// Истечение ленивое: истёкшая запись удаляется при следующем Get/Has.
// Cleanup (и RunJanitor) только освобождает память от записей, которые никто не читает.
type Store struct {
	maxSize    int
	defaultTTL time.Duration

	ll    *list.List
	index map[string]*list.Element

	clock Clock
	log   ports.Logger

	mu sync.Mutex
}

// Option — настройка Store.
type Option func(*Store)

// WithClock — подменить источник времени.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger — логгер для событий уровня хранилища (очистка, инвалидация, прогрев).
func WithLogger(log ports.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore — конструктор. maxSize и defaultTTL должны быть положительными.
func NewStore(maxSize int, defaultTTL time.Duration, opts ...Option) (*Store, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: max size must be positive, got %d", ErrInvalidConfig, maxSize)
	}
	if defaultTTL <= 0 {
		return nil, fmt.Errorf("%w: default ttl must be positive, got %s", ErrInvalidConfig, defaultTTL)
	}

	s := &Store{
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		ll:         list.New(),
		index:      make(map[string]*list.Element),
		clock:      realClock{},
		log:        nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultTTL — TTL, применяемый при SetDefault.
func (s *Store) DefaultTTL() time.Duration { return s.defaultTTL }

// MaxSize — граница числа записей.
func (s *Store) MaxSize() int { return s.maxSize }

func (s *Store) Get(key string) (any, bool) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.index[key]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	ent := elem.Value.(*entry)
	if ent.isExpired(now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		s.removeElement(elem)
		s.publishSize()
		return nil, false
	}

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return ent.value, true
}

func (s *Store) Has(key string) bool {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.index[key]
	if !ok {
		return false
	}
	if elem.Value.(*entry).isExpired(now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		s.removeElement(elem)
		s.publishSize()
		return false
	}
	return true
}

// Set — вставить или перезаписать значение. ttl <= 0 — запись истекает сразу
// (слот занят до ленивого удаления или Cleanup). Пустой ключ игнорируется.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	metrics.CacheOps.WithLabelValues("set").Inc()

	if elem, ok := s.index[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.createdAt = now
		ent.expiresAt = now.Add(ttl)
		s.ll.MoveToBack(elem)
		return
	}

	elem := s.ll.PushBack(&entry{
		key:       key,
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	})
	s.index[key] = elem

	if s.ll.Len() > s.maxSize {
		// Истёкшие записи уже не живые — сначала избавляемся от них.
		s.pruneExpired(now)
		for s.ll.Len() > s.maxSize {
			s.evictOldest()
		}
	}
	s.publishSize()
}

// SetDefault — Set с TTL по умолчанию.
func (s *Store) SetDefault(key string, value any) {
	s.Set(key, value, s.defaultTTL)
}

func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.index[key]
	if !ok {
		return false
	}
	s.removeElement(elem)
	metrics.CacheOps.WithLabelValues("deleted").Inc()
	s.publishSize()
	return true
}

func (s *Store) Clear() {
	s.mu.Lock()
	dropped := s.ll.Len()
	s.ll.Init()
	s.index = make(map[string]*list.Element)
	s.publishSize()
	s.mu.Unlock()

	s.log.Infof(context.Background(), "cache cleared dropped=%d", dropped)
}

// Size — число занятых слотов. Истёкшие, но ещё не удалённые записи тоже считаются.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

// Keys — ключи в порядке вставки (от старых к новым), включая истёкшие.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, s.ll.Len())
	for elem := s.ll.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*entry).key)
	}
	return keys
}

// Cleanup — удаляет все истёкшие записи и возвращает их количество.
func (s *Store) Cleanup() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.pruneExpired(now)
	s.publishSize()
	return removed
}

func (s *Store) Stats() ports.CacheStats {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := ports.CacheStats{
		Size:    s.ll.Len(),
		MaxSize: s.maxSize,
	}
	if stats.Size == 0 {
		return stats
	}

	var totalAge time.Duration
	for elem := s.ll.Front(); elem != nil; elem = elem.Next() {
		ent := elem.Value.(*entry)
		if ent.isExpired(now) {
			stats.ExpiredCount++
		}
		totalAge += now.Sub(ent.createdAt)
	}
	stats.AverageAge = totalAge / time.Duration(stats.Size)
	return stats
}

// InvalidatePattern — удаляет все ключи, содержащие pattern как подстроку.
// Пустой шаблон ничего не удаляет: для полной очистки есть Clear.
func (s *Store) InvalidatePattern(pattern string) int {
	if pattern == "" {
		return 0
	}

	s.mu.Lock()
	removed := 0
	for elem := s.ll.Front(); elem != nil; {
		next := elem.Next()
		if strings.Contains(elem.Value.(*entry).key, pattern) {
			s.removeElement(elem)
			removed++
		}
		elem = next
	}
	s.publishSize()
	s.mu.Unlock()

	metrics.CacheOps.WithLabelValues("invalidated").Add(float64(removed))
	s.log.Infof(context.Background(), "invalidated %d cache entries matching pattern=%q", removed, pattern)
	return removed
}
