package ports

import (
	"context"
	"time"
)

// Cache — контракт in-process кэша (FIFO-вытеснение при переполнении, ленивое истечение TTL).
// Отсутствие ключа — нормальный результат, а не ошибка.
type Cache interface {
	// Get — значение по ключу; (nil, false) при промахе или истечении (истёкшая запись удаляется).
	Get(key string) (any, bool)
	// Has — проверка наличия с той же семантикой истечения, что и Get.
	Has(key string) bool

	// Set — сохранить/перезаписать значение; ttl <= 0 означает «истекает сразу».
	Set(key string, value any, ttl time.Duration)
	// SetDefault — сохранить значение с TTL по умолчанию.
	SetDefault(key string, value any)

	// Delete — удалить ключ; true, если что-то было удалено.
	Delete(key string) bool
	// InvalidatePattern — удалить все ключи, содержащие pattern как подстроку; вернуть количество.
	InvalidatePattern(pattern string) int
	// Clear — удалить всё.
	Clear()
	// Cleanup — вычистить истёкшие записи; вернуть количество.
	Cleanup() int

	// Size — число занятых слотов, включая истёкшие, но ещё не вычищенные записи.
	Size() int
	// Keys — ключи в порядке вставки (включая истёкшие, но не вычищенные).
	Keys() []string
	// Stats — снимок статистики.
	Stats() CacheStats

	// WarmCache — параллельный прогрев; по одному результату на ключ в исходном порядке.
	WarmCache(ctx context.Context, keys []string, fetcher Fetcher, ttl time.Duration) []WarmResult
}

// Fetcher — источник значения для прогрева кэша.
type Fetcher func(ctx context.Context, key string) (any, error)

// WarmResult — итог прогрева одного ключа.
type WarmResult struct {
	Key     string `json:"key"`
	Success bool   `json:"success"`
	Err     error  `json:"-"`
}

// CacheStats — статистика кэша на момент вызова.
type CacheStats struct {
	Size         int           `json:"size"`
	MaxSize      int           `json:"max_size"`
	ExpiredCount int           `json:"expired_count"`
	AverageAge   time.Duration `json:"average_age"`
}
