package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gunvolt24/checkout_gateway/internal/ports"
)

type memoConfig[A any] struct {
	keyFunc func(A) string
}

// MemoOption — настройка Memoize.
type MemoOption[A any] func(*memoConfig[A])

// WithKeyFunc — собственная функция ключа вместо namespace + ":" + JSON(arg).
// Возвращённая пустая строка означает вызов мимо кэша.
func WithKeyFunc[A any](fn func(A) string) MemoOption[A] {
	return func(c *memoConfig[A]) {
		c.keyFunc = fn
	}
}

// Memoize — оборачивает fn кэшем.
//
// Попадание возвращает сохранённое значение без вызова fn. При промахе fn вызывается,
// успешный результат сохраняется на ttl (ttl <= 0 — TTL хранилища по умолчанию).
// Ошибки не кэшируются и возвращаются как есть. Одновременные промахи по одному ключу
// вызывают fn независимо.
//
// Кэшированное значение общее для всех вызывающих: изменять его нельзя.
func Memoize[A, R any](cache ports.Cache, namespace string, ttl time.Duration,
	fn func(context.Context, A) (R, error), opts ...MemoOption[A],
) func(context.Context, A) (R, error) {
	cfg := memoConfig[A]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx context.Context, arg A) (R, error) {
		key := cfg.key(namespace, arg)
		if key == "" {
			return fn(ctx, arg)
		}

		if v, ok := GetAs[R](cache, key); ok {
			return v, nil
		}

		result, err := fn(ctx, arg)
		if err != nil {
			return result, err
		}
		if ttl > 0 {
			cache.Set(key, result, ttl)
		} else {
			cache.SetDefault(key, result)
		}
		return result, nil
	}
}

func (c memoConfig[A]) key(namespace string, arg A) string {
	if c.keyFunc != nil {
		return c.keyFunc(arg)
	}
	raw, err := json.Marshal(arg)
	if err != nil {
		return ""
	}
	return namespace + ":" + string(raw)
}
