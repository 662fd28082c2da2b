package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Значения по умолчанию для жизненного цикла соединений.
const (
	defaultMaxConnLifetime = time.Hour
	defaultMaxConnIdleTime = 30 * time.Minute
)

// PoolConfig — параметры пула; нулевые значения оставляют дефолты.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NewPool — пул соединений к Postgres. В конце Ping: о проблеме подключения узнаём при старте.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	pgCfg, err := parsePoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if connErr := pool.Ping(ctx); connErr != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", connErr)
	}

	return pool, nil
}

// parsePoolConfig — DSN и лимиты пула. Ограничение времени жизни и простоя не даёт пулу
// держать соединения, которые сервер или балансировщик уже закрыл.
func parsePoolConfig(cfg PoolConfig) (*pgxpool.Config, error) {
	pgCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pgCfg.MaxConns = cfg.MaxConns
	}

	pgCfg.MaxConnLifetime = defaultMaxConnLifetime
	if cfg.MaxConnLifetime > 0 {
		pgCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pgCfg.MaxConnIdleTime = defaultMaxConnIdleTime
	if cfg.MaxConnIdleTime > 0 {
		pgCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	return pgCfg, nil
}
