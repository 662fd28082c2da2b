package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/pkg/ctxmeta"
)

// Проверка, что ZapLogger удовлетворяет интерфейсу ports.Logger.
var _ ports.Logger = (*ZapLogger)(nil)

// ZapLogger — ports.Logger поверх zap. Метаданные запроса из ctx
// (request_id, trace_id, span_id) добавляются к каждой записи.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// NewZapLogger — production (JSON) или development (консоль) конфигурация.
// Возвращает cleanup для Sync при остановке.
func NewZapLogger(isProd bool) (*ZapLogger, func() error, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if isProd {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, nil, err
	}

	z := FromZap(logger)
	cleanup := func() error { return z.base.Sync() }
	return z, cleanup, nil
}

// FromZap — обёртка над готовым *zap.Logger (например, zaptest/observer в тестах).
func FromZap(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{base: logger, sugar: logger.Sugar()}
}

func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.logf(ctx, zapcore.InfoLevel, format, args...)
}

func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.logf(ctx, zapcore.WarnLevel, format, args...)
}

func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.logf(ctx, zapcore.ErrorLevel, format, args...)
}

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }

func (z *ZapLogger) logf(ctx context.Context, level zapcore.Level, format string, args ...any) {
	sugar := z.sugar
	if fields := ctxmeta.Fields(ctx); len(fields) > 0 {
		sugar = sugar.With(fields...)
	}
	sugar.Logf(level, format, args...)
}
