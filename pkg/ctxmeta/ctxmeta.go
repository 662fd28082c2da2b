// Пакет ctxmeta — метаданные запроса, которые прокидываются через context.Context
// (request_id, trace_id, span_id). HTTP-слой и логгер зависят от него, но не друг от друга.
package ctxmeta

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const (
	// KeyRequestID — ключ request_id (собственный тип, чтобы избежать коллизий).
	KeyRequestID ctxKey = "request_id"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(KeyRequestID).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// TraceIDFromContext — trace_id активного спана (если трассировка включена).
func TraceIDFromContext(ctx context.Context) (string, bool) {
	sc := spanContext(ctx)
	if !sc.IsValid() {
		return "", false
	}
	return sc.TraceID().String(), true
}

// SpanIDFromContext — span_id активного спана.
func SpanIDFromContext(ctx context.Context) (string, bool) {
	sc := spanContext(ctx)
	if !sc.IsValid() {
		return "", false
	}
	return sc.SpanID().String(), true
}

// Fields — все известные метаданные парами ключ/значение (для структурных логов).
func Fields(ctx context.Context) []any {
	var fields []any
	if id, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, "request_id", id)
	}
	if id, ok := TraceIDFromContext(ctx); ok {
		fields = append(fields, "trace_id", id)
	}
	if id, ok := SpanIDFromContext(ctx); ok {
		fields = append(fields, "span_id", id)
	}
	return fields
}

func spanContext(ctx context.Context) trace.SpanContext {
	if ctx == nil {
		return trace.SpanContext{}
	}
	return trace.SpanFromContext(ctx).SpanContext()
}
