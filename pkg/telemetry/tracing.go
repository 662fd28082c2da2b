package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const defaultEndpoint = "localhost:4318"

// TracingOptions — параметры OTLP/HTTP экспорта.
type TracingOptions struct {
	ServiceName string
	Endpoint    string
	SampleRatio float64
	Environment string
}

// SetupTracing настраивает OTLP/HTTP экспорт, семплинг и глобальные пропагаторы.
// Возвращает функцию корректного завершения провайдера.
func SetupTracing(ctx context.Context, opts TracingOptions) (func(context.Context) error, error) {
	opts = opts.normalized()

	// Экспортёр OTLP/HTTP без TLS (коллектор рядом с сервисом).
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(opts.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(opts.ServiceName),
		attribute.String("telemetry.sdk", "opentelemetry"),
	}
	if opts.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(opts.Environment))
	}

	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
	)

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{},
		),
	)

	return traceProvider.Shutdown, nil
}

// normalized — дефолтный endpoint и семплинг в границах [0..1].
func (o TracingOptions) normalized() TracingOptions {
	if o.Endpoint == "" {
		o.Endpoint = defaultEndpoint
	}
	if o.SampleRatio < 0 {
		o.SampleRatio = 0
	}
	if o.SampleRatio > 1 {
		o.SampleRatio = 1
	}
	if o.ServiceName == "" {
		o.ServiceName = "checkout-gateway"
	}
	return o
}
