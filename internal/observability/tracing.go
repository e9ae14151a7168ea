package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cory-johannsen/duskborne/internal/config"
)

// TracerName is the instrumentation scope used by every engine span.
const TracerName = "github.com/cory-johannsen/duskborne"

// TracerProvider wraps an OpenTelemetry provider. When tracing is disabled it
// hands out no-op tracers and Shutdown does nothing.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// NewTracerProvider builds a provider exporting spans over OTLP/HTTP.
//
// Precondition: cfg passed config validation.
// Postcondition: Returns a non-nil provider, or a non-nil error if the exporter could not be built.
func NewTracerProvider(ctx context.Context, cfg config.TracingConfig) (*TracerProvider, error) {
	if !cfg.Enabled {
		return &TracerProvider{}, nil
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
		otlptracehttp.WithTimeout(10 * time.Second),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	return newTracerProvider(sdktrace.WithBatcher(exporter,
		sdktrace.WithBatchTimeout(5*time.Second),
		sdktrace.WithMaxExportBatchSize(100),
	), cfg), nil
}

func newTracerProvider(processor sdktrace.TracerProviderOption, cfg config.TracingConfig) *TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)
	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return &TracerProvider{provider: tp}
}

// Tracer returns the engine tracer.
func (tp *TracerProvider) Tracer() trace.Tracer {
	if tp == nil || tp.provider == nil {
		return noop.NewTracerProvider().Tracer(TracerName)
	}
	return tp.provider.Tracer(TracerName)
}

// Enabled reports whether spans are exported.
func (tp *TracerProvider) Enabled() bool {
	return tp != nil && tp.provider != nil
}

// Shutdown flushes pending spans.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if !tp.Enabled() {
		return nil
	}
	return tp.provider.Shutdown(ctx)
}

// NoopTracer returns a tracer that records nothing; components fall back to it when given nil.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(TracerName)
}
