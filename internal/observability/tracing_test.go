package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cory-johannsen/duskborne/internal/config"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, tp.Enabled())

	_, span := tp.Tracer().Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestTracerProvider_RecordsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := newTracerProvider(sdktrace.WithSyncer(exp), config.TracingConfig{
		Enabled:     true,
		ServiceName: "duskborne-test",
		Environment: "test",
	})
	require.True(t, tp.Enabled())

	_, span := tp.Tracer().Start(context.Background(), "narrative.choice")
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "narrative.choice", spans[0].Name)
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestNilTracerProvider_IsNoop(t *testing.T) {
	var tp *TracerProvider
	assert.False(t, tp.Enabled())
	assert.NotNil(t, tp.Tracer())
	assert.NoError(t, tp.Shutdown(context.Background()))
}
