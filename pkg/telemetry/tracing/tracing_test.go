package tracing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/coremem/coremem/config"
	"github.com/coremem/coremem/pkg/logger"
)

type stubExporter struct {
	exportErr    error
	exports      atomic.Int32
	shutdowns    atomic.Int32
	blockOnClose bool
}

func (s *stubExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error {
	s.exports.Add(1)
	return s.exportErr
}

func (s *stubExporter) Shutdown(ctx context.Context) error {
	s.shutdowns.Add(1)
	if s.blockOnClose {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// useExporter swaps the exporter factory and restores the global provider.
func useExporter(t *testing.T, exp sdktrace.SpanExporter) *string {
	t.Helper()
	origFactory := exporterFactory
	origProvider := otel.GetTracerProvider()
	origPropagator := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		exporterFactory = origFactory
		otel.SetTracerProvider(origProvider)
		otel.SetTextMapPropagator(origPropagator)
	})

	var endpoint string
	exporterFactory = func(_ context.Context, ep string, _ config.TracingConfig) (sdktrace.SpanExporter, error) {
		endpoint = ep
		return exp, nil
	}
	return &endpoint
}

func enabledConfig() config.TracingConfig {
	return config.TracingConfig{
		Enabled:    true,
		Exporter:   "otlp",
		Endpoint:   "localhost:4317",
		Timeout:    time.Second,
		Sampler:    "always_on",
		SampleRate: 1,
	}
}

var svc = ServiceInfo{Name: "coremem", Version: "test", Environment: "test"}

func TestInit_DisabledInstallsNoop(t *testing.T) {
	exp := &stubExporter{}
	useExporter(t, exp)

	shutdown, err := Init(context.Background(), config.TracingConfig{}, svc)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	assert.IsType(t, noop.TracerProvider{}, otel.GetTracerProvider())
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	assert.Zero(t, exp.shutdowns.Load())
}

func TestInit_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.TracingConfig)
		wantErr string
	}{
		{"no exporter", func(c *config.TracingConfig) { c.Exporter = "" }, "exporter cannot be empty"},
		{"unknown exporter", func(c *config.TracingConfig) { c.Exporter = "zipkin" }, "unsupported tracing exporter"},
		{"no endpoint", func(c *config.TracingConfig) { c.Endpoint = "  " }, "endpoint cannot be empty"},
		{"no timeout", func(c *config.TracingConfig) { c.Timeout = 0 }, "timeout must be > 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useExporter(t, &stubExporter{})
			cfg := enabledConfig()
			tt.mutate(&cfg)

			_, err := Init(context.Background(), cfg, svc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInit_ExportsAndShutsDown(t *testing.T) {
	exp := &stubExporter{}
	endpoint := useExporter(t, exp)

	cfg := enabledConfig()
	cfg.Endpoint = "http://collector:4317/v1/traces"
	shutdown, err := Init(context.Background(), cfg, svc)
	require.NoError(t, err)
	assert.Equal(t, "collector:4317", *endpoint)

	_, span := otel.Tracer("test").Start(context.Background(), "controller.search")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, shutdown(ctx))
	assert.Positive(t, exp.exports.Load())
	assert.Equal(t, int32(1), exp.shutdowns.Load())
}

func TestInit_ExportFailuresStayQuiet(t *testing.T) {
	exp := &stubExporter{exportErr: errors.New("collector down")}
	useExporter(t, exp)

	shutdown, err := Init(context.Background(), enabledConfig(), svc)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "controller.store")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, shutdown(ctx))
	assert.Positive(t, exp.exports.Load())
}

func TestQuietExporter_CountsFailures(t *testing.T) {
	q := &quietExporter{
		SpanExporter: &stubExporter{exportErr: errors.New("unavailable")},
		endpoint:     "localhost:4317",
		log:          logger.Discard(),
	}

	require.NoError(t, q.ExportSpans(context.Background(), nil))
	require.NoError(t, q.ExportSpans(context.Background(), nil))
	assert.Equal(t, uint64(2), q.failures.Load())
}

func TestShutdown_Bounded(t *testing.T) {
	useExporter(t, &stubExporter{blockOnClose: true})

	shutdown, err := Init(context.Background(), enabledConfig(), svc)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = shutdown(ctx)

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSampler(t *testing.T) {
	tests := map[string]string{
		"always_on":  "AlwaysOnSampler",
		"always_off": "AlwaysOffSampler",
		"ratio":      "ParentBased",
		"":           "ParentBased",
	}
	for name, want := range tests {
		got := sampler(config.TracingConfig{Sampler: name, SampleRate: 0.25}).Description()
		assert.Contains(t, got, want, name)
	}
}

func TestHostPort(t *testing.T) {
	assert.Equal(t, "localhost:4317", hostPort("localhost:4317"))
	assert.Equal(t, "localhost:4317", hostPort(" http://localhost:4317/v1/traces "))
	assert.Equal(t, "", hostPort(""))
}
