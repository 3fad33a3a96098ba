// Package tracing installs the process-wide OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/coremem/coremem/config"
	"github.com/coremem/coremem/pkg/logger"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// ServiceInfo identifies this process in exported spans.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}

// exporterFactory builds the span exporter; tests replace it.
var exporterFactory = func(ctx context.Context, endpoint string, cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithTimeout(cfg.Timeout),
		otlptracegrpc.WithInsecure(),
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return otlptracegrpc.New(ctx, opts...)
}

// quietExporter logs export failures instead of returning them, so a dead
// collector never surfaces as an application error.
type quietExporter struct {
	sdktrace.SpanExporter
	endpoint string
	log      logger.Logger
	failures atomic.Uint64
}

func (e *quietExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if err := e.SpanExporter.ExportSpans(ctx, spans); err != nil {
		n := e.failures.Add(1)
		e.log.Warn("span export failed",
			"endpoint", e.endpoint,
			"spans", len(spans),
			"failures", n,
			"error", err,
		)
	}
	return nil
}

// Init installs a tracer provider and the W3C trace-context and baggage
// propagators. With tracing disabled a no-op provider is installed, so
// instrumented code runs unchanged.
func Init(ctx context.Context, cfg config.TracingConfig, svc ServiceInfo) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	endpoint, err := checkConfig(cfg)
	if err != nil {
		return nil, err
	}

	exp, err := exporterFactory(ctx, endpoint, cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(serviceAttributes(svc)...))
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, fmt.Errorf("build tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(&quietExporter{
			SpanExporter: exp,
			endpoint:     endpoint,
			log:          logger.Global().With("component", "tracing"),
		}),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg)),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		return errors.Join(tp.ForceFlush(ctx), tp.Shutdown(ctx))
	}, nil
}

// checkConfig validates an enabled tracing section and returns the
// collector address in host:port form.
func checkConfig(cfg config.TracingConfig) (string, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Exporter)) {
	case "otlp", "otlpgrpc":
	case "":
		return "", errors.New("tracing exporter cannot be empty")
	default:
		return "", fmt.Errorf("unsupported tracing exporter %q", cfg.Exporter)
	}
	if cfg.Timeout <= 0 {
		return "", errors.New("tracing timeout must be > 0")
	}
	endpoint := hostPort(cfg.Endpoint)
	if endpoint == "" {
		return "", errors.New("tracing endpoint cannot be empty")
	}
	return endpoint, nil
}

func serviceAttributes(svc ServiceInfo) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(svc.Name),
		semconv.ServiceVersion(svc.Version),
	}
	if svc.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment.name", svc.Environment))
	}
	return attrs
}

func sampler(cfg config.TracingConfig) sdktrace.Sampler {
	switch strings.ToLower(strings.TrimSpace(cfg.Sampler)) {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))
	}
}

// hostPort accepts "collector:4317" or a URL such as "http://collector:4317".
func hostPort(endpoint string) string {
	raw := strings.TrimSpace(endpoint)
	if !strings.Contains(raw, "://") {
		return raw
	}
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}
