package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// initHTTPMetrics registers the API request collectors. Requests are
// labelled by chi route pattern, never by raw path.
func (m *Manager) initHTTPMetrics(cfg Config) {
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coremem_http_requests_total",
		Help: "API requests by method, route pattern and status code",
	}, []string{"method", "route", "status"})

	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coremem_http_request_duration_seconds",
		Help:    "API request latency; search and store include model round trips",
		Buckets: cfg.HTTPDurationBuckets,
	}, []string{"method", "route"})

	m.httpConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coremem_http_requests_in_flight",
		Help: "API requests currently being served",
	})

	m.registry.MustRegister(m.httpRequests, m.httpDuration, m.httpConnections)
}

// RecordHTTPRequest records one finished API request.
func (m *Manager) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.RecordHTTPRequestWithContext(context.Background(), method, route, status, duration)
}

// RecordHTTPRequestWithContext records one finished API request. A sampled
// span in ctx becomes an exemplar on the latency histogram.
func (m *Manager) RecordHTTPRequestWithContext(ctx context.Context, method, route, status string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	observeWithTrace(ctx, m.httpDuration.WithLabelValues(method, route), duration.Seconds())
}

// IncActiveConnections marks a request as in flight.
func (m *Manager) IncActiveConnections() {
	if m.enabled {
		m.httpConnections.Inc()
	}
}

// DecActiveConnections marks an in-flight request as finished.
func (m *Manager) DecActiveConnections() {
	if m.enabled {
		m.httpConnections.Dec()
	}
}

func observeWithTrace(ctx context.Context, obs prometheus.Observer, v float64) {
	if labels, ok := traceExemplarLabels(ctx); ok {
		if eo, ok := obs.(prometheus.ExemplarObserver); ok {
			eo.ObserveWithExemplar(v, labels)
			return
		}
	}
	obs.Observe(v)
}

func traceExemplarLabels(ctx context.Context) (prometheus.Labels, bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() || !sc.IsSampled() {
		return nil, false
	}
	return prometheus.Labels{
		"trace_id": sc.TraceID().String(),
		"span_id":  sc.SpanID().String(),
	}, true
}
