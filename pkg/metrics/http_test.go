package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func sampledContext(flags trace.TraceFlags) (context.Context, trace.SpanContext) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanID:     trace.SpanID{9, 8, 7, 6, 5, 4, 3, 2},
		TraceFlags: flags,
	})
	return trace.ContextWithSpanContext(context.Background(), sc), sc
}

func TestTraceExemplarLabels(t *testing.T) {
	ctx, sc := sampledContext(trace.FlagsSampled)
	labels, ok := traceExemplarLabels(ctx)
	require.True(t, ok)
	assert.Equal(t, sc.TraceID().String(), labels["trace_id"])
	assert.Equal(t, sc.SpanID().String(), labels["span_id"])

	unsampled, _ := sampledContext(0)
	_, ok = traceExemplarLabels(unsampled)
	assert.False(t, ok, "unsampled spans are not exported, so no exemplar")

	_, ok = traceExemplarLabels(context.Background())
	assert.False(t, ok)
}

func TestRecordHTTPRequest_ByRoute(t *testing.T) {
	m := NewManager(DefaultConfig())
	ctx, _ := sampledContext(trace.FlagsSampled)

	m.RecordHTTPRequestWithContext(ctx, "DELETE", "/api/v1/memories/{id}", "204", 3*time.Millisecond)
	m.RecordHTTPRequest("DELETE", "/api/v1/memories/{id}", "404", time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/search", "200", 2*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("DELETE", "/api/v1/memories/{id}", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("DELETE", "/api/v1/memories/{id}", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.httpDuration))
}

func TestActiveConnections(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.IncActiveConnections()
	m.IncActiveConnections()
	m.DecActiveConnections()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpConnections))
}
