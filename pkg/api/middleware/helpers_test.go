package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coremem/coremem/pkg/logger"
)

// memoryRoutes mounts handlers on the real route shapes so route labels resolve.
func memoryRoutes(mw func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/api/v1/memories", h)
	r.Post("/api/v1/memories", h)
	r.Delete("/api/v1/memories/{id}", h)
	r.Post("/api/v1/search", h)
	return r
}

type logEntry struct {
	level string
	msg   string
	attrs map[string]any
}

// recordingLogger captures the *Context calls the middleware makes.
type recordingLogger struct {
	logger.Logger
	mu      sync.Mutex
	entries []logEntry
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{Logger: logger.Discard()}
}

func (l *recordingLogger) add(level, msg string, args []any) {
	attrs := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok {
			attrs[k] = args[i+1]
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, attrs: attrs})
}

func (l *recordingLogger) InfoContext(_ context.Context, msg string, args ...any) {
	l.add("info", msg, args)
}

func (l *recordingLogger) WarnContext(_ context.Context, msg string, args ...any) {
	l.add("warn", msg, args)
}

func (l *recordingLogger) ErrorContext(_ context.Context, msg string, args ...any) {
	l.add("error", msg, args)
}

func (l *recordingLogger) last() logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return logEntry{}
	}
	return l.entries[len(l.entries)-1]
}

type observation struct {
	method, route, status string
	withContext           bool
	traced                bool
}

// recordingMetrics implements MetricsRecorder and the context-aware variant.
type recordingMetrics struct {
	mu           sync.Mutex
	observations []observation
	active       int
	peak         int
	contextAware bool
}

func (m *recordingMetrics) RecordHTTPRequest(method, route, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = append(m.observations, observation{method: method, route: route, status: status})
}

func (m *recordingMetrics) IncActiveConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active++
	if m.active > m.peak {
		m.peak = m.active
	}
}

func (m *recordingMetrics) DecActiveConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active--
}

func (m *recordingMetrics) snapshot() []observation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]observation(nil), m.observations...)
}

// contextMetrics adds RecordHTTPRequestWithContext.
type contextMetrics struct {
	*recordingMetrics
	traced func(ctx context.Context) bool
}

func (m contextMetrics) RecordHTTPRequestWithContext(ctx context.Context, method, route, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = append(m.observations, observation{
		method: method, route: route, status: status, withContext: true, traced: m.traced(ctx),
	})
}
