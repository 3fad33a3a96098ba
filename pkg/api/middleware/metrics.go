package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// MetricsRecorder defines the interface for recording HTTP metrics.
type MetricsRecorder interface {
	RecordHTTPRequest(method, path, status string, duration time.Duration)
	IncActiveConnections()
	DecActiveConnections()
}

// contextMetricsRecorder is implemented by recorders that correlate
// observations with the request's trace.
type contextMetricsRecorder interface {
	RecordHTTPRequestWithContext(ctx context.Context, method, path, status string, duration time.Duration)
}

// Metrics returns a middleware that records HTTP metrics labelled by route
// pattern, so memory ids never become label values.
func Metrics(recorder MetricsRecorder) func(http.Handler) http.Handler {
	observe := func(r *http.Request, status int, duration time.Duration) {
		route := routeLabel(r)
		if cr, ok := recorder.(contextMetricsRecorder); ok {
			cr.RecordHTTPRequestWithContext(r.Context(), r.Method, route, strconv.Itoa(status), duration)
			return
		}
		recorder.RecordHTTPRequest(r.Method, route, strconv.Itoa(status), duration)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder.IncActiveConnections()
			defer recorder.DecActiveConnections()

			sr := wrapWriter(w)

			defer func() {
				if p := recover(); p != nil {
					observe(r, http.StatusInternalServerError, time.Since(start))
					panic(p)
				}
			}()

			next.ServeHTTP(sr, r)

			observe(r, sr.status, time.Since(start))
		})
	}
}
