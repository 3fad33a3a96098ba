// Package middleware provides HTTP middleware components.
package middleware

import (
	"net/http"
	"time"

	"github.com/coremem/coremem/pkg/logger"
)

// Logger returns a middleware that logs one line per request. 5xx responses log
// at error level, 4xx at warn, and the rest at info.
func Logger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := wrapWriter(w)

			next.ServeHTTP(sr, r)

			attrs := []any{
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"route", routeLabel(r),
				"path", r.URL.Path,
				"status", sr.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"size", sr.size,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			}

			switch {
			case sr.status >= http.StatusInternalServerError:
				log.ErrorContext(r.Context(), "HTTP request", attrs...)
			case sr.status >= http.StatusBadRequest:
				log.WarnContext(r.Context(), "HTTP request", attrs...)
			default:
				log.InfoContext(r.Context(), "HTTP request", attrs...)
			}
		})
	}
}
