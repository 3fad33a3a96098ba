package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/coremem/coremem/pkg/api/response"
	"github.com/coremem/coremem/pkg/logger"
)

// Recovery returns a middleware that turns a handler panic into a 500
// envelope. http.ErrAbortHandler is re-raised so the server aborts the
// connection as usual. If the handler already started the response, the
// panic is only logged.
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := wrapWriter(w)

			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(p)
				}

				log.ErrorContext(r.Context(), "Panic recovered",
					"error", p,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				if sr.written {
					return
				}

				requestID := GetRequestID(r.Context())
				if requestID == "" {
					requestID = "unknown"
				}
				response.Error(sr, http.StatusInternalServerError, response.ErrCodeInternalServer,
					"Internal server error", requestID)
			}()

			next.ServeHTTP(sr, r)
		})
	}
}
