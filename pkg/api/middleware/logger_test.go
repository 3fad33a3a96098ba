package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		status    int
		wantLevel string
		wantRoute string
	}{
		{"store", http.MethodPost, "/api/v1/memories", http.StatusCreated, "info", "/api/v1/memories"},
		{"delete unknown", http.MethodDelete, "/api/v1/memories/3f0c", http.StatusNotFound, "warn", "/api/v1/memories/{id}"},
		{"search busy", http.MethodPost, "/api/v1/search", http.StatusConflict, "warn", "/api/v1/search"},
		{"model failure", http.MethodPost, "/api/v1/search", http.StatusBadGateway, "error", "/api/v1/search"},
		{"no route", http.MethodGet, "/nope", http.StatusNotFound, "warn", unmatchedRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := newRecordingLogger()
			handler := memoryRoutes(Logger(log), func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("{}"))
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req = req.WithContext(WithRequestID(req.Context(), "req-1"))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			entry := log.last()
			assert.Equal(t, "HTTP request", entry.msg)
			assert.Equal(t, tt.wantLevel, entry.level)
			assert.Equal(t, tt.status, entry.attrs["status"])
			assert.Equal(t, tt.wantRoute, entry.attrs["route"])
			assert.Equal(t, tt.path, entry.attrs["path"])
			assert.Equal(t, "req-1", entry.attrs["request_id"])
			if tt.wantRoute != unmatchedRoute {
				assert.Equal(t, 2, entry.attrs["size"])
			}
		})
	}
}

func TestLogger_DefaultStatus(t *testing.T) {
	log := newRecordingLogger()
	handler := memoryRoutes(Logger(log), func(http.ResponseWriter, *http.Request) {})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/memories", nil))

	assert.Equal(t, http.StatusOK, log.last().attrs["status"])
	assert.Equal(t, "info", log.last().level)
}
