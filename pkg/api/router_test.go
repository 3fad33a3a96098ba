package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coremem/coremem/pkg/api/handlers"
	"github.com/coremem/coremem/pkg/api/response"
	"github.com/coremem/coremem/pkg/llm"
	"github.com/coremem/coremem/pkg/logger"
)

func TestNewRouter(t *testing.T) {
	router := NewRouter(testConfig(), logger.Discard(), &Handlers{})
	if router == nil {
		t.Fatal("NewRouter returned nil")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status without handlers = %v, want %v", w.Code, http.StatusNotFound)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRegisterRoutes_HealthEndpoints(t *testing.T) {
	stack := createTestHandlers(t)
	router := NewRouter(testConfig(), logger.Discard(), stack.handlers)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/status", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("%s status = %v, want %v", tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_SwaggerDocs(t *testing.T) {
	router := NewRouter(testConfig(), logger.Discard(), &Handlers{})

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "CoreMem API", doc.Info.Title)
	for path, method := range map[string]string{
		"/api/v1/memories":      "post",
		"/api/v1/memories/{id}": "delete",
		"/api/v1/search":        "post",
		"/api/v1/state":         "delete",
		"/status":               "get",
	} {
		assert.Contains(t, doc.Paths[path], method, path)
	}
}

func TestRegisterRoutes_SessionEndpoints(t *testing.T) {
	stack := createTestHandlers(t)
	router := NewRouter(testConfig(), logger.Discard(), stack.handlers)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/memories", `{"text":"Ran 10k in the park"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var stored struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))

	stack.fake.Reply(llm.OpRank, `[{"id":"`+stored.ID+`","reason":"exercise","score":0.9}]`)
	stack.fake.Reply(llm.OpSynthesize, "You ran.")

	routes := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/api/v1/memories", "", http.StatusOK},
		{http.MethodGet, "/api/v1/stats", "", http.StatusOK},
		{http.MethodPost, "/api/v1/search", `{"query":"running"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/search", "", http.StatusOK},
		{http.MethodGet, "/api/v1/interactions", "", http.StatusOK},
		{http.MethodGet, "/api/v1/state", "", http.StatusOK},
		{http.MethodDelete, "/api/v1/memories/" + stored.ID, "", http.StatusNoContent},
		{http.MethodDelete, "/api/v1/memories/" + stored.ID, "", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/state", "", http.StatusNoContent},
	}

	for _, rt := range routes {
		w := do(rt.method, rt.path, rt.body)
		assert.Equal(t, rt.wantStatus, w.Code, "%s %s: %s", rt.method, rt.path, w.Body.String())
	}
}

func TestRouter_RequestTimeoutCoversModelCalls(t *testing.T) {
	stack := createTestHandlers(t)
	stack.fake.Handle(llm.OpEnrich, func(ctx context.Context, _ *llm.Request) (*llm.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	cfg := testConfig()
	cfg.Server.HTTP.RequestTimeout = 50 * time.Millisecond
	router := NewRouter(cfg, logger.Discard(), stack.handlers)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories", strings.NewReader(`{"text":"slow"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusGatewayTimeout, w.Code)
	var errResp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, response.ErrCodeGatewayTimeout, errResp.Error.Code)

	require.Eventually(t, func() bool { return !stack.ctrl.Storing() }, time.Second, 5*time.Millisecond)
	assert.Empty(t, stack.ctrl.Memories(0))
}

func TestRouter_WebSocketReceivesSessionEvents(t *testing.T) {
	stack := createTestHandlers(t)
	server := httptest.NewServer(NewRouter(testConfig(), logger.Discard(), stack.handlers))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws/events", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return stack.handlers.WebSocket.Connections() == 1 && stack.broadcaster.Subscribers() == 1
	}, time.Second, 5*time.Millisecond)

	_, err = stack.ctrl.Store(context.Background(), "Ran 10k in the park")
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event handlers.EventMessage
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "memory.stored", event.Type)
}

func TestRouter_WebSocketDisabled(t *testing.T) {
	stack := createTestHandlers(t)
	cfg := testConfig()
	cfg.Server.WebSocket.Enabled = false
	router := NewRouter(cfg, logger.Discard(), stack.handlers)

	req := httptest.NewRequest(http.MethodGet, "/ws/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %v, want %v", w.Code, http.StatusNotFound)
	}
}
