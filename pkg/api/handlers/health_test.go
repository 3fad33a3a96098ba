package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubModel struct{}

func (stubModel) Name() string  { return "fake" }
func (stubModel) Model() string { return "demo" }

type stubBreaker string

func (b stubBreaker) State() string { return string(b) }

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(HealthDeps{Storage: stubPinger{err: errors.New("down")}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Health() status = %v, want %v", w.Code, http.StatusOK)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		pingErr    error
		wantStatus int
	}{
		{"not loaded", false, nil, http.StatusServiceUnavailable},
		{"loaded", true, nil, http.StatusOK},
		{"storage down", true, errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(HealthDeps{Storage: stubPinger{err: tt.pingErr}})
			handler.SetReady(tt.ready)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()

			handler.Ready(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Ready() status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestHealthHandler_Status(t *testing.T) {
	handler := NewHealthHandler(HealthDeps{
		Storage: stubPinger{},
		Model:   stubModel{},
		Breaker: stubBreaker("closed"),
		Sizes:   func() (int, int) { return 4, 2 },
	})
	handler.SetReady(true)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()

	handler.Status(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status() status = %v, want %v", w.Code, http.StatusOK)
	}

	var resp statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}

	if resp.Status != "ok" || !resp.Ready {
		t.Errorf("status = %q ready = %v, want ok/true", resp.Status, resp.Ready)
	}
	if resp.Model == nil || resp.Model.Provider != "fake" || resp.Model.Model != "demo" || resp.Model.Breaker != "closed" {
		t.Errorf("unexpected model status: %+v", resp.Model)
	}
	if resp.Memories == nil || *resp.Memories != 4 {
		t.Errorf("memories = %v, want 4", resp.Memories)
	}
	if resp.Version["version"] == "" {
		t.Error("expected version info")
	}
}

func TestHealthHandler_StatusDegraded(t *testing.T) {
	handler := NewHealthHandler(HealthDeps{
		Storage: stubPinger{err: errors.New("disk gone")},
		Model:   stubModel{},
		Breaker: stubBreaker("open"),
	})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()

	handler.Status(w, req)

	var resp statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if resp.Storage.Healthy || resp.Storage.Error != "disk gone" {
		t.Errorf("unexpected storage status: %+v", resp.Storage)
	}
}
