// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coremem/coremem/pkg/api/response"
	"github.com/coremem/coremem/pkg/version"
)

const pingTimeout = 2 * time.Second

// Pinger checks that the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelInfo describes the configured language model.
type ModelInfo interface {
	Name() string
	Model() string
}

// BreakerStater reports a circuit breaker state.
type BreakerStater interface {
	State() string
}

// HealthDeps are the components inspected by the health endpoints. Breaker
// and Sizes are optional.
type HealthDeps struct {
	Storage Pinger
	Model   ModelInfo
	Breaker BreakerStater
	Sizes   func() (memories, interactions int)
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	deps    HealthDeps
	ready   atomic.Bool
	started time.Time
}

// NewHealthHandler creates a new health handler. It reports not ready until
// SetReady is called.
func NewHealthHandler(deps HealthDeps) *HealthHandler {
	return &HealthHandler{deps: deps, started: time.Now()}
}

// SetReady marks whether the session state has been loaded.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Health handles the /health endpoint (liveness probe).
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready handles the /ready endpoint (readiness probe).
// @Summary Readiness probe
// @Description Ready once the session state is loaded and storage answers a ping
// @Tags health
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 503 {object} map[string]bool
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready.Load() && h.pingStorage(r.Context()) == nil {
		response.JSON(w, http.StatusOK, map[string]bool{
			"ready": true,
		})
		return
	}
	response.JSON(w, http.StatusServiceUnavailable, map[string]bool{
		"ready": false,
	})
}

type storageStatus struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type modelStatus struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Breaker  string `json:"breaker,omitempty"`
}

type statusResponse struct {
	Status       string            `json:"status"`
	Ready        bool              `json:"ready"`
	Uptime       string            `json:"uptime"`
	Version      map[string]string `json:"version"`
	Storage      storageStatus     `json:"storage"`
	Model        *modelStatus      `json:"model,omitempty"`
	Memories     *int              `json:"memories,omitempty"`
	Interactions *int              `json:"interactions,omitempty"`
}

// Status handles the /status endpoint (detailed status).
// @Summary Detailed status
// @Description Version, uptime, storage and model health, collection sizes
// @Tags health
// @Produce json
// @Success 200 {object} statusResponse
// @Router /status [get]
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:  "ok",
		Ready:   h.ready.Load(),
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Version: version.Info(),
		Storage: storageStatus{Healthy: true},
	}

	if err := h.pingStorage(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Storage = storageStatus{Healthy: false, Error: err.Error()}
	}

	if h.deps.Model != nil {
		resp.Model = &modelStatus{Provider: h.deps.Model.Name(), Model: h.deps.Model.Model()}
		if h.deps.Breaker != nil {
			resp.Model.Breaker = h.deps.Breaker.State()
			if resp.Model.Breaker == "open" {
				resp.Status = "degraded"
			}
		}
	}

	if h.deps.Sizes != nil {
		m, i := h.deps.Sizes()
		resp.Memories, resp.Interactions = &m, &i
	}

	response.JSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) pingStorage(ctx context.Context) error {
	if h.deps.Storage == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.deps.Storage.Ping(ctx)
}
