// Package api provides HTTP API server components.
package api

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/coremem/coremem/config"
	"github.com/coremem/coremem/pkg/api/handlers"
	"github.com/coremem/coremem/pkg/api/middleware"
	"github.com/coremem/coremem/pkg/logger"

	_ "github.com/coremem/coremem/docs/swagger" // Import generated docs
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	// Memory handles memory and statistics endpoints
	Memory *handlers.MemoryHandler

	// Search handles search and interaction log endpoints
	Search *handlers.SearchHandler

	// State handles session snapshot and reset endpoints
	State *handlers.StateHandler

	// Health handles health check endpoints
	Health *handlers.HealthHandler

	// WebSocket streams session events
	WebSocket *handlers.WebSocketHandler

	// Metrics is the optional metrics recorder
	Metrics middleware.MetricsRecorder
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, handlers *Handlers) chi.Router {
	r := chi.NewRouter()

	// Register global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	// Add metrics middleware if provided
	if handlers.Metrics != nil {
		r.Use(middleware.Metrics(handlers.Metrics))
	}

	r.Use(middleware.CORS(&cfg.Server.CORS))

	// Register routes
	RegisterRoutes(r, handlers, cfg)

	return r
}

// RegisterRoutes registers all API routes. The request timeout covers the
// versioned API only; the websocket connection is long-lived.
func RegisterRoutes(r chi.Router, handlers *Handlers, cfg *config.Config) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Server.HTTP.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.Server.HTTP.RequestTimeout))
		}

		// Memory routes
		if handlers.Memory != nil {
			r.Route("/memories", func(r chi.Router) {
				r.Post("/", handlers.Memory.StoreMemory)
				r.Get("/", handlers.Memory.ListMemories)
				r.Delete("/{id}", handlers.Memory.DeleteMemory)
			})
			r.Get("/stats", handlers.Memory.GetStats)
		}

		// Search routes
		if handlers.Search != nil {
			r.Post("/search", handlers.Search.Search)
			r.Get("/search", handlers.Search.LastResults)
			r.Get("/interactions", handlers.Search.ListInteractions)
		}

		// Session state routes
		if handlers.State != nil {
			r.Get("/state", handlers.State.GetState)
			r.Delete("/state", handlers.State.ResetState)
		}
	})

	// Health check routes (not versioned)
	if handlers.Health != nil {
		r.Get("/health", handlers.Health.Health)
		r.Get("/ready", handlers.Health.Ready)
		r.Get("/status", handlers.Health.Status)
	}

	if handlers.WebSocket != nil && cfg.Server.WebSocket.Enabled {
		r.Get("/ws/events", handlers.WebSocket.ServeHTTP)
	}

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
