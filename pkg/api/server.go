package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coremem/coremem/config"
	"github.com/coremem/coremem/pkg/logger"
)

// Server is the lifecycle the command drives.
type Server interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// HTTPServer serves the CoreMem API.
type HTTPServer struct {
	cfg    config.HTTPConfig
	server *http.Server
	router chi.Router
	log    logger.Logger
}

// NewHTTPServer builds the router and an http.Server bound to
// server.host:server.port.
func NewHTTPServer(cfg *config.Config, log logger.Logger, handlers *Handlers) *HTTPServer {
	router := NewRouter(cfg, log, handlers)
	httpCfg := cfg.Server.HTTP

	return &HTTPServer{
		cfg:    httpCfg,
		router: router,
		log:    log,
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:           router,
			ReadTimeout:       httpCfg.ReadTimeout,
			ReadHeaderTimeout: httpCfg.ReadTimeout,
			WriteTimeout:      httpCfg.WriteTimeout,
			IdleTimeout:       httpCfg.IdleTimeout,
			MaxHeaderBytes:    httpCfg.MaxHeaderBytes,
		},
	}
}

// Start listens on the configured address and serves until Shutdown.
// A clean shutdown returns nil.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener.
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.log.Info("HTTP server listening",
		"addr", ln.Addr().String(),
		"request_timeout", s.cfg.RequestTimeout,
		"write_timeout", s.cfg.WriteTimeout,
	)
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}
	return nil
}

// Handler returns the root handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Shutdown drains in-flight requests. Hijacked websocket connections are
// not tracked by http.Server and are closed by the websocket handler.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}
