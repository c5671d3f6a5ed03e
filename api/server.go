// Package api provides the HTTP REST API for the daily tool server.
//
// This package exposes the tool registry over plain HTTP, enabling
// programmatic access from agents and automation that don't speak MCP.
//
// Architecture:
//
//	┌─────────────────────────────────────────────────────────┐
//	│                      API Endpoints                      │
//	├─────────────────────────────────────────────────────────┤
//	│                                                         │
//	│  GET  /health            →  liveness probe              │
//	│  GET  /ready             →  readiness + circuit states  │
//	│  GET  /api/tools         →  tool catalog with schemas   │
//	│  POST /api/tools/{name}  →  invoke a tool               │
//	│                                                         │
//	└─────────────────────────────────────────────────────────┘
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (recovery, request ID, logging, rate limit)
//   - health.go: health check endpoints (/health, /ready)
//   - tools.go: tool catalog and invocation endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dailymcp/daily/internal/log"
	"github.com/dailymcp/daily/internal/tools"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8000"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response. A
	// dispatch can retry through several provider timeouts, so this sits
	// comfortably above the worst-case retry schedule.
	WriteTimeout = 60 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the tool-invocation REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	// Handlers
	health *HealthHandler
	tools  *ToolsHandler

	// Inbound per-client rate limit, requests per minute. Zero disables.
	ratePerMinute int
}

// NewServer creates a new HTTP server with all routes registered.
// The registry must be frozen before the server starts taking traffic.
func NewServer(registry *tools.Registry, dispatcher *tools.Dispatcher, ratePerMinute int, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	mux := http.NewServeMux()

	s := &Server{
		mux:           mux,
		logger:        logger,
		health:        NewHealthHandler(registry, dispatcher, logger),
		tools:         NewToolsHandler(registry, dispatcher, logger),
		ratePerMinute: ratePerMinute,
	}

	s.health.RegisterRoutes(mux)
	s.tools.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → request ID → logging → rate limit → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
		rateLimitMiddleware(s.ratePerMinute, s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
