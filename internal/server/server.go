// Package server exposes the chat assistant over HTTP: the message
// endpoint, failure-cache administration, health, and Prometheus
// metrics.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/toxichat/internal/core/domain"
	"github.com/vietddude/toxichat/internal/failover"
	"github.com/vietddude/toxichat/internal/tools"
)

// Engine is the model-invocation surface the server depends on.
type Engine interface {
	Invoke(ctx context.Context, req *domain.GenerateRequest) (*failover.Result, error)
	CacheSnapshot() failover.Snapshot
	ResetCache()
	ResetCacheKind(kind domain.FailureKind)
	Catalog() *domain.Catalog
	Primary() domain.ModelID
	Fallback() domain.ModelID
}

// Config holds HTTP server settings.
type Config struct {
	Port           int
	AllowedOrigins []string
	MaxToolRounds  int
}

// Server is the HTTP front of the assistant.
type Server struct {
	engine   Engine
	registry *tools.Registry
	cfg      Config
	server   *http.Server
}

// NewServer creates the server and registers all routes.
func NewServer(engine Engine, registry *tools.Registry, cfg Config) *Server {
	if cfg.MaxToolRounds == 0 {
		cfg.MaxToolRounds = 3
	}

	mux := http.NewServeMux()
	s := &Server{
		engine:   engine,
		registry: registry,
		cfg:      cfg,
		server: &http.Server{
			Addr: fmt.Sprintf(":%d", cfg.Port),
		},
	}

	mux.HandleFunc("POST /message", s.handleMessage)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /cache/status", s.handleCacheStatus)
	mux.HandleFunc("POST /cache/reset", s.handleCacheReset)
	mux.HandleFunc("POST /cache/clear/{kind}", s.handleCacheClear)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.server.Handler = withRequestLog(withCORS(cfg.AllowedOrigins, mux))
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
