// Package server exposes a graph store over a JSON HTTP API: graph upload and
// download, consistency checks, compaction, and isomorphism searches.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/kektorgraph/internal/config"
	"github.com/sanonone/kektorgraph/pkg/store"
)

// Server holds the HTTP interface and the store it serves.
type Server struct {
	Store *store.Store

	cfg         config.Config
	httpServer  *http.Server
	taskManager *TaskManager
	authToken   string

	// base is cancelled on Shutdown and parents every background search.
	base   context.Context
	cancel context.CancelFunc
}

// NewServer builds the HTTP server for st. The store must already be open and
// stays owned by the caller.
func NewServer(st *store.Store, cfg config.Config) *Server {
	base, cancel := context.WithCancel(context.Background())
	s := &Server{
		Store:       st,
		cfg:         cfg,
		taskManager: NewTaskManager(),
		authToken:   cfg.Server.AuthToken,
		base:        base,
		cancel:      cancel,
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Recovery -> Logging -> Auth -> Mux
	var handler http.Handler = mux
	handler = s.authMiddleware(handler)
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           rootMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run listens on the configured address until Shutdown.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	slog.Info("HTTP server listening", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and cancels running background searches.
// It does not close the store.
func (s *Server) Shutdown() {
	slog.Info("Starting graceful shutdown of HTTP server")
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
}

// searchContext bounds one search by the configured match timeout.
func (s *Server) searchContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Match.Timeout > 0 {
		return context.WithTimeout(parent, s.cfg.Match.Timeout)
	}
	return context.WithCancel(parent)
}
