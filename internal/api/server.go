// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package api serves a read-only view of the verdict cache and the packet
// counters. It never changes decisions.
package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/sphinx/internal/logging"
	"grimm.is/sphinx/internal/verdict"
)

// ServerConfig holds HTTP server timeouts.
type ServerConfig struct {
	ReadHeaderTimeout time.Duration // Slowloris prevention
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// DefaultServerConfig returns conservative server timeouts.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
}

// VerdictStore is the read side of the verdict cache.
type VerdictStore interface {
	Entries() []verdict.Entry
	Len() int
}

// PacketCounter reports how many packets the queue delivered.
type PacketCounter interface {
	Seen() uint64
}

// ServerOptions holds dependencies for the API server.
type ServerOptions struct {
	Verdicts VerdictStore
	Packets  PacketCounter
	Gatherer prometheus.Gatherer // optional; /metrics is not served without it
	Logger   *logging.Logger
}

// Server handles API requests.
type Server struct {
	verdicts  VerdictStore
	packets   PacketCounter
	gatherer  prometheus.Gatherer
	logger    *logging.Logger
	startTime time.Time
	router    *mux.Router

	mu     sync.Mutex
	http   *http.Server
	closed bool
}

// NewServer creates a new API server with the provided options.
func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.WithComponent("api")
	}

	s := &Server{
		verdicts:  opts.Verdicts,
		packets:   opts.Packets,
		gatherer:  opts.Gatherer,
		logger:    logger,
		startTime: time.Now(),
		router:    mux.NewRouter(),
	}
	s.RegisterRoutes(s.router)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until Shutdown is called. After Shutdown
// it closes ln and returns nil without serving.
func (s *Server) Serve(ln net.Listener) error {
	cfg := DefaultServerConfig()
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ln.Close()
	}
	s.http = srv
	s.mu.Unlock()

	s.logger.Info("API server starting", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown gracefully stops the server. A Serve that has not started yet
// will not start.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
