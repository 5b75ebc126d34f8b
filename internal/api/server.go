package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/topology-publisher/internal/audit"
	"github.com/nerrad567/topology-publisher/internal/infrastructure/config"
	"github.com/nerrad567/topology-publisher/internal/publisher"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
	readHeaderTimeout       = 5 * time.Second
)

// Logger is the logging surface used by the server.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// SessionStatus reports the publisher session health.
type SessionStatus interface {
	State() publisher.State
	TopicName() string
}

// Deps holds the dependencies required by the server.
type Deps struct {
	Config  config.HTTPConfig
	Logger  Logger
	Session SessionStatus

	// Metrics serves /metrics. Optional.
	Metrics http.Handler

	// Audit backs /api/v1/audit. Optional.
	Audit audit.Repository

	Version string
}

// Server is the operational HTTP server.
type Server struct {
	cfg     config.HTTPConfig
	logger  Logger
	session SessionStatus
	metrics http.Handler
	audit   audit.Repository
	version string

	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
//
// Parameters:
//   - deps: All required dependencies (Logger and Session must be non-nil;
//     Metrics and Audit are optional and disable their routes when nil)
//
// Returns:
//   - *Server: Configured server, not yet listening (call Start)
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	return &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		session: deps.Session,
		metrics: deps.Metrics,
		audit:   deps.Audit,
		version: deps.Version,
	}, nil
}

// Start binds the listener and serves in the background. Bind errors are
// returned; later serve errors are logged.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info("http server starting", "address", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
