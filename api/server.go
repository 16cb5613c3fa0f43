package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// DefaultMaxLimit caps the limit query parameter.
	DefaultMaxLimit = 100

	// DefaultMaxNProbe caps the nprobe query parameter.
	DefaultMaxNProbe = 1024

	// DefaultRequestTimeout bounds each search request.
	DefaultRequestTimeout = 15 * time.Second

	healthTimeout   = 2 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Backend answers searches and reports store health. *articlesearch.Engine satisfies it.
type Backend interface {
	Search(ctx context.Context, query string, nprobe, limit int) ([]*core.Document, error)
	Health(ctx context.Context) error
}

// Server is the HTTP front end of the search pipeline.
type Server struct {
	backend        Backend
	maxLimit       int
	maxNProbe      int
	requestTimeout time.Duration
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithLimits caps the nprobe and limit a client may request.
func WithLimits(maxNProbe, maxLimit int) Option {
	return func(s *Server) error {
		if maxNProbe < 1 || maxLimit < 1 {
			return fmt.Errorf("limits must be positive, got nprobe %d and limit %d", maxNProbe, maxLimit)
		}
		s.maxNProbe = maxNProbe
		s.maxLimit = maxLimit
		return nil
	}
}

// WithRequestTimeout bounds each search request.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout <= 0 {
			return fmt.Errorf("request timeout must be positive, got %s", timeout)
		}
		s.requestTimeout = timeout
		return nil
	}
}

// NewServer creates a new server.
func NewServer(backend Backend, opts ...Option) (*Server, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}

	s := &Server{
		backend:        backend,
		maxLimit:       DefaultMaxLimit,
		maxNProbe:      DefaultMaxNProbe,
		requestTimeout: DefaultRequestTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "api")

	return s, nil
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/search", s.handleSearch)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.requestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server starting", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}
