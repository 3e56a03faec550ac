// Package api exposes the room controller over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/zrctl/internal/cache"
	"github.com/zrctl/internal/config"
	"github.com/zrctl/internal/logging"
	"github.com/zrctl/internal/monitor"
	"github.com/zrctl/internal/zoomrooms"
)

// Server represents the API server
type Server struct {
	session *zoomrooms.Session
	poller  *monitor.Poller
	cache   cache.Cache
	config  config.APIConfig
	logger  *slog.Logger
	started time.Time

	httpServer *http.Server
}

// New creates a new API server. c may be nil when caching is disabled.
func New(session *zoomrooms.Session, poller *monitor.Poller, c cache.Cache, cfg config.APIConfig) *Server {
	return &Server{
		session: session,
		poller:  poller,
		cache:   c,
		config:  cfg,
		logger:  logging.With("component", "api"),
		started: time.Now(),
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		// Dials can poll the device for several seconds.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", s.httpServer.Addr, "require_auth", s.config.RequireAuth)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("API server stopped")
	return nil
}
