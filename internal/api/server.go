// Package api exposes the session and turn surface over HTTP for chat
// frontends: dataset upload, turn submission, profile retrieval, the turn
// audit list, and chart artifact download.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapchat/internal/session"
	"github.com/leapstack-labs/leapchat/pkg/core"
)

// Server is the HTTP API server.
type Server struct {
	manager *session.Manager
	store   core.Store
	port    int
	logger  *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Manager *session.Manager
	Store   core.Store
	Port    int
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// NewServer creates an API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		manager: cfg.Manager,
		store:   cfg.Store,
		port:    cfg.Port,
		logger:  logger,
	}
}

// Routes builds the HTTP handler. Exposed separately from Serve so tests
// can drive it with httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
	)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/turns", s.handlePostTurn)
			r.Get("/turns", s.handleListTurns)
			r.Get("/turns/{seq}/chart", s.handleGetChart)
		})
	})

	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		s.logger.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
