// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the session controller and export pipeline as a
// JSON API for a browser page. Each browser gets its own session, keyed by a
// cookie or the X-Session-ID header.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/internal/export"
	"github.com/pdiddy/scholar-digest/internal/observability"
	"github.com/pdiddy/scholar-digest/internal/session"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// CredentialStore persists the summarization key set from the page.
type CredentialStore interface {
	Set(ctx context.Context, name, value string) error
	Clear(ctx context.Context, name string) error
}

// Deps are the collaborators the server wires into its handlers.
type Deps struct {
	Searcher    session.Searcher
	Pipeline    *export.Pipeline
	Credentials CredentialStore

	// Provider selects which key name PUT /api/credential writes.
	Provider types.SummaryProvider

	Selection     types.SelectionConfig
	DefaultFormat types.ExportFormat

	// SummaryTimeout bounds one summarization call. Summarized exports
	// extend their write deadline by this much per selected record.
	SummaryTimeout time.Duration

	Logger   zerolog.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
}

// Server is the HTTP API server.
type Server struct {
	cfg        types.ServerConfig
	deps       Deps
	sessions   *registry
	router     chi.Router
	httpServer *http.Server
	logger     zerolog.Logger
}

// New creates a server. Call Start to listen and Shutdown to stop.
func New(cfg types.ServerConfig, deps Deps) *Server {
	if deps.DefaultFormat == "" {
		deps.DefaultFormat = types.FormatDocx
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: observability.Component(deps.Logger, "http-server"),
	}

	s.sessions = newRegistry(cfg.SessionTTL, deps.Metrics, func() *session.Controller {
		return session.NewController(deps.Searcher, session.Options{
			PruneHidden: deps.Selection.PruneHidden,
			Logger:      observability.Component(deps.Logger, "session"),
			Metrics:     deps.Metrics,
		})
	})

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// corsOptions allows the configured origins to send the session cookie.
// A "*" origin cannot carry credentials, so such clients use SessionHeader.
func (s *Server) corsOptions() cors.Options {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = types.DefaultConfig().Server.AllowedOrigins
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID", SessionHeader, headerExportFailed},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(s.corsOptions()))

	r.Get("/healthz", s.healthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Post("/search", s.searchHandler)
		r.Get("/view", s.viewHandler)
		r.Post("/selection/toggle", s.toggleHandler)
		r.Get("/records/copy", s.copyHandler)
		r.Post("/export", s.exportHandler)
		r.Put("/credential", s.setCredentialHandler)
		r.Delete("/credential", s.clearCredentialHandler)
	})

	return r
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info().Str("address", ln.Addr().String()).Msg("HTTP server starting")
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and cancels in-flight searches.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.sessions.closeAll()
	return err
}

// SweepSessions expires idle sessions every interval until ctx is done.
func (s *Server) SweepSessions(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.sessions.sweep(); n > 0 {
				s.logger.Debug().Int("expired", n).Msg("expired idle sessions")
			}
		}
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.len(),
	})
}
