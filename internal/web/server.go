// Package web provides the HTTP server and handlers for the translation
// catalog API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/termhub/termhub/internal/auth"
	"github.com/termhub/termhub/internal/catalog"
	"github.com/termhub/termhub/internal/exporter"
	"github.com/termhub/termhub/internal/importer"
	"github.com/termhub/termhub/internal/web/middleware"
)

// Pinger reports backing-store connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config carries the server's runtime knobs, resolved from the application
// configuration by the caller.
type Config struct {
	// MaxImportSize caps translation upload bodies, in bytes.
	MaxImportSize int64

	// RequestTimeout bounds whole-request handling.
	RequestTimeout time.Duration

	// Tokens maps bearer tokens to user ids for the session-authenticated
	// routes.
	Tokens map[string]string

	// TrustedProxies lists proxy CIDRs whose forwarding headers are honored.
	TrustedProxies []string
}

// Server is the HTTP server for the translation catalog.
type Server struct {
	store   catalog.Store
	engine  *importer.Engine
	exports *exporter.Aggregator
	gate    auth.Authorizer
	pinger  Pinger
	cfg     Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer assembles the router. pinger may be nil when no backing store
// connectivity check applies (tests).
func NewServer(store catalog.Store, engine *importer.Engine, exports *exporter.Aggregator, gate auth.Authorizer, pinger Pinger, cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		store:   store,
		engine:  engine,
		exports: exports,
		gate:    gate,
		pinger:  pinger,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Multi-export carries its own client credentials per entry, so it
		// sits outside the bearer-token group.
		r.Post("/multi-export", s.handleMultiExport)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(s.cfg.Tokens))

			r.Route("/projects/{projectID}", func(r chi.Router) {
				r.Get("/exports", s.handleExport)
				r.Post("/imports", s.handleImport)

				r.Get("/translations", s.handleListProjectLocales)
				r.Post("/translations", s.handleAddProjectLocale)
				r.Get("/translations/{localeCode}", s.handleListTranslations)
				r.Delete("/translations/{localeCode}", s.handleDeleteProjectLocale)

				r.Post("/translate", s.handleTranslate)
				r.Post("/multi-translate", s.handleMultiTranslate)
				r.Get("/dict", s.handleDict)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string, readTimeout, writeTimeout, idleTimeout time.Duration) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			slog.Error("health: store unreachable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
