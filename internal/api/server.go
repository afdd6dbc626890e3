// Package api exposes the template engine over HTTP. The stateless
// endpoints (parse, generate, diff) operate on request bodies only; the
// template endpoints persist to the store and support revision history and
// preview delivery.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nicka06/monketer/internal/config"
	"github.com/nicka06/monketer/internal/generator"
	"github.com/nicka06/monketer/internal/metrics"
	"github.com/nicka06/monketer/internal/parser"
	"github.com/nicka06/monketer/internal/store"
)

// Sender delivers a rendered preview to real mailboxes. Nil when preview
// delivery is disabled in config.
type Sender interface {
	SendPreview(ctx context.Context, to []string, subject, html string) error
}

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	store      *store.Store
	parser     *parser.Parser
	generator  *generator.Generator
	sender     Sender
	config     *config.APIConfig
	logger     *slog.Logger
	startTime  time.Time
}

// NewServer creates a new API server
func NewServer(st *store.Store, p *parser.Parser, g *generator.Generator, sender Sender, cfg *config.APIConfig, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		store:     st,
		parser:    p,
		generator: g,
		sender:    sender,
		config:    cfg,
		logger:    logger,
		startTime: time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metrics.HTTPMiddleware)
	s.router.Use(chimiddleware.Recoverer)

	// Health check (no auth required)
	s.router.Get("/health", s.handleHealth)

	// API v1 routes (auth required)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		// Stateless engine operations
		r.Post("/parse", s.handleParse)
		r.Post("/generate", s.handleGenerate)
		r.Post("/diff", s.handleDiff)

		// Stored templates
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Post("/", s.handleCreateTemplate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTemplate)
				r.Put("/", s.handleUpdateTemplate)
				r.Delete("/", s.handleDeleteTemplate)
				r.Get("/html", s.handleRenderTemplate)
				r.Get("/versions", s.handleListVersions)
				r.Get("/versions/{revision}", s.handleGetVersion)
				r.Get("/versions/{revision}/diff", s.handleVersionDiff)
				r.Post("/send", s.handleSendPreview)
			})
		})
	})
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddr,
		Handler:        s.router,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
	}

	s.logger.Info("starting HTTP API server", "addr", s.config.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
