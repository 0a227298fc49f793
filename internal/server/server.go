// Package server exposes the article generation operations over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"aigency/internal/config"
	"aigency/internal/logger"
	"aigency/internal/persistence"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	articles   ArticleService
	grammar    GrammarChecker                // Optional
	repo       persistence.ArticleRepository // Optional
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance. grammar and repo may be nil; their routes
// then answer 503.
func New(articles ArticleService, grammar GrammarChecker, repo persistence.ArticleRepository, cfg config.Server) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		articles: articles,
		grammar:  grammar,
		repo:     repo,
		config:   cfg,
		log:      logger.With("component", "server"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  config.Duration(cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: config.Duration(cfg.WriteTimeout, 15*time.Minute),
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Bound concurrent requests
	if s.config.MaxConcurrent > 0 {
		s.router.Use(middleware.Throttle(s.config.MaxConcurrent))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/article", func(r chi.Router) {
		r.Get("/topics", s.handleTopics)
		r.Post("/generate", s.handleGenerate)
		r.Post("/headlines", s.handleHeadlines)
		r.Post("/perex", s.handlePerex)
		r.Post("/engaging-text", s.handleEngagingText)
		r.Post("/body", s.handleBody)
		r.Post("/tags", s.handleTags)
		r.Post("/graph", s.handleGraph)
		r.Post("/save", s.handleSave)
	})

	s.router.Route("/articles", func(r chi.Router) {
		r.Get("/", s.handleListArticles)
		r.Get("/{id}", s.handleGetArticle)
		r.Delete("/{id}", s.handleDeleteArticle)
	})

	s.router.Post("/check-grammar", s.handleCheckGrammar)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
