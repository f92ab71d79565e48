// Package server exposes the journal over a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/advisor"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/risk"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	Repo    journal.Repository
	Advisor *advisor.Advisor
	Rules   risk.Policy
	DevMode bool

	// Now defaults to time.Now; the calendar uses it for the current month.
	Now func() time.Time
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	repo    journal.Repository
	advisor *advisor.Advisor
	rules   risk.Policy
	port    int
	now     func() time.Time

	critique advisory[critiqueResponse]
	patterns advisory[patternsResponse]
	search   advisory[advisor.SearchResult]
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		repo:    cfg.Repo,
		advisor: cfg.Advisor,
		rules:   cfg.Rules,
		port:    cfg.Port,
		now:     cfg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	// No write timeout: model calls are allowed to run as long as they take.
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/portfolios", func(r chi.Router) {
			r.Get("/", s.handleListPortfolios)
			r.Post("/", s.handleSavePortfolio)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPortfolio)
				r.Get("/trades", s.handleListTrades)
				r.Post("/trades", s.handleSaveTrade)
				r.Get("/stats", s.handleStats)
				r.Get("/calendar", s.handleCalendar)
				r.Post("/patterns", s.handlePatterns)
			})
		})

		r.Route("/trades/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetTrade)
			r.Delete("/", s.handleDeleteTrade)
			r.Get("/review", s.handleReviewTrade)
			r.Post("/critique", s.handleCritique)
		})

		r.Post("/market/search", s.handleSearch)
		r.Get("/advice", s.handleLatestAdvice)

		r.Get("/onboarding", s.handleGetOnboarding)
		r.Put("/onboarding", s.handleSetOnboarding)
	})
}

// ServeHTTP lets the server be mounted or tested without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
