// Package api exposes the comparison service over HTTP.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tradestats/app"
	"tradestats/internal"
	"tradestats/internal/config"
)

// maxBodyBytes caps request bodies; inline samples of a few hundred thousand
// values fit comfortably.
const maxBodyBytes = 16 << 20

// Server routes comparison requests to a ComparisonService.
type Server struct {
	router  *chi.Mux
	service *app.ComparisonService
	logger  *internal.Logger
}

// NewServer creates the router and registers every route.
func NewServer(service *app.ComparisonService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewDiscardLogger()
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		logger:  logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.logger.StdLogger(),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1/comparisons", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/", s.handleCompare)
		r.Post("/batch", s.handleCompareBatch)
		r.Post("/report", s.handleReport)
		r.Post("/plot", s.handlePlot)
	})
}

// ServeHTTP lets the server be mounted or tested directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps the router with the configured address and timeouts.
func (s *Server) HTTPServer(cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     s.logger.StdLogger(),
	}
}
