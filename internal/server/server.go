// Package server provides the HTTP server and routing for the market data API.
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

	"github.com/aristath/backtester/internal/config"
	"github.com/aristath/backtester/internal/di"
	backtesthandlers "github.com/aristath/backtester/internal/modules/backtest/handlers"
	stockshandlers "github.com/aristath/backtester/internal/modules/stocks/handlers"
)

const (
	serviceName = "backtester"
	version     = "1.0.0"

	// writeMargin leaves room to flush an error body after the request deadline fires
	writeMargin = 10 * time.Second
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container // DI container with all services
	Port      int
	DevMode   bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	port           int
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		port:      cfg.Port,
		container: cfg.Container,
	}

	s.systemHandlers = newSystemHandlersFromContainer(cfg.Log, cfg.Config, cfg.Container)

	requestTimeout := config.DefaultRequestTimeout
	if cfg.Config != nil && cfg.Config.RequestTimeout > 0 {
		requestTimeout = cfg.Config.RequestTimeout
	}

	s.setupMiddleware(cfg.DevMode, requestTimeout)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + writeMargin,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool, requestTimeout time.Duration) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(requestTimeout))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", backtesthandlers.RunIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/system", func(r chi.Router) {
		r.Get("/status", s.systemHandlers.HandleSystemStatus)
	})

	if s.container == nil {
		return
	}

	if s.container.BacktestEngine != nil {
		backtesthandlers.NewHandler(s.container.BacktestEngine, s.log).RegisterRoutes(s.router)
	}
	if s.container.StockService != nil {
		stockshandlers.NewHandler(s.container.StockService, s.log).RegisterRoutes(s.router)
	}
}

// Handler exposes the configured router
func (s *Server) Handler() http.Handler {
	return s.router
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
