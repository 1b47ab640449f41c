package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/personal-blog-backend/config"
)

// commentRatePerMinute is the per-client budget for new comments.
const commentRatePerMinute = 30

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(deps Deps, settings config.Settings) (Server, error) {
	address := fmt.Sprintf("0.0.0.0:%s", settings.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(deps, withSettings(settings), withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  settings.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: settings.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  settings.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	settings    config.Settings
	startupTime time.Time
}

func withSettings(s config.Settings) func(*router) {
	return func(r *router) {
		r.settings = s
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Deps, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	// RealIP only behind a trusted proxy
	if router.settings.TrustProxyHeaders {
		chiRouter.Use(middleware.RealIP)
	}
	chiRouter.Use(LogInternalServerErrors)

	// Initialize all handlers
	handlers := initializeHandlers(deps, router.startupTime)

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(router.settings.JWTSecret)

	// Apply CORS middleware
	acceptedOrigins := router.settings.AcceptedOrigins
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))
	chiRouter.Use(ColoredHTTPLoggingMiddleware)
	if deps.Metrics != nil {
		chiRouter.Use(metricsMiddleware(deps.Metrics))
	}

	if deps.MetricsHandler != nil {
		chiRouter.Handle("/metrics", deps.MetricsHandler)
	}

	// Setup all route types
	setupPublicRoutes(chiRouter, handlers, newClientLimiter("contact", router.settings.ContactRatePerMinute))
	setupAuthenticatedRoutes(chiRouter, handlers, authMiddleware, newClientLimiter("comment", commentRatePerMinute))

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
