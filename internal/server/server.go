package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nodeguard-platform/internal/config"
	"nodeguard-platform/internal/handlers"
	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/middleware"
)

var httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "nodeguard_http_request_duration_seconds",
	Help:    "HTTP request latency, by method and status.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "status"})

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *logger.Logger
	router     *mux.Router
	httpServer *http.Server

	healthHandler      *handlers.HealthHandler
	authHandler        *handlers.AuthHandler
	tenantHandler      *handlers.TenantHandler
	workflowHandler    *handlers.WorkflowHandler
	incidentHandler    *handlers.IncidentHandler
	threatIntelHandler *handlers.ThreatIntelHandler

	authMiddleware   *middleware.AuthenticationMiddleware
	tenantMiddleware *middleware.TenantMiddleware
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	log *logger.Logger,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	tenantHandler *handlers.TenantHandler,
	workflowHandler *handlers.WorkflowHandler,
	incidentHandler *handlers.IncidentHandler,
	threatIntelHandler *handlers.ThreatIntelHandler,
	authMiddleware *middleware.AuthenticationMiddleware,
	tenantMiddleware *middleware.TenantMiddleware,
) *Server {
	router := mux.NewRouter()

	server := &Server{
		config:             cfg,
		logger:             log,
		router:             router,
		healthHandler:      healthHandler,
		authHandler:        authHandler,
		tenantHandler:      tenantHandler,
		workflowHandler:    workflowHandler,
		incidentHandler:    incidentHandler,
		threatIntelHandler: threatIntelHandler,
		authMiddleware:     authMiddleware,
		tenantMiddleware:   tenantMiddleware,
	}

	server.setupRoutes()
	server.setupHTTPServer()

	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.healthHandler.RegisterRoutes(s.router)

	// Metrics endpoint (no auth required for monitoring systems)
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes
	s.authHandler.RegisterRoutes(s.router)
	s.tenantHandler.RegisterRoutes(s.router)
	s.workflowHandler.RegisterRoutes(s.router)
	s.incidentHandler.RegisterRoutes(s.router)
	s.threatIntelHandler.RegisterRoutes(s.router)

	// Global middleware (order matters: identity before tenant resolution)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.authMiddleware.Authenticate)
	s.router.Use(s.tenantMiddleware.ResolveTenant)
}

// setupHTTPServer configures the HTTP server
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.config.Server.IdleTimeout) * time.Second,
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.config.Server.Port).Info("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.WithError(err).Error("HTTP server error")
		return err
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	s.logger.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		httpRequestDuration.WithLabelValues(r.Method, fmt.Sprintf("%d", wrapped.statusCode)).
			Observe(duration.Seconds())

		s.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": duration.Milliseconds(),
			"remote_addr": r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		}).Info("HTTP request")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
