package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"nodeguard-platform/internal/database"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db    *database.Connection
	redis *redis.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.Connection, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redisClient,
	}
}

// RegisterRoutes registers health endpoints
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealthCheck).Methods("GET")
	router.HandleFunc("/health/live", h.HandleLivenessProbe).Methods("GET")
	router.HandleFunc("/health/ready", h.HandleReadinessProbe).Methods("GET")
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// HandleHealthCheck handles the main health check endpoint
func (h *HealthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := map[string]string{
		"database": "healthy",
		"redis":    "healthy",
	}
	overallStatus := "healthy"

	if err := h.pingDatabase(ctx); err != nil {
		components["database"] = "unhealthy"
		overallStatus = "unhealthy"
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		components["redis"] = "unhealthy"
		overallStatus = "unhealthy"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Components: components,
	})
}

// HandleLivenessProbe handles Kubernetes liveness probe
func (h *HealthHandler) HandleLivenessProbe(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleReadinessProbe handles Kubernetes readiness probe
func (h *HealthHandler) HandleReadinessProbe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.pingDatabase(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Service Unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func (h *HealthHandler) pingDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
