package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/repositories"
	"nodeguard-platform/internal/services"
	"nodeguard-platform/internal/tenant"
)

// IncidentHandler handles security incident endpoints
type IncidentHandler struct {
	logger     *logger.Logger
	incidents  repositories.IncidentRepository
	auditLogs  repositories.AuditLogRepository
	validation *models.ValidationService
	authzSvc   services.AuthorizationService
}

// NewIncidentHandler creates a new incident handler
func NewIncidentHandler(
	log *logger.Logger,
	incidents repositories.IncidentRepository,
	auditLogs repositories.AuditLogRepository,
	validation *models.ValidationService,
	authzSvc services.AuthorizationService,
) *IncidentHandler {
	return &IncidentHandler{
		logger:     log,
		incidents:  incidents,
		auditLogs:  auditLogs,
		validation: validation,
		authzSvc:   authzSvc,
	}
}

// RegisterRoutes registers incident routes
func (h *IncidentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/incidents", h.CreateIncident).Methods("POST")
	router.HandleFunc("/api/v1/incidents", h.ListIncidents).Methods("GET")
	router.HandleFunc("/api/v1/incidents/stats", h.GetIncidentStats).Methods("GET")
	router.HandleFunc("/api/v1/incidents/{id}", h.GetIncident).Methods("GET")
	router.HandleFunc("/api/v1/incidents/{id}", h.UpdateIncident).Methods("PUT")
	router.HandleFunc("/api/v1/incidents/{id}", h.DeleteIncident).Methods("DELETE")
}

func (h *IncidentHandler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireRole(w, r, models.RoleAnalyst)
	if !ok {
		return
	}

	var incident models.Incident
	if err := json.NewDecoder(r.Body).Decode(&incident); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if incident.Status == "" {
		incident.Status = models.IncidentStatusOpen
	}

	if err := h.validation.ValidateStruct(&incident); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.incidents.Create(r.Context(), tc, &incident); err != nil {
		h.writeRepositoryError(w, err, "Failed to create incident")
		return
	}

	h.audit(r.Context(), tc, models.AuditActionCreate, incident.ID)
	writeJSONResponse(w, http.StatusCreated, incident)
}

func (h *IncidentHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	if severity := r.URL.Query().Get("severity"); severity != "" {
		incidents, err := h.incidents.GetBySeverity(r.Context(), tc, severity)
		if err != nil {
			h.writeRepositoryError(w, err, "Failed to list incidents")
			return
		}
		writeJSONResponse(w, http.StatusOK, incidents)
		return
	}

	limit, offset := paginationParams(r, 50, 500)
	incidents, err := h.incidents.GetAll(r.Context(), tc, limit, offset)
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to list incidents")
		return
	}

	writeJSONResponse(w, http.StatusOK, incidents)
}

// GetIncidentStats returns per-status incident counts for the tenant
func (h *IncidentHandler) GetIncidentStats(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	stats := make(map[string]int64)
	for _, status := range []string{
		models.IncidentStatusOpen,
		models.IncidentStatusInvestigating,
		models.IncidentStatusResolved,
		models.IncidentStatusClosed,
	} {
		count, err := h.incidents.CountByStatus(r.Context(), tc, status)
		if err != nil {
			h.writeRepositoryError(w, err, "Failed to count incidents")
			return
		}
		stats[status] = count
	}

	writeJSONResponse(w, http.StatusOK, stats)
}

func (h *IncidentHandler) GetIncident(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	incident, err := h.incidents.GetByID(r.Context(), tc, mux.Vars(r)["id"])
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to get incident")
		return
	}

	writeJSONResponse(w, http.StatusOK, incident)
}

func (h *IncidentHandler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireRole(w, r, models.RoleAnalyst)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	existing, err := h.incidents.GetByID(r.Context(), tc, id)
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to get incident")
		return
	}

	var incident models.Incident
	if err := json.NewDecoder(r.Body).Decode(&incident); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	incident.ID = existing.ID
	incident.TenantID = existing.TenantID
	incident.CreatedAt = existing.CreatedAt
	incident.CreatedBy = existing.CreatedBy

	if err := h.validation.ValidateStruct(&incident); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.incidents.Update(r.Context(), tc, &incident); err != nil {
		h.writeRepositoryError(w, err, "Failed to update incident")
		return
	}

	h.audit(r.Context(), tc, models.AuditActionUpdate, incident.ID)
	writeJSONResponse(w, http.StatusOK, incident)
}

func (h *IncidentHandler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.incidents.Delete(r.Context(), tc, id); err != nil {
		h.writeRepositoryError(w, err, "Failed to delete incident")
		return
	}

	h.audit(r.Context(), tc, models.AuditActionDelete, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *IncidentHandler) requireTenant(w http.ResponseWriter, r *http.Request) (*tenant.Context, bool) {
	tc, err := tenant.Require(r.Context())
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Tenant context required", nil)
		return nil, false
	}
	return tc, true
}

func (h *IncidentHandler) requireRole(w http.ResponseWriter, r *http.Request, role string) (*tenant.Context, bool) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return nil, false
	}
	if err := h.authzSvc.RequireRole(tc, role); err != nil {
		writeErrorResponse(h.logger, w, http.StatusForbidden, "Insufficient privileges", nil)
		return nil, false
	}
	return tc, true
}

func (h *IncidentHandler) writeRepositoryError(w http.ResponseWriter, err error, message string) {
	switch {
	case repositories.IsNotFound(err):
		writeErrorResponse(h.logger, w, http.StatusNotFound, "Incident not found", nil)
	case errors.Is(err, repositories.ErrTenantMismatch):
		writeErrorResponse(h.logger, w, http.StatusForbidden, "Access denied", nil)
	case errors.Is(err, tenant.ErrNoTenantContext):
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Tenant context required", nil)
	default:
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, message, err)
	}
}

func (h *IncidentHandler) audit(ctx context.Context, tc *tenant.Context, action, resourceID string) {
	entry := &models.AuditLog{
		UserID:       tc.UserID,
		Action:       action,
		ResourceType: "incident",
		ResourceID:   resourceID,
	}
	if err := h.auditLogs.Create(ctx, tc, entry); err != nil {
		h.logger.WithTenant(tc.TenantID).WithError(err).Error("Failed to write audit log")
	}
}

// paginationParams parses limit/offset query parameters with bounds
func paginationParams(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
