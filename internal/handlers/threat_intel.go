package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/repositories"
	"nodeguard-platform/internal/services"
	"nodeguard-platform/internal/tenant"
)

// ThreatIntelHandler handles threat indicator endpoints
type ThreatIntelHandler struct {
	logger     *logger.Logger
	indicators repositories.ThreatIndicatorRepository
	auditLogs  repositories.AuditLogRepository
	validation *models.ValidationService
	authzSvc   services.AuthorizationService
}

// NewThreatIntelHandler creates a new threat intel handler
func NewThreatIntelHandler(
	log *logger.Logger,
	indicators repositories.ThreatIndicatorRepository,
	auditLogs repositories.AuditLogRepository,
	validation *models.ValidationService,
	authzSvc services.AuthorizationService,
) *ThreatIntelHandler {
	return &ThreatIntelHandler{
		logger:     log,
		indicators: indicators,
		auditLogs:  auditLogs,
		validation: validation,
		authzSvc:   authzSvc,
	}
}

// RegisterRoutes registers threat intel routes
func (h *ThreatIntelHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/threat-intel/indicators", h.CreateIndicator).Methods("POST")
	router.HandleFunc("/api/v1/threat-intel/indicators", h.ListIndicators).Methods("GET")
	router.HandleFunc("/api/v1/threat-intel/indicators/{id}", h.GetIndicator).Methods("GET")
	router.HandleFunc("/api/v1/threat-intel/indicators/{id}", h.UpdateIndicator).Methods("PUT")
	router.HandleFunc("/api/v1/threat-intel/indicators/{id}", h.DeleteIndicator).Methods("DELETE")
	router.HandleFunc("/api/v1/threat-intel/lookup", h.LookupIndicator).Methods("GET")
}

func (h *ThreatIntelHandler) CreateIndicator(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireRole(w, r, models.RoleAnalyst)
	if !ok {
		return
	}

	var indicator models.ThreatIndicator
	if err := json.NewDecoder(r.Body).Decode(&indicator); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validation.ValidateStruct(&indicator); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.indicators.Create(r.Context(), tc, &indicator); err != nil {
		h.writeRepositoryError(w, err, "Failed to create indicator")
		return
	}

	h.audit(r.Context(), tc, models.AuditActionCreate, indicator.ID)
	writeJSONResponse(w, http.StatusCreated, indicator)
}

func (h *ThreatIntelHandler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	if indicatorType := r.URL.Query().Get("type"); indicatorType != "" {
		indicators, err := h.indicators.GetByType(r.Context(), tc, indicatorType)
		if err != nil {
			h.writeRepositoryError(w, err, "Failed to list indicators")
			return
		}
		writeJSONResponse(w, http.StatusOK, indicators)
		return
	}

	limit, offset := paginationParams(r, 100, 1000)
	indicators, err := h.indicators.GetAll(r.Context(), tc, limit, offset)
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to list indicators")
		return
	}

	writeJSONResponse(w, http.StatusOK, indicators)
}

// LookupIndicator checks whether a value is a known IOC for this tenant
func (h *ThreatIntelHandler) LookupIndicator(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	value := r.URL.Query().Get("value")
	if value == "" {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Query parameter 'value' is required", nil)
		return
	}

	indicators, err := h.indicators.FindByValue(r.Context(), tc, value)
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to look up indicator")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"value":      value,
		"known":      len(indicators) > 0,
		"indicators": indicators,
	})
}

func (h *ThreatIntelHandler) GetIndicator(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	indicator, err := h.indicators.GetByID(r.Context(), tc, mux.Vars(r)["id"])
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to get indicator")
		return
	}

	writeJSONResponse(w, http.StatusOK, indicator)
}

func (h *ThreatIntelHandler) UpdateIndicator(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireRole(w, r, models.RoleAnalyst)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	existing, err := h.indicators.GetByID(r.Context(), tc, id)
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to get indicator")
		return
	}

	var indicator models.ThreatIndicator
	if err := json.NewDecoder(r.Body).Decode(&indicator); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	indicator.ID = existing.ID
	indicator.TenantID = existing.TenantID
	indicator.CreatedAt = existing.CreatedAt
	indicator.CreatedBy = existing.CreatedBy

	if err := h.validation.ValidateStruct(&indicator); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.indicators.Update(r.Context(), tc, &indicator); err != nil {
		h.writeRepositoryError(w, err, "Failed to update indicator")
		return
	}

	h.audit(r.Context(), tc, models.AuditActionUpdate, indicator.ID)
	writeJSONResponse(w, http.StatusOK, indicator)
}

func (h *ThreatIntelHandler) DeleteIndicator(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.indicators.Delete(r.Context(), tc, id); err != nil {
		h.writeRepositoryError(w, err, "Failed to delete indicator")
		return
	}

	h.audit(r.Context(), tc, models.AuditActionDelete, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ThreatIntelHandler) requireTenant(w http.ResponseWriter, r *http.Request) (*tenant.Context, bool) {
	tc, err := tenant.Require(r.Context())
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Tenant context required", nil)
		return nil, false
	}
	return tc, true
}

func (h *ThreatIntelHandler) requireRole(w http.ResponseWriter, r *http.Request, role string) (*tenant.Context, bool) {
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

func (h *ThreatIntelHandler) writeRepositoryError(w http.ResponseWriter, err error, message string) {
	switch {
	case repositories.IsNotFound(err):
		writeErrorResponse(h.logger, w, http.StatusNotFound, "Indicator not found", nil)
	case errors.Is(err, repositories.ErrTenantMismatch):
		writeErrorResponse(h.logger, w, http.StatusForbidden, "Access denied", nil)
	case errors.Is(err, tenant.ErrNoTenantContext):
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Tenant context required", nil)
	default:
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, message, err)
	}
}

func (h *ThreatIntelHandler) audit(ctx context.Context, tc *tenant.Context, action, resourceID string) {
	entry := &models.AuditLog{
		UserID:       tc.UserID,
		Action:       action,
		ResourceType: "threat_indicator",
		ResourceID:   resourceID,
	}
	if err := h.auditLogs.Create(ctx, tc, entry); err != nil {
		h.logger.WithTenant(tc.TenantID).WithError(err).Error("Failed to write audit log")
	}
}
