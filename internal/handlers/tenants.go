package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/middleware"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/repositories"
	"nodeguard-platform/internal/services"
	"nodeguard-platform/internal/tenant"
)

// TenantHandler handles tenant endpoints. The admin surface is reachable
// without a tenant context and restricted to super admins.
type TenantHandler struct {
	logger     *logger.Logger
	tenants    repositories.TenantRepository
	cache      *services.CacheService
	validation *models.ValidationService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(
	log *logger.Logger,
	tenants repositories.TenantRepository,
	cache *services.CacheService,
	validation *models.ValidationService,
) *TenantHandler {
	return &TenantHandler{
		logger:     log,
		tenants:    tenants,
		cache:      cache,
		validation: validation,
	}
}

// RegisterRoutes registers tenant routes
func (h *TenantHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/tenants/current", h.GetCurrentTenant).Methods("GET")
	router.HandleFunc("/api/v1/tenants/admin", h.CreateTenant).Methods("POST")
	router.HandleFunc("/api/v1/tenants/admin/{id}", h.GetTenant).Methods("GET")
	router.HandleFunc("/api/v1/tenants/admin/{id}", h.UpdateTenant).Methods("PUT")
	router.HandleFunc("/api/v1/tenants/admin/{id}/suspend", h.SuspendTenant).Methods("POST")
	router.HandleFunc("/api/v1/tenants/admin/{id}/activate", h.ActivateTenant).Methods("POST")
}

// GetCurrentTenant returns the tenant resolved for this request
func (h *TenantHandler) GetCurrentTenant(w http.ResponseWriter, r *http.Request) {
	tc, err := tenant.Require(r.Context())
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Tenant context required", nil)
		return
	}

	t, err := h.tenants.GetTenantByID(r.Context(), tc.TenantID)
	if err != nil {
		if repositories.IsNotFound(err) {
			writeErrorResponse(h.logger, w, http.StatusNotFound, "Tenant not found", nil)
			return
		}
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to get tenant", err)
		return
	}

	writeJSONResponse(w, http.StatusOK, t)
}

func (h *TenantHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	if !h.requireSuperAdmin(w, r) {
		return
	}

	var t models.Tenant
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if t.Status == "" {
		t.Status = models.TenantStatusActive
	}

	if err := h.validation.ValidateStruct(&t); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.tenants.Create(r.Context(), &t); err != nil {
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to create tenant", err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, t)
}

func (h *TenantHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	if !h.requireSuperAdmin(w, r) {
		return
	}

	t, err := h.tenants.GetTenantByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if repositories.IsNotFound(err) {
			writeErrorResponse(h.logger, w, http.StatusNotFound, "Tenant not found", nil)
			return
		}
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to get tenant", err)
		return
	}

	writeJSONResponse(w, http.StatusOK, t)
}

func (h *TenantHandler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	if !h.requireSuperAdmin(w, r) {
		return
	}
	id := mux.Vars(r)["id"]

	existing, err := h.tenants.GetTenantByID(r.Context(), id)
	if err != nil {
		if repositories.IsNotFound(err) {
			writeErrorResponse(h.logger, w, http.StatusNotFound, "Tenant not found", nil)
			return
		}
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to get tenant", err)
		return
	}

	var t models.Tenant
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt

	if err := h.validation.ValidateStruct(&t); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.tenants.Update(r.Context(), &t); err != nil {
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to update tenant", err)
		return
	}

	h.invalidateCache(r.Context(), existing)
	writeJSONResponse(w, http.StatusOK, t)
}

func (h *TenantHandler) SuspendTenant(w http.ResponseWriter, r *http.Request) {
	h.setTenantStatus(w, r, models.TenantStatusSuspended)
}

func (h *TenantHandler) ActivateTenant(w http.ResponseWriter, r *http.Request) {
	h.setTenantStatus(w, r, models.TenantStatusActive)
}

func (h *TenantHandler) setTenantStatus(w http.ResponseWriter, r *http.Request, status string) {
	if !h.requireSuperAdmin(w, r) {
		return
	}
	id := mux.Vars(r)["id"]

	t, err := h.tenants.GetTenantByID(r.Context(), id)
	if err != nil {
		if repositories.IsNotFound(err) {
			writeErrorResponse(h.logger, w, http.StatusNotFound, "Tenant not found", nil)
			return
		}
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to get tenant", err)
		return
	}

	t.Status = status
	t.IsActive = status == models.TenantStatusActive
	if err := h.tenants.Update(r.Context(), t); err != nil {
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to update tenant", err)
		return
	}

	h.invalidateCache(r.Context(), t)
	h.logger.WithTenant(t.ID).WithField("status", status).Info("Tenant status changed")
	writeJSONResponse(w, http.StatusOK, t)
}

func (h *TenantHandler) requireSuperAdmin(w http.ResponseWriter, r *http.Request) bool {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Authentication required", nil)
		return false
	}
	if user.Role != models.RoleSuperAdmin {
		writeErrorResponse(h.logger, w, http.StatusForbidden, "Insufficient privileges", nil)
		return false
	}
	return true
}

// invalidateCache drops the resolver's cached lookups for a tenant. Stale
// entries would let a suspended tenant keep resolving until the TTL expires.
func (h *TenantHandler) invalidateCache(ctx context.Context, t *models.Tenant) {
	keys := []string{"tenant:id:" + t.ID}
	if t.Subdomain != "" {
		keys = append(keys, "tenant:subdomain:"+t.Subdomain)
	}
	if t.CustomDomain != "" {
		keys = append(keys, "tenant:domain:"+t.CustomDomain)
	}
	for _, key := range keys {
		if err := h.cache.Delete(ctx, key); err != nil {
			h.logger.WithTenant(t.ID).WithError(err).Warn("Failed to invalidate tenant cache")
		}
	}
}
