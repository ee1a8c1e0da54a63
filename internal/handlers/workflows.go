package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/repositories"
	"nodeguard-platform/internal/services"
	"nodeguard-platform/internal/tenant"
)

// WorkflowHandler handles workflow management endpoints
type WorkflowHandler struct {
	logger     *logger.Logger
	workflows  repositories.WorkflowRepository
	executions repositories.ExecutionRepository
	auditLogs  repositories.AuditLogRepository
	validation *models.ValidationService
	authzSvc   services.AuthorizationService
	executor   services.WorkflowExecutor
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(
	log *logger.Logger,
	workflows repositories.WorkflowRepository,
	executions repositories.ExecutionRepository,
	auditLogs repositories.AuditLogRepository,
	validation *models.ValidationService,
	authzSvc services.AuthorizationService,
	executor services.WorkflowExecutor,
) *WorkflowHandler {
	return &WorkflowHandler{
		logger:     log,
		workflows:  workflows,
		executions: executions,
		auditLogs:  auditLogs,
		validation: validation,
		authzSvc:   authzSvc,
		executor:   executor,
	}
}

// RegisterRoutes registers workflow routes
func (h *WorkflowHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/workflows", h.CreateWorkflow).Methods("POST")
	router.HandleFunc("/api/v1/workflows", h.ListWorkflows).Methods("GET")
	router.HandleFunc("/api/v1/workflows/{id}", h.GetWorkflow).Methods("GET")
	router.HandleFunc("/api/v1/workflows/{id}", h.UpdateWorkflow).Methods("PUT")
	router.HandleFunc("/api/v1/workflows/{id}", h.DeleteWorkflow).Methods("DELETE")
	router.HandleFunc("/api/v1/workflows/{id}/executions", h.ListExecutions).Methods("GET")
	router.HandleFunc("/api/v1/workflows/{id}/trigger", h.TriggerWorkflow).Methods("POST")
}

// workflowResponse wraps a workflow with save-time graph warnings
type workflowResponse struct {
	Workflow *models.Workflow      `json:"workflow"`
	Warnings []models.WorkflowEdge `json:"dangling_edges,omitempty"`
}

func (h *WorkflowHandler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireRole(w, r, models.RoleAnalyst)
	if !ok {
		return
	}

	var workflow models.Workflow
	if err := json.NewDecoder(r.Body).Decode(&workflow); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validation.ValidateStruct(&workflow); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.workflows.Create(r.Context(), tc, &workflow); err != nil {
		h.writeRepositoryError(w, err, "Failed to create workflow")
		return
	}

	h.audit(r.Context(), tc, models.AuditActionCreate, workflow.ID, &workflow)
	writeJSONResponse(w, http.StatusCreated, workflowResponse{
		Workflow: &workflow,
		Warnings: workflow.ValidateGraph(),
	})
}

func (h *WorkflowHandler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	var workflows []*models.Workflow
	var err error
	if r.URL.Query().Get("active") == "true" {
		workflows, err = h.workflows.GetActive(r.Context(), tc)
	} else {
		workflows, err = h.workflows.GetAll(r.Context(), tc)
	}
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to list workflows")
		return
	}

	writeJSONResponse(w, http.StatusOK, workflows)
}

func (h *WorkflowHandler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	workflow, err := h.workflows.GetByID(r.Context(), tc, mux.Vars(r)["id"])
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to get workflow")
		return
	}

	writeJSONResponse(w, http.StatusOK, workflow)
}

func (h *WorkflowHandler) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireRole(w, r, models.RoleAnalyst)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	existing, err := h.workflows.GetByID(r.Context(), tc, id)
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to get workflow")
		return
	}

	var workflow models.Workflow
	if err := json.NewDecoder(r.Body).Decode(&workflow); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	workflow.ID = existing.ID
	workflow.TenantID = existing.TenantID
	workflow.CreatedAt = existing.CreatedAt
	workflow.CreatedBy = existing.CreatedBy

	if err := h.validation.ValidateStruct(&workflow); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.workflows.Update(r.Context(), tc, &workflow); err != nil {
		h.writeRepositoryError(w, err, "Failed to update workflow")
		return
	}

	h.audit(r.Context(), tc, models.AuditActionUpdate, workflow.ID, &workflow)
	writeJSONResponse(w, http.StatusOK, workflowResponse{
		Workflow: &workflow,
		Warnings: workflow.ValidateGraph(),
	})
}

func (h *WorkflowHandler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.workflows.Delete(r.Context(), tc, id); err != nil {
		h.writeRepositoryError(w, err, "Failed to delete workflow")
		return
	}

	h.audit(r.Context(), tc, models.AuditActionDelete, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkflowHandler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	executions, err := h.executions.GetByWorkflow(r.Context(), tc, id, limit)
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to list executions")
		return
	}

	writeJSONResponse(w, http.StatusOK, executions)
}

// TriggerWorkflow requests a manual run of a workflow
func (h *WorkflowHandler) TriggerWorkflow(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireRole(w, r, models.RoleAnalyst)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	workflow, err := h.workflows.GetByID(r.Context(), tc, id)
	if err != nil {
		h.writeRepositoryError(w, err, "Failed to get workflow")
		return
	}

	var event models.SecurityEvent
	if r.Body != nil {
		// An empty or absent body means a bare manual run.
		_ = json.NewDecoder(r.Body).Decode(&event)
	}

	request := &services.TriggerRequest{
		Event:       &event,
		TriggerType: models.TriggerTypeManual,
		TriggerTime: time.Now(),
	}

	result, err := h.executor.Execute(r.Context(), workflow, request)
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadGateway, "Workflow execution failed", err)
		return
	}

	h.audit(r.Context(), tc, models.AuditActionExecute, workflow.ID, nil)
	writeJSONResponse(w, http.StatusAccepted, result)
}

func (h *WorkflowHandler) requireTenant(w http.ResponseWriter, r *http.Request) (*tenant.Context, bool) {
	tc, err := tenant.Require(r.Context())
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Tenant context required", nil)
		return nil, false
	}
	return tc, true
}

func (h *WorkflowHandler) requireRole(w http.ResponseWriter, r *http.Request, role string) (*tenant.Context, bool) {
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

func (h *WorkflowHandler) writeRepositoryError(w http.ResponseWriter, err error, message string) {
	switch {
	case repositories.IsNotFound(err):
		writeErrorResponse(h.logger, w, http.StatusNotFound, "Workflow not found", nil)
	case errors.Is(err, repositories.ErrTenantMismatch):
		writeErrorResponse(h.logger, w, http.StatusForbidden, "Access denied", nil)
	case errors.Is(err, tenant.ErrNoTenantContext):
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Tenant context required", nil)
	default:
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, message, err)
	}
}

// audit records a mutating operation. Audit failures are logged, never
// surfaced to the caller.
func (h *WorkflowHandler) audit(ctx context.Context, tc *tenant.Context, action, resourceID string, newValues *models.Workflow) {
	entry := &models.AuditLog{
		UserID:       tc.UserID,
		Action:       action,
		ResourceType: "workflow",
		ResourceID:   resourceID,
	}
	if newValues != nil {
		entry.NewValues = models.JSONMap{
			"name":      newValues.Name,
			"is_active": newValues.IsActive,
		}
	}
	if err := h.auditLogs.Create(ctx, tc, entry); err != nil {
		h.logger.WithTenant(tc.TenantID).WithError(err).Error("Failed to write audit log")
	}
}
