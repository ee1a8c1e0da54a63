package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"nodeguard-platform/internal/config"
	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/repositories"
)

// ExecutionResult is the executor collaborator's response for one run
type ExecutionResult struct {
	ExecutionID   string `json:"executionId"`
	Status        string `json:"status"`
	ExecutionTime int64  `json:"executionTime,omitempty"`
}

// WorkflowExecutor defines the interface for delegating a fired workflow to
// the execution engine. The matcher's contract ends at "fire with this
// payload"; there is no transactional guarantee between deciding to trigger
// and executing (at-most-once delivery).
type WorkflowExecutor interface {
	Execute(ctx context.Context, workflow *models.Workflow, request *TriggerRequest) (*ExecutionResult, error)
}

// httpWorkflowExecutor implements WorkflowExecutor against the workflow
// engine's REST API and records each run as a WorkflowExecution row
type httpWorkflowExecutor struct {
	logger     *logger.Logger
	executions repositories.ExecutionRepository
	client     *http.Client
	baseURL    string
}

// NewWorkflowExecutor creates an HTTP-backed workflow executor
func NewWorkflowExecutor(
	log *logger.Logger,
	executions repositories.ExecutionRepository,
	cfg *config.Config,
) WorkflowExecutor {
	return &httpWorkflowExecutor{
		logger:     log,
		executions: executions,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: time.Duration(cfg.Executor.TimeoutSeconds) * time.Second,
		},
		baseURL: cfg.Executor.BaseURL,
	}
}

// Execute posts the trigger payload to the execution engine and records the
// outcome under the workflow's tenant
func (e *httpWorkflowExecutor) Execute(ctx context.Context, workflow *models.Workflow, request *TriggerRequest) (*ExecutionResult, error) {
	log := e.logger.WithWorkflow(workflow.ID)

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger payload: %w", err)
	}

	url := fmt.Sprintf("%s/workflows/%s/execute", e.baseURL, workflow.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build execution request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		e.record(ctx, workflow, request, nil, started, err)
		return nil, fmt.Errorf("execution request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("execution engine returned %d: %s", resp.StatusCode, string(data))
		e.record(ctx, workflow, request, nil, started, err)
		return nil, err
	}

	var result ExecutionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		err = fmt.Errorf("failed to decode execution response: %w", err)
		e.record(ctx, workflow, request, nil, started, err)
		return nil, err
	}

	log.WithField("execution_id", result.ExecutionID).
		WithField("status", result.Status).
		Info("Workflow execution delegated")

	e.record(ctx, workflow, request, &result, started, nil)
	return &result, nil
}

// record persists the execution outcome. Recording failures are logged and
// swallowed: losing a history row must not fail the execution path.
func (e *httpWorkflowExecutor) record(ctx context.Context, workflow *models.Workflow, request *TriggerRequest, result *ExecutionResult, started time.Time, execErr error) {
	execution := &models.WorkflowExecution{
		ID:          uuid.NewString(),
		WorkflowID:  workflow.ID,
		TriggerType: request.TriggerType,
		TriggeredAt: request.TriggerTime,
		DurationMs:  time.Since(started).Milliseconds(),
		Payload: models.JSONMap{
			"event_id":     request.Event.EventID,
			"threat_type":  request.Event.ThreatType,
			"severity":     request.Event.Severity,
			"risk_score":   request.Event.RiskScore,
			"source_topic": request.SourceTopic,
		},
	}
	execution.SetTenantID(workflow.GetTenantID())

	if execErr != nil {
		execution.Status = models.ExecutionStatusFailed
		execution.Error = execErr.Error()
	} else {
		execution.Status = result.Status
		execution.ExecutionID = result.ExecutionID
		now := time.Now()
		execution.CompletedAt = &now
	}

	if err := e.executions.Record(ctx, execution); err != nil {
		e.logger.WithWorkflow(workflow.ID).WithError(err).
			Error("Failed to record workflow execution")
	}
}
