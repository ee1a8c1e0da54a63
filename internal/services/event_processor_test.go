package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"
)

// MockWorkflowRepository is a mock implementation of WorkflowRepository for testing
type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) Create(ctx context.Context, tc *tenant.Context, w *models.Workflow) error {
	args := m.Called(ctx, tc, w)
	return args.Error(0)
}

func (m *MockWorkflowRepository) GetByID(ctx context.Context, tc *tenant.Context, id string) (*models.Workflow, error) {
	args := m.Called(ctx, tc, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) GetAll(ctx context.Context, tc *tenant.Context) ([]*models.Workflow, error) {
	args := m.Called(ctx, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) GetActive(ctx context.Context, tc *tenant.Context) ([]*models.Workflow, error) {
	args := m.Called(ctx, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) Update(ctx context.Context, tc *tenant.Context, w *models.Workflow) error {
	args := m.Called(ctx, tc, w)
	return args.Error(0)
}

func (m *MockWorkflowRepository) Delete(ctx context.Context, tc *tenant.Context, id string) error {
	args := m.Called(ctx, tc, id)
	return args.Error(0)
}

func (m *MockWorkflowRepository) ListActiveWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Workflow), args.Error(1)
}

// MockWorkflowExecutor is a mock implementation of WorkflowExecutor for testing
type MockWorkflowExecutor struct {
	mock.Mock
}

func (m *MockWorkflowExecutor) Execute(ctx context.Context, workflow *models.Workflow, request *TriggerRequest) (*ExecutionResult, error) {
	args := m.Called(ctx, workflow, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ExecutionResult), args.Error(1)
}

func newTestProcessor(workflows *MockWorkflowRepository, executor *MockWorkflowExecutor) *EventProcessor {
	log := createTestLogger()
	return NewEventProcessor(log, workflows, NewTriggerMatcher(log), executor)
}

func TestProcessEventExecutesTriggeredWorkflows(t *testing.T) {
	ctx := context.Background()

	triggered := scoringWorkflow(0.1)
	triggered.ID = "wf-fire"
	dormant := scoringWorkflow(0.99)
	dormant.ID = "wf-idle"

	workflows := &MockWorkflowRepository{}
	workflows.On("ListActiveWorkflows", ctx).Return([]*models.Workflow{triggered, dormant}, nil)

	executor := &MockWorkflowExecutor{}
	executor.On("Execute", ctx, triggered, mock.Anything).
		Return(&ExecutionResult{ExecutionID: "ex-1", Status: "completed"}, nil)

	processor := newTestProcessor(workflows, executor)
	event := &models.SecurityEvent{EventID: "evt-1", Severity: "low", RiskScore: 2.0}

	require.NoError(t, processor.ProcessEvent(ctx, event, "kafka"))

	executor.AssertNumberOfCalls(t, "Execute", 1)
	executor.AssertNotCalled(t, "Execute", ctx, dormant, mock.Anything)
}

func TestProcessEventIsolatesExecutionFailures(t *testing.T) {
	ctx := context.Background()

	first := scoringWorkflow(0.1)
	first.ID = "wf-a"
	second := scoringWorkflow(0.1)
	second.ID = "wf-b"

	workflows := &MockWorkflowRepository{}
	workflows.On("ListActiveWorkflows", ctx).Return([]*models.Workflow{first, second}, nil)

	executor := &MockWorkflowExecutor{}
	executor.On("Execute", ctx, first, mock.Anything).Return(nil, errors.New("engine unreachable"))
	executor.On("Execute", ctx, second, mock.Anything).
		Return(&ExecutionResult{ExecutionID: "ex-2", Status: "completed"}, nil)

	processor := newTestProcessor(workflows, executor)
	event := &models.SecurityEvent{EventID: "evt-2", Severity: "low", RiskScore: 5.0}

	// One workflow's failure must not abort the batch or surface an error.
	require.NoError(t, processor.ProcessEvent(ctx, event, "poller"))
	executor.AssertNumberOfCalls(t, "Execute", 2)
}

func TestProcessEventPropagatesLoadFailure(t *testing.T) {
	ctx := context.Background()

	workflows := &MockWorkflowRepository{}
	workflows.On("ListActiveWorkflows", ctx).Return(nil, errors.New("db down"))

	executor := &MockWorkflowExecutor{}
	processor := newTestProcessor(workflows, executor)

	err := processor.ProcessEvent(ctx, &models.SecurityEvent{EventID: "evt-3"}, "kafka")
	assert.Error(t, err)
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}
