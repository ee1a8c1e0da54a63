package services

import (
	"context"
	"fmt"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/repositories"
)

// EventProcessor runs one incoming event through the full pipeline: load the
// active workflow definitions, match, and delegate every fired workflow to
// the executor. Both event sources (the incident poller and the Kafka
// consumer) call into it.
type EventProcessor struct {
	logger    *logger.Logger
	workflows repositories.WorkflowRepository
	matcher   *TriggerMatcher
	executor  WorkflowExecutor
}

// NewEventProcessor creates a new event processor
func NewEventProcessor(
	log *logger.Logger,
	workflows repositories.WorkflowRepository,
	matcher *TriggerMatcher,
	executor WorkflowExecutor,
) *EventProcessor {
	return &EventProcessor{
		logger:    log,
		workflows: workflows,
		matcher:   matcher,
		executor:  executor,
	}
}

// ProcessEvent matches one event against all active workflows and executes
// the triggered ones. An execution failure for one workflow is logged and
// does not abort processing of the others; there is no reliability guarantee
// between the trigger decision and the execution (at-most-once).
func (p *EventProcessor) ProcessEvent(ctx context.Context, event *models.SecurityEvent, source string) error {
	log := p.logger.WithEvent(event.EventID)

	workflows, err := p.workflows.ListActiveWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active workflows: %w", err)
	}

	eventsProcessedTotal.WithLabelValues(source).Inc()

	decisions := p.matcher.Match(event, workflows)

	triggered := 0
	for _, d := range decisions {
		if !d.Trigger {
			continue
		}
		triggered++
		workflowsTriggeredTotal.WithLabelValues(d.Reason).Inc()

		log.WithField("workflow_id", d.Workflow.ID).
			WithField("reason", d.Reason).
			Info("Workflow triggered")

		if _, err := p.executor.Execute(ctx, d.Workflow, d.Request); err != nil {
			workflowExecutionsTotal.WithLabelValues("error").Inc()
			log.WithField("workflow_id", d.Workflow.ID).WithError(err).
				Error("Workflow execution failed")
			continue
		}
		workflowExecutionsTotal.WithLabelValues("ok").Inc()
	}

	log.WithField("workflows_evaluated", len(workflows)).
		WithField("workflows_triggered", triggered).
		Debug("Event processed")
	return nil
}
