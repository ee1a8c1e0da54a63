package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics, exported on /metrics
var (
	eventsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeguard_events_processed_total",
		Help: "Security events evaluated by the trigger matcher, by source.",
	}, []string{"source"})

	workflowsTriggeredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeguard_workflows_triggered_total",
		Help: "Workflow trigger decisions that fired, by reason.",
	}, []string{"reason"})

	workflowExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeguard_workflow_executions_total",
		Help: "Delegated workflow executions, by outcome.",
	}, []string{"outcome"})

	pollCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeguard_poll_cycles_total",
		Help: "Incident poll cycles, by outcome (ok, error, skipped).",
	}, []string{"outcome"})

	tenantResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeguard_tenant_resolutions_total",
		Help: "Tenant resolution outcomes at the HTTP boundary.",
	}, []string{"outcome"})
)

// ObserveTenantResolution records one resolver outcome at the middleware
// boundary
func ObserveTenantResolution(outcome string) {
	tenantResolutionsTotal.WithLabelValues(outcome).Inc()
}
