package services

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
)

// createTestLogger creates a logger for testing
func createTestLogger() *logger.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return &logger.Logger{Logger: l}
}

func scoringWorkflow(threshold float64) *models.Workflow {
	return &models.Workflow{
		ID:       "wf-scoring",
		Name:     "Anomaly scoring",
		IsActive: true,
		Nodes: models.WorkflowNodes{
			{ID: "n1", Type: models.NodeTypeInput, Config: models.JSONMap{"source": "manual"}},
			{ID: "n2", Type: models.NodeTypeScoring, Config: models.JSONMap{"threshold": threshold}},
			{ID: "n3", Type: models.NodeTypeOutput},
		},
		Edges: models.WorkflowEdges{
			{ID: "e1", Source: "n1", Target: "n2"},
			{ID: "e2", Source: "n2", Target: "n3"},
		},
	}
}

func streamWorkflow(topic string) *models.Workflow {
	return &models.Workflow{
		ID:       "wf-stream",
		Name:     "Stream consumer",
		IsActive: true,
		Nodes: models.WorkflowNodes{
			{ID: "in", Type: models.NodeTypeInput, Config: models.JSONMap{"source": "stream", "topic": topic}},
			{ID: "out", Type: models.NodeTypeOutput},
		},
	}
}

func TestScoringThresholdScaling(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())

	t.Run("threshold 0.7 scales to 3.0", func(t *testing.T) {
		wf := scoringWorkflow(0.7)

		cases := []struct {
			riskScore float64
			trigger   bool
		}{
			{2.9, false},
			{3.0, true},
			{3.1, true},
		}

		for _, tc := range cases {
			event := &models.SecurityEvent{EventID: "evt-1", Severity: "low", RiskScore: tc.riskScore}
			decisions := matcher.Match(event, []*models.Workflow{wf})
			require.Len(t, decisions, 1)
			assert.Equal(t, tc.trigger, decisions[0].Trigger, "riskScore=%v", tc.riskScore)
		}
	})

	t.Run("oversized threshold is capped", func(t *testing.T) {
		// 45 * 10 would be 450; the cap keeps the workflow triggerable.
		wf := scoringWorkflow(45)
		event := &models.SecurityEvent{EventID: "evt-2", Severity: "low", RiskScore: 3.5}

		decisions := matcher.Match(event, []*models.Workflow{wf})
		require.Len(t, decisions, 1)
		assert.True(t, decisions[0].Trigger)
		assert.Equal(t, "risk_threshold", decisions[0].Reason)
	})

	t.Run("threshold as numeric string", func(t *testing.T) {
		wf := scoringWorkflow(0)
		wf.Nodes[1].Config["threshold"] = "0.25"
		event := &models.SecurityEvent{EventID: "evt-3", Severity: "low", RiskScore: 2.5}

		decisions := matcher.Match(event, []*models.Workflow{wf})
		require.Len(t, decisions, 1)
		assert.True(t, decisions[0].Trigger)
	})
}

func TestSeverityBypass(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())
	wf := scoringWorkflow(0.9)

	for _, severity := range []string{"high", "HIGH", "critical", "Critical"} {
		event := &models.SecurityEvent{EventID: "evt-sev", Severity: severity, RiskScore: 0}
		decisions := matcher.Match(event, []*models.Workflow{wf})
		require.Len(t, decisions, 1)
		assert.True(t, decisions[0].Trigger, "severity=%s", severity)
		assert.Equal(t, "high_severity", decisions[0].Reason)
	}

	event := &models.SecurityEvent{EventID: "evt-low", Severity: "medium", RiskScore: 0}
	decisions := matcher.Match(event, []*models.Workflow{wf})
	require.Len(t, decisions, 1)
	assert.False(t, decisions[0].Trigger)
}

func TestKeywordMatching(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())
	wf := scoringWorkflow(0.9)

	cases := []struct {
		threatType  string
		anomalyType string
		trigger     bool
		reason      string
	}{
		{"Ransomware attack detected", "", true, "keyword:ransomware"},
		{"SQL INJECTION attempt", "", true, "keyword:sql injection"},
		{"", "possible Data Exfiltration", true, "keyword:data exfiltration"},
		{"benign traffic", "", false, "below_threshold"},
		{"", "", false, "below_threshold"},
	}

	for _, tc := range cases {
		event := &models.SecurityEvent{
			EventID:     "evt-kw",
			Severity:    "low",
			ThreatType:  tc.threatType,
			AnomalyType: tc.anomalyType,
			RiskScore:   0,
		}
		decisions := matcher.Match(event, []*models.Workflow{wf})
		require.Len(t, decisions, 1)
		assert.Equal(t, tc.trigger, decisions[0].Trigger, "threatType=%q", tc.threatType)
		assert.Equal(t, tc.reason, decisions[0].Reason)
	}
}

func TestAbsoluteRiskCeiling(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())

	// Workflow with an input node but no scoring node: only the ceiling and
	// the bypass conditions can fire it.
	wf := &models.Workflow{
		ID:       "wf-plain",
		Name:     "No scoring",
		IsActive: true,
		Nodes: models.WorkflowNodes{
			{ID: "in", Type: models.NodeTypeInput, Config: models.JSONMap{"source": "manual"}},
		},
	}

	cases := []struct {
		riskScore float64
		trigger   bool
	}{
		{8.0, false},
		{8.1, true},
		{9.5, true},
	}

	for _, tc := range cases {
		event := &models.SecurityEvent{EventID: "evt-ceil", Severity: "low", RiskScore: tc.riskScore}
		decisions := matcher.Match(event, []*models.Workflow{wf})
		require.Len(t, decisions, 1)
		assert.Equal(t, tc.trigger, decisions[0].Trigger, "riskScore=%v", tc.riskScore)
		if tc.trigger {
			assert.Equal(t, "risk_ceiling", decisions[0].Reason)
		}
	}
}

func TestStreamTopicGating(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())

	securityWF := streamWorkflow("security.events")
	testWF := streamWorkflow("workflow.test")
	testWF.ID = "wf-stream-test"

	event := &models.SecurityEvent{
		EventID:     "evt-stream",
		Severity:    "critical",
		RiskScore:   9.0,
		SourceTopic: "security.events",
	}

	decisions := matcher.Match(event, []*models.Workflow{securityWF, testWF})
	require.Len(t, decisions, 2)

	byID := map[string]*TriggerDecision{}
	for _, d := range decisions {
		byID[d.Workflow.ID] = d
	}

	assert.True(t, byID["wf-stream"].Trigger)
	assert.False(t, byID["wf-stream-test"].Trigger)
	assert.Equal(t, "no_matching_input", byID["wf-stream-test"].Reason)
}

func TestNonStreamEventMatchesAnyInput(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())
	wf := streamWorkflow("security.events")

	// A polled event carries no source topic and matches any input node.
	event := &models.SecurityEvent{EventID: "evt-polled", Severity: "critical", RiskScore: 0}
	decisions := matcher.Match(event, []*models.Workflow{wf})
	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].Trigger)
}

func TestWorkflowWithoutInputNodesNeverTriggers(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())
	wf := &models.Workflow{
		ID:       "wf-no-input",
		Name:     "Output only",
		IsActive: true,
		Nodes: models.WorkflowNodes{
			{ID: "out", Type: models.NodeTypeOutput},
		},
	}

	event := &models.SecurityEvent{EventID: "evt", Severity: "critical", RiskScore: 10}
	decisions := matcher.Match(event, []*models.Workflow{wf})
	require.Len(t, decisions, 1)
	assert.False(t, decisions[0].Trigger)
	assert.Equal(t, "no_matching_input", decisions[0].Reason)
}

func TestInactiveWorkflowNeverTriggers(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())
	wf := scoringWorkflow(0.1)
	wf.IsActive = false

	event := &models.SecurityEvent{EventID: "evt", Severity: "critical", RiskScore: 10}
	decisions := matcher.Match(event, []*models.Workflow{wf})
	require.Len(t, decisions, 1)
	assert.False(t, decisions[0].Trigger)
	assert.Equal(t, "inactive", decisions[0].Reason)
}

func TestTriggerRequestProvenance(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	matcher.now = func() time.Time { return fixed }

	t.Run("stream event", func(t *testing.T) {
		wf := streamWorkflow("security.events")
		event := &models.SecurityEvent{
			EventID:         "evt-prov",
			Severity:        "critical",
			SourceTopic:     "security.events",
			SourcePartition: 2,
			SourceOffset:    4711,
		}

		decisions := matcher.Match(event, []*models.Workflow{wf})
		require.Len(t, decisions, 1)
		require.NotNil(t, decisions[0].Request)

		req := decisions[0].Request
		assert.Equal(t, models.TriggerTypeKafkaEvent, req.TriggerType)
		assert.Equal(t, "security.events", req.SourceTopic)
		assert.Equal(t, int32(2), req.SourcePartition)
		assert.Equal(t, int64(4711), req.SourceOffset)
		assert.Equal(t, fixed, req.TriggerTime)
	})

	t.Run("non-stream event", func(t *testing.T) {
		wf := scoringWorkflow(0.1)
		event := &models.SecurityEvent{EventID: "evt-auto", Severity: "critical"}

		decisions := matcher.Match(event, []*models.Workflow{wf})
		require.Len(t, decisions, 1)
		require.NotNil(t, decisions[0].Request)
		assert.Equal(t, models.TriggerTypeAutomatic, decisions[0].Request.TriggerType)
		assert.Empty(t, decisions[0].Request.SourceTopic)
	})
}

func TestMalformedWorkflowIsIsolated(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())

	// A scoring node whose config round-tripped badly must not take down the
	// rest of the batch.
	broken := &models.Workflow{
		ID:       "wf-broken",
		Name:     "Broken",
		IsActive: true,
		Nodes: models.WorkflowNodes{
			{ID: "in", Type: models.NodeTypeInput, Config: models.JSONMap{"source": "manual"}},
			{ID: "sc", Type: models.NodeTypeScoring, Config: nil},
		},
	}
	healthy := scoringWorkflow(0.1)
	healthy.ID = "wf-healthy"

	event := &models.SecurityEvent{EventID: "evt-mixed", Severity: "low", RiskScore: 5}
	decisions := matcher.Match(event, []*models.Workflow{broken, healthy})
	require.Len(t, decisions, 2)

	for _, d := range decisions {
		if d.Workflow.ID == "wf-healthy" {
			assert.True(t, d.Trigger)
		}
	}
}

func TestStreamScoringPipeline(t *testing.T) {
	matcher := NewTriggerMatcher(createTestLogger())

	wf := &models.Workflow{
		ID:       "wf-pipeline",
		Name:     "Scored stream pipeline",
		IsActive: true,
		Nodes: models.WorkflowNodes{
			{ID: "in", Type: models.NodeTypeInput, Config: models.JSONMap{"source": "kafka", "topic": "security.events"}},
			{ID: "score", Type: models.NodeTypeScoring, Config: models.JSONMap{"threshold": 0.7}},
			{ID: "out", Type: models.NodeTypeOutput},
		},
		Edges: models.WorkflowEdges{
			{ID: "e1", Source: "in", Target: "score"},
			{ID: "e2", Source: "score", Target: "out"},
		},
	}

	t.Run("unremarkable event does not fire", func(t *testing.T) {
		event := &models.SecurityEvent{
			EventID:     "evt-quiet",
			Severity:    "low",
			ThreatType:  "generic scan",
			RiskScore:   1.0,
			SourceTopic: "security.events",
		}

		decisions := matcher.Match(event, []*models.Workflow{wf})
		require.Len(t, decisions, 1)
		assert.False(t, decisions[0].Trigger)
		assert.Equal(t, "below_threshold", decisions[0].Reason)
	})

	t.Run("high severity fires despite low score", func(t *testing.T) {
		event := &models.SecurityEvent{
			EventID:     "evt-hot",
			Severity:    "high",
			RiskScore:   1.0,
			SourceTopic: "security.events",
		}

		decisions := matcher.Match(event, []*models.Workflow{wf})
		require.Len(t, decisions, 1)
		assert.True(t, decisions[0].Trigger)
		assert.Equal(t, "high_severity", decisions[0].Reason)
	})
}

func TestProperty_MatcherDecisionsAreDeterministic(t *testing.T) {
	properties := gopter.NewProperties(&gopter.TestParameters{MinSuccessfulTests: 50})

	properties.Property("matching the same event twice yields identical decisions", prop.ForAll(
		func(riskScore float64, threshold float64) bool {
			matcher := NewTriggerMatcher(createTestLogger())
			wf := scoringWorkflow(threshold)
			event := &models.SecurityEvent{EventID: "evt-p", Severity: "low", RiskScore: riskScore}

			first := matcher.Match(event, []*models.Workflow{wf})
			second := matcher.Match(event, []*models.Workflow{wf})

			return first[0].Trigger == second[0].Trigger && first[0].Reason == second[0].Reason
		},
		gen.Float64Range(0, 10),
		gen.Float64Range(0, 1),
	))

	properties.Property("the effective threshold never exceeds the cap", prop.ForAll(
		func(threshold float64) bool {
			matcher := NewTriggerMatcher(createTestLogger())
			wf := scoringWorkflow(threshold)

			// An event at the cap fires regardless of how large the
			// configured threshold is.
			event := &models.SecurityEvent{EventID: "evt-cap", Severity: "low", RiskScore: maxScaledThreshold}
			decisions := matcher.Match(event, []*models.Workflow{wf})
			return decisions[0].Trigger
		},
		gen.Float64Range(0.3, 1000),
	))

	properties.Property("high severity fires independent of risk score", prop.ForAll(
		func(riskScore float64) bool {
			matcher := NewTriggerMatcher(createTestLogger())
			wf := scoringWorkflow(0.99)
			event := &models.SecurityEvent{EventID: "evt-hs", Severity: "critical", RiskScore: riskScore}

			decisions := matcher.Match(event, []*models.Workflow{wf})
			return decisions[0].Trigger && decisions[0].Reason == "high_severity"
		},
		gen.Float64Range(0, 10),
	))

	properties.TestingRun(t)
}
