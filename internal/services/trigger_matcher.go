package services

import (
	"fmt"
	"strings"
	"time"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
)

// Threshold scaling: a scoring node's configured threshold (typically a
// 0..1 model score) is scaled onto the event risk-score axis and capped.
const (
	thresholdMultiplier = 10.0
	maxScaledThreshold  = 3.0
	absoluteRiskCeiling = 8.0
)

// Threat-type substrings that always warrant a trigger, matched
// case-insensitively
var highRiskKeywords = []string{
	"sql injection",
	"ransomware",
	"command & control",
	"zero-day exploit",
	"data exfiltration",
	"malware",
	"phishing",
	"brute force",
	"ddos",
}

// TriggerRequest is the execution request handed to the workflow executor
// when a workflow fires
type TriggerRequest struct {
	Event           *models.SecurityEvent `json:"event"`
	TriggerType     string                `json:"triggerType"`
	TriggerTime     time.Time             `json:"triggerTime"`
	SourceTopic     string                `json:"sourceTopic,omitempty"`
	SourcePartition int32                 `json:"sourcePartition,omitempty"`
	SourceOffset    int64                 `json:"sourceOffset,omitempty"`
}

// TriggerDecision is the matcher's verdict for one workflow
type TriggerDecision struct {
	Workflow *models.Workflow
	Trigger  bool
	Reason   string
	Request  *TriggerRequest
}

// TriggerMatcher decides which workflows should fire for an incoming event.
// It is stateless: the decision set is a pure function of the event and the
// workflow definitions.
type TriggerMatcher struct {
	logger *logger.Logger
	now    func() time.Time
}

// NewTriggerMatcher creates a new trigger matcher
func NewTriggerMatcher(log *logger.Logger) *TriggerMatcher {
	return &TriggerMatcher{
		logger: log,
		now:    time.Now,
	}
}

// Match evaluates every workflow against the event and returns one decision
// per workflow. A failure evaluating one workflow is isolated: it is logged
// and recorded as a non-trigger, and the remaining workflows are still
// evaluated.
func (m *TriggerMatcher) Match(event *models.SecurityEvent, workflows []*models.Workflow) []*TriggerDecision {
	decisions := make([]*TriggerDecision, 0, len(workflows))
	for _, wf := range workflows {
		decisions = append(decisions, m.evaluate(event, wf))
	}
	return decisions
}

// evaluate decides whether one workflow fires for the event
func (m *TriggerMatcher) evaluate(event *models.SecurityEvent, wf *models.Workflow) (decision *TriggerDecision) {
	decision = &TriggerDecision{Workflow: wf}

	// Workflow definitions come from user-edited jsonb; isolate anything
	// unexpected in one definition from the rest of the batch.
	defer func() {
		if r := recover(); r != nil {
			m.logger.WithWorkflow(wf.ID).
				WithField("panic", fmt.Sprint(r)).
				Error("Workflow evaluation failed")
			decision.Trigger = false
			decision.Reason = "evaluation_error"
			decision.Request = nil
		}
	}()

	if !wf.IsActive {
		decision.Reason = "inactive"
		return decision
	}

	if !m.inputMatches(event, wf) {
		decision.Reason = "no_matching_input"
		return decision
	}

	trigger, reason := m.shouldTrigger(event, wf)
	decision.Trigger = trigger
	decision.Reason = reason
	if trigger {
		decision.Request = m.buildRequest(event)
	}
	return decision
}

// inputMatches gates on the workflow's event-source input nodes. Stream
// events require an input node subscribed to the event's topic; events from
// other origins match any input node.
func (m *TriggerMatcher) inputMatches(event *models.SecurityEvent, wf *models.Workflow) bool {
	inputs := wf.NodesOfType(models.NodeTypeInput)
	if len(inputs) == 0 {
		return false
	}

	if event.SourceTopic == "" {
		return true
	}

	for _, node := range inputs {
		source := node.ConfigString("source")
		if source != models.InputSourceStream && source != models.InputSourceKafka {
			continue
		}
		if node.ConfigString("topic") == event.SourceTopic {
			return true
		}
	}
	return false
}

// shouldTrigger applies the trigger conditions in order: severity bypass,
// high-risk keyword, scaled scoring threshold, absolute risk ceiling
func (m *TriggerMatcher) shouldTrigger(event *models.SecurityEvent, wf *models.Workflow) (bool, string) {
	if event.IsHighSeverity() {
		return true, "high_severity"
	}

	if kw := m.matchKeyword(event); kw != "" {
		return true, "keyword:" + kw
	}

	if threshold, ok := m.scoringThreshold(wf); ok && event.RiskScore >= threshold {
		return true, "risk_threshold"
	}

	if event.RiskScore > absoluteRiskCeiling {
		return true, "risk_ceiling"
	}

	return false, "below_threshold"
}

// matchKeyword returns the first high-risk keyword contained in the event's
// threat or anomaly type, or ""
func (m *TriggerMatcher) matchKeyword(event *models.SecurityEvent) string {
	haystack := strings.ToLower(event.ThreatType + " " + event.AnomalyType)
	for _, kw := range highRiskKeywords {
		if strings.Contains(haystack, kw) {
			return kw
		}
	}
	return ""
}

// scoringThreshold derives the effective firing threshold from the
// workflow's scoring node: the configured base threshold scaled by a fixed
// multiplier and capped at a maximum
func (m *TriggerMatcher) scoringThreshold(wf *models.Workflow) (float64, bool) {
	for _, node := range wf.NodesOfType(models.NodeTypeScoring) {
		base, ok := node.ConfigFloat("threshold")
		if !ok {
			continue
		}
		scaled := base * thresholdMultiplier
		if scaled > maxScaledThreshold {
			scaled = maxScaledThreshold
		}
		return scaled, true
	}
	return 0, false
}

// buildRequest constructs the execution payload for a fired workflow,
// including stream provenance for traceability
func (m *TriggerMatcher) buildRequest(event *models.SecurityEvent) *TriggerRequest {
	req := &TriggerRequest{
		Event:       event,
		TriggerType: models.TriggerTypeAutomatic,
		TriggerTime: m.now(),
	}
	if event.SourceTopic != "" {
		req.TriggerType = models.TriggerTypeKafkaEvent
		req.SourceTopic = event.SourceTopic
		req.SourcePartition = event.SourcePartition
		req.SourceOffset = event.SourceOffset
	}
	return req
}
