package models

import (
	"strings"
	"time"
)

// SecurityEvent is a transient security-event payload consumed by the
// trigger matcher. Events arrive from the Kafka stream or the incident
// poller and are never persisted by the core.
type SecurityEvent struct {
	EventID     string                 `json:"event_id"`
	EventType   string                 `json:"event_type,omitempty"`
	Severity    string                 `json:"severity"`
	ThreatType  string                 `json:"threat_type,omitempty"`
	AnomalyType string                 `json:"anomaly_type,omitempty"`
	RiskScore   float64                `json:"risk_score"`
	SourceIP    string                 `json:"source_ip,omitempty"`
	TargetIP    string                 `json:"target_ip,omitempty"`
	Timestamp   time.Time              `json:"timestamp,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`

	// Stream provenance, set by the Kafka consumer for traceability.
	SourceTopic     string `json:"source_topic,omitempty"`
	SourcePartition int32  `json:"source_partition,omitempty"`
	SourceOffset    int64  `json:"source_offset,omitempty"`
}

// NormalizedSeverity lowercases the severity tag; producers are inconsistent
// about casing ("HIGH" vs "high").
func (e *SecurityEvent) NormalizedSeverity() string {
	return strings.ToLower(e.Severity)
}

// IsHighSeverity reports whether the event severity bypasses threshold checks
func (e *SecurityEvent) IsHighSeverity() bool {
	switch e.NormalizedSeverity() {
	case SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
