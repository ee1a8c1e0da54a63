package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedSeverity(t *testing.T) {
	assert.Equal(t, "high", (&SecurityEvent{Severity: "HIGH"}).NormalizedSeverity())
	assert.Equal(t, "critical", (&SecurityEvent{Severity: "Critical"}).NormalizedSeverity())
	assert.Equal(t, "", (&SecurityEvent{}).NormalizedSeverity())
}

func TestIsHighSeverity(t *testing.T) {
	tests := []struct {
		severity string
		want     bool
	}{
		{"high", true},
		{"HIGH", true},
		{"critical", true},
		{"Critical", true},
		{"medium", false},
		{"low", false},
		{"", false},
	}

	for _, tt := range tests {
		event := &SecurityEvent{Severity: tt.severity}
		assert.Equal(t, tt.want, event.IsHighSeverity(), "severity %q", tt.severity)
	}
}
