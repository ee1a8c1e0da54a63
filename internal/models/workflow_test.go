package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFloat(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  float64
		ok    bool
	}{
		{"float64", 0.75, 0.75, true},
		{"int", 3, 3.0, true},
		{"json number", json.Number("0.5"), 0.5, true},
		{"numeric string", "0.25", 0.25, true},
		{"garbage string", "not-a-number", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := WorkflowNode{Config: JSONMap{"threshold": tt.value}}
			got, ok := node.ConfigFloat("threshold")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigString(t *testing.T) {
	node := WorkflowNode{Config: JSONMap{"source": "stream", "threshold": 0.5}}

	assert.Equal(t, "stream", node.ConfigString("source"))
	assert.Equal(t, "", node.ConfigString("threshold"))
	assert.Equal(t, "", node.ConfigString("missing"))
}

func TestNodesOfType(t *testing.T) {
	w := &Workflow{
		Nodes: WorkflowNodes{
			{ID: "in", Type: NodeTypeInput},
			{ID: "score", Type: NodeTypeScoring},
			{ID: "in2", Type: NodeTypeInput},
			{ID: "out", Type: NodeTypeOutput},
		},
	}

	inputs := w.NodesOfType(NodeTypeInput)
	require.Len(t, inputs, 2)
	assert.Equal(t, "in", inputs[0].ID)
	assert.Equal(t, "in2", inputs[1].ID)

	assert.Empty(t, w.NodesOfType(NodeTypeAction))
}

func TestValidateGraph(t *testing.T) {
	w := &Workflow{
		Nodes: WorkflowNodes{
			{ID: "in", Type: NodeTypeInput},
			{ID: "out", Type: NodeTypeOutput},
		},
		Edges: WorkflowEdges{
			{ID: "e1", Source: "in", Target: "out"},
			{ID: "e2", Source: "in", Target: "ghost"},
			{ID: "e3", Source: "phantom", Target: "out"},
		},
	}

	dangling := w.ValidateGraph()
	require.Len(t, dangling, 2)
	assert.Equal(t, "e2", dangling[0].ID)
	assert.Equal(t, "e3", dangling[1].ID)

	connected := &Workflow{
		Nodes: WorkflowNodes{{ID: "in", Type: NodeTypeInput}, {ID: "out", Type: NodeTypeOutput}},
		Edges: WorkflowEdges{{ID: "e1", Source: "in", Target: "out"}},
	}
	assert.Empty(t, connected.ValidateGraph())
}

func TestWorkflowNodesRoundTrip(t *testing.T) {
	nodes := WorkflowNodes{
		{ID: "in", Type: NodeTypeInput, Config: JSONMap{"source": "kafka", "topic": "security.events"}},
	}

	value, err := nodes.Value()
	require.NoError(t, err)

	var scanned WorkflowNodes
	require.NoError(t, scanned.Scan(value))
	require.Len(t, scanned, 1)
	assert.Equal(t, "security.events", scanned[0].ConfigString("topic"))
}

// Compile-time checks that every persisted entity with a tenant column
// satisfies TenantOwned through the embedded ownership struct.
var (
	_ TenantOwned = (*Workflow)(nil)
	_ TenantOwned = (*WorkflowExecution)(nil)
	_ TenantOwned = (*Incident)(nil)
	_ TenantOwned = (*ThreatIndicator)(nil)
	_ TenantOwned = (*AuditLog)(nil)
)

func TestTenantOwnership(t *testing.T) {
	w := &Workflow{}
	assert.Equal(t, "", w.GetTenantID())

	w.SetTenantID("t-1")
	assert.Equal(t, "t-1", w.GetTenantID())
	assert.Equal(t, "t-1", w.TenantID)
}
