package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Workflow node types
const (
	NodeTypeInput   = "input"
	NodeTypeScoring = "ml-scoring"
	NodeTypeAction  = "action"
	NodeTypeOutput  = "output"
)

// Input node sources
const (
	InputSourceStream = "stream"
	InputSourceKafka  = "kafka"
	InputSourceManual = "manual"
)

// WorkflowNode is one typed processing step in a workflow graph
type WorkflowNode struct {
	ID     string  `json:"id" validate:"required"`
	Type   string  `json:"type" validate:"required"`
	Config JSONMap `json:"config,omitempty"`
}

// ConfigString returns a string config value, or "" when absent
func (n WorkflowNode) ConfigString(key string) string {
	if v, ok := n.Config[key].(string); ok {
		return v
	}
	return ""
}

// ConfigFloat returns a numeric config value. jsonb round-trips numbers as
// float64 but stored configs may also carry numeric strings.
func (n WorkflowNode) ConfigFloat(key string) (float64, bool) {
	switch v := n.Config[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// WorkflowEdge is a directed connection between two node ids
type WorkflowEdge struct {
	ID     string `json:"id"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// WorkflowNodes is the node collection stored as a jsonb column
type WorkflowNodes []WorkflowNode

// Value implements driver.Valuer interface for GORM
func (n WorkflowNodes) Value() (driver.Value, error) {
	if n == nil {
		return nil, nil
	}
	return json.Marshal(n)
}

// Scan implements sql.Scanner interface for GORM
func (n *WorkflowNodes) Scan(value interface{}) error {
	if value == nil {
		*n = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into WorkflowNodes", value)
	}

	return json.Unmarshal(bytes, n)
}

// WorkflowEdges is the edge collection stored as a jsonb column
type WorkflowEdges []WorkflowEdge

// Value implements driver.Valuer interface for GORM
func (e WorkflowEdges) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner interface for GORM
func (e *WorkflowEdges) Scan(value interface{}) error {
	if value == nil {
		*e = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into WorkflowEdges", value)
	}

	return json.Unmarshal(bytes, e)
}

// Workflow describes an automatable pipeline of detection/response steps
type Workflow struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"not null" validate:"required,min=1,max=255"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Nodes       WorkflowNodes  `json:"nodes" gorm:"type:jsonb"`
	Edges       WorkflowEdges  `json:"edges" gorm:"type:jsonb"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	TenantOwnership
}

// TableName returns the table name for Workflow
func (Workflow) TableName() string {
	return "workflows"
}

// NodesOfType returns the workflow's nodes matching the given type tag
func (w *Workflow) NodesOfType(nodeType string) []WorkflowNode {
	var nodes []WorkflowNode
	for _, n := range w.Nodes {
		if n.Type == nodeType {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// ValidateGraph reports edges referencing node ids that do not exist.
// Malformed workflows are tolerated at match time; callers may use this at
// save time to warn about dangling edges.
func (w *Workflow) ValidateGraph() []WorkflowEdge {
	ids := make(map[string]struct{}, len(w.Nodes))
	for _, n := range w.Nodes {
		ids[n.ID] = struct{}{}
	}

	var dangling []WorkflowEdge
	for _, e := range w.Edges {
		if _, ok := ids[e.Source]; !ok {
			dangling = append(dangling, e)
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			dangling = append(dangling, e)
		}
	}
	return dangling
}
