// Package nodeguard provides a Go client SDK for the NodeGuard platform API
package nodeguard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client represents the NodeGuard platform client
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	tenantID   string
	version    string
}

// ClientOption represents a client configuration option
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithToken sets the authentication token
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithTenant sets an explicit tenant id, sent as the X-Tenant-ID header.
// Not needed when the client targets a tenant subdomain or custom domain.
func WithTenant(tenantID string) ClientOption {
	return func(c *Client) {
		c.tenantID = tenantID
	}
}

// NewClient creates a new NodeGuard platform client
func NewClient(baseURL string, options ...ClientOption) *Client {
	client := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		version: "v1",
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// Workflow represents a workflow definition
type Workflow struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	Nodes       []map[string]interface{} `json:"nodes"`
	Edges       []map[string]interface{} `json:"edges"`
	IsActive    bool                     `json:"is_active"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// WorkflowExecution represents one recorded workflow run
type WorkflowExecution struct {
	ID          string    `json:"id"`
	WorkflowID  string    `json:"workflow_id"`
	ExecutionID string    `json:"execution_id,omitempty"`
	Status      string    `json:"status"`
	TriggerType string    `json:"trigger_type"`
	TriggeredAt time.Time `json:"triggered_at"`
	DurationMs  int64     `json:"duration_ms,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Incident represents a tracked security incident
type Incident struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	ThreatType  string    `json:"threat_type,omitempty"`
	RiskScore   float64   `json:"risk_score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ThreatIndicator represents one IOC
type ThreatIndicator struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Value      string    `json:"value"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LookupResult is the response of an IOC lookup
type LookupResult struct {
	Value      string             `json:"value"`
	Known      bool               `json:"known"`
	Indicators []*ThreatIndicator `json:"indicators"`
}

// Tenant represents a tenant account
type Tenant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Subdomain    string    `json:"subdomain"`
	CustomDomain string    `json:"custom_domain,omitempty"`
	Status       string    `json:"status"`
	Plan         string    `json:"plan"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginResponse is the response of a successful login
type LoginResponse struct {
	Token string                 `json:"token"`
	User  map[string]interface{} `json:"user"`
}

// Error represents an API error response
type Error struct {
	Message   string `json:"error"`
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// Login authenticates and stores the returned token on the client
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var result LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.makeRequest(ctx, "POST", "/auth/login", body, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// CurrentTenant retrieves the tenant resolved for this client
func (c *Client) CurrentTenant(ctx context.Context) (*Tenant, error) {
	var result Tenant
	err := c.makeRequest(ctx, "GET", "/tenants/current", nil, &result)
	return &result, err
}

// Workflow Management Methods

// CreateWorkflow creates a new workflow
func (c *Client) CreateWorkflow(ctx context.Context, workflow *Workflow) (*Workflow, error) {
	var result struct {
		Workflow *Workflow `json:"workflow"`
	}
	err := c.makeRequest(ctx, "POST", "/workflows", workflow, &result)
	return result.Workflow, err
}

// GetWorkflows retrieves the tenant's workflows
func (c *Client) GetWorkflows(ctx context.Context, activeOnly bool) ([]*Workflow, error) {
	var result []*Workflow
	path := "/workflows"
	if activeOnly {
		path += "?active=true"
	}
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return result, err
}

// GetWorkflow retrieves a specific workflow
func (c *Client) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var result Workflow
	err := c.makeRequest(ctx, "GET", fmt.Sprintf("/workflows/%s", id), nil, &result)
	return &result, err
}

// UpdateWorkflow updates an existing workflow
func (c *Client) UpdateWorkflow(ctx context.Context, id string, workflow *Workflow) (*Workflow, error) {
	var result struct {
		Workflow *Workflow `json:"workflow"`
	}
	err := c.makeRequest(ctx, "PUT", fmt.Sprintf("/workflows/%s", id), workflow, &result)
	return result.Workflow, err
}

// DeleteWorkflow deletes a workflow
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	return c.makeRequest(ctx, "DELETE", fmt.Sprintf("/workflows/%s", id), nil, nil)
}

// GetWorkflowExecutions retrieves recent executions of a workflow
func (c *Client) GetWorkflowExecutions(ctx context.Context, id string, limit int) ([]*WorkflowExecution, error) {
	var result []*WorkflowExecution
	path := fmt.Sprintf("/workflows/%s/executions", id)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return result, err
}

// TriggerWorkflow requests a manual run of a workflow
func (c *Client) TriggerWorkflow(ctx context.Context, id string, event map[string]interface{}) error {
	return c.makeRequest(ctx, "POST", fmt.Sprintf("/workflows/%s/trigger", id), event, nil)
}

// Incident Management Methods

// CreateIncident creates a new incident
func (c *Client) CreateIncident(ctx context.Context, incident *Incident) (*Incident, error) {
	var result Incident
	err := c.makeRequest(ctx, "POST", "/incidents", incident, &result)
	return &result, err
}

// GetIncidents retrieves the tenant's incidents
func (c *Client) GetIncidents(ctx context.Context, severity string, limit, offset int) ([]*Incident, error) {
	var result []*Incident
	params := url.Values{}
	if severity != "" {
		params.Set("severity", severity)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	path := "/incidents"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return result, err
}

// GetIncident retrieves a specific incident
func (c *Client) GetIncident(ctx context.Context, id string) (*Incident, error) {
	var result Incident
	err := c.makeRequest(ctx, "GET", fmt.Sprintf("/incidents/%s", id), nil, &result)
	return &result, err
}

// UpdateIncident updates an existing incident
func (c *Client) UpdateIncident(ctx context.Context, id string, incident *Incident) (*Incident, error) {
	var result Incident
	err := c.makeRequest(ctx, "PUT", fmt.Sprintf("/incidents/%s", id), incident, &result)
	return &result, err
}

// GetIncidentStats retrieves per-status incident counts
func (c *Client) GetIncidentStats(ctx context.Context) (map[string]int64, error) {
	var result map[string]int64
	err := c.makeRequest(ctx, "GET", "/incidents/stats", nil, &result)
	return result, err
}

// Threat Intelligence Methods

// CreateIndicator creates a new threat indicator
func (c *Client) CreateIndicator(ctx context.Context, indicator *ThreatIndicator) (*ThreatIndicator, error) {
	var result ThreatIndicator
	err := c.makeRequest(ctx, "POST", "/threat-intel/indicators", indicator, &result)
	return &result, err
}

// GetIndicators retrieves the tenant's threat indicators
func (c *Client) GetIndicators(ctx context.Context, indicatorType string) ([]*ThreatIndicator, error) {
	var result []*ThreatIndicator
	path := "/threat-intel/indicators"
	if indicatorType != "" {
		path += "?type=" + url.QueryEscape(indicatorType)
	}
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return result, err
}

// LookupIndicator checks whether a value is a known IOC
func (c *Client) LookupIndicator(ctx context.Context, value string) (*LookupResult, error) {
	var result LookupResult
	path := "/threat-intel/lookup?value=" + url.QueryEscape(value)
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return &result, err
}

// DeleteIndicator deletes a threat indicator
func (c *Client) DeleteIndicator(ctx context.Context, id string) error {
	return c.makeRequest(ctx, "DELETE", fmt.Sprintf("/threat-intel/indicators/%s", id), nil, nil)
}

// Private helper methods

func (c *Client) makeRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := fmt.Sprintf("%s/api/%s%s", c.baseURL, c.version, path)

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.tenantID != "" {
		req.Header.Set("X-Tenant-ID", c.tenantID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr Error
		if err := json.Unmarshal(respBody, &apiErr); err != nil {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return &apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
