package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client interface for interacting with the trustplane API
type Client interface {
	ListAgents(filters *AgentFilters) ([]Agent, error)
	GetAgent(agentID string) (*Agent, error)
	DeactivateAgent(agentID string) (*DeactivateResponse, error)
	ListCertificates(agentID string) ([]CertificateSummary, error)
	RevokeCertificate(req *RevokeCertificateRequest) (*RevokeCertificateResponse, error)
	ListSubmissions(filters *SubmissionFilters) ([]Submission, error)
	ListErrors(agentID string) ([]AgentError, error)
}

// HTTPClient implements the Client interface
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new HTTP client
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Agent mirrors the server's agent representation.
type Agent struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Type               string     `json:"type"`
	MachineName        string     `json:"machine_name"`
	Version            string     `json:"version"`
	IPAddress          string     `json:"ip_address"`
	Domain             string     `json:"domain"`
	OperatingSystem    string     `json:"operating_system"`
	IsActive           bool       `json:"is_active"`
	IsOnline           bool       `json:"is_online"`
	Status             string     `json:"status"`
	StatusMessage      string     `json:"status_message"`
	RegisteredAt       time.Time  `json:"registered_at"`
	LastHeartbeat      *time.Time `json:"last_heartbeat,omitempty"`
	LastDataCollection *time.Time `json:"last_data_collection,omitempty"`
}

// AgentFilters narrows an agent listing.
type AgentFilters struct {
	Type   string
	Online string
}

type DeactivateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CertificateSummary is one row in a per-agent certificate listing.
type CertificateSummary struct {
	Thumbprint       string     `json:"thumbprint"`
	SerialNumber     string     `json:"serial_number"`
	Subject          string     `json:"subject"`
	Status           string     `json:"status"`
	IssuedAt         time.Time  `json:"issued_at"`
	NotBefore        time.Time  `json:"not_before"`
	NotAfter         time.Time  `json:"not_after"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	RevocationReason string     `json:"revocation_reason,omitempty"`
}

type certificateListResponse struct {
	Success      bool                 `json:"success"`
	Certificates []CertificateSummary `json:"certificates"`
}

type RevokeCertificateRequest struct {
	AgentID               string `json:"agent_id"`
	CertificateThumbprint string `json:"certificate_thumbprint"`
	Reason                string `json:"reason"`
}

type RevokeCertificateResponse struct {
	Success   bool      `json:"success"`
	RevokedAt time.Time `json:"revoked_at"`
}

// Submission mirrors the server's submission representation.
type Submission struct {
	ID             string     `json:"id"`
	AgentID        string     `json:"agent_id"`
	DataType       string     `json:"data_type"`
	RecordCount    int        `json:"record_count"`
	DataSizeBytes  int64      `json:"data_size_bytes"`
	FileHash       string     `json:"file_hash"`
	Status         string     `json:"status"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	ProcessedCount int        `json:"processed_count"`
	ErrorCount     int        `json:"error_count"`
	ErrorDetails   string     `json:"error_details,omitempty"`
	SubmittedAt    time.Time  `json:"submitted_at"`
}

// SubmissionFilters narrows a submission listing.
type SubmissionFilters struct {
	AgentID  string
	Status   string
	DataType string
}

// AgentError mirrors the server's deduplicated error rows.
type AgentError struct {
	ID              string    `json:"id"`
	AgentID         string    `json:"agent_id"`
	ErrorID         string    `json:"error_id"`
	Severity        string    `json:"severity"`
	Category        string    `json:"category"`
	Source          string    `json:"source"`
	Message         string    `json:"message"`
	OccurrenceCount int       `json:"occurrence_count"`
	FirstOccurrence time.Time `json:"first_occurrence"`
	LastOccurrence  time.Time `json:"last_occurrence"`
	Status          string    `json:"status"`
}

// ListAgents lists active agents, optionally filtered by type and online state
func (c *HTTPClient) ListAgents(filters *AgentFilters) ([]Agent, error) {
	query := url.Values{}
	if filters != nil {
		if filters.Type != "" {
			query.Set("type", filters.Type)
		}
		if filters.Online != "" {
			query.Set("online", filters.Online)
		}
	}

	var agents []Agent
	if err := c.getJSON("/api/v1/agents", query, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// GetAgent gets agent details by ID
func (c *HTTPClient) GetAgent(agentID string) (*Agent, error) {
	var agent Agent
	if err := c.getJSON("/api/v1/agents/"+agentID, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// DeactivateAgent marks an agent inactive
func (c *HTTPClient) DeactivateAgent(agentID string) (*DeactivateResponse, error) {
	var resp DeactivateResponse
	if err := c.postJSON("/api/v1/agents/"+agentID+"/deactivate", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListCertificates lists an agent's certificates, newest first
func (c *HTTPClient) ListCertificates(agentID string) ([]CertificateSummary, error) {
	query := url.Values{}
	query.Set("agent_id", agentID)

	var resp certificateListResponse
	if err := c.getJSON("/api/v1/certificates", query, &resp); err != nil {
		return nil, err
	}
	return resp.Certificates, nil
}

// RevokeCertificate revokes a certificate by thumbprint
func (c *HTTPClient) RevokeCertificate(req *RevokeCertificateRequest) (*RevokeCertificateResponse, error) {
	var resp RevokeCertificateResponse
	if err := c.postJSON("/api/v1/certificates/revoke", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSubmissions lists data submissions with optional filters
func (c *HTTPClient) ListSubmissions(filters *SubmissionFilters) ([]Submission, error) {
	query := url.Values{}
	if filters != nil {
		if filters.AgentID != "" {
			query.Set("agent_id", filters.AgentID)
		}
		if filters.Status != "" {
			query.Set("status", filters.Status)
		}
		if filters.DataType != "" {
			query.Set("data_type", filters.DataType)
		}
	}

	var submissions []Submission
	if err := c.getJSON("/api/v1/data/submissions", query, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// ListErrors lists an agent's deduplicated errors, most recent first
func (c *HTTPClient) ListErrors(agentID string) ([]AgentError, error) {
	query := url.Values{}
	query.Set("agent_id", agentID)

	var errs []AgentError
	if err := c.getJSON("/api/v1/errors", query, &errs); err != nil {
		return nil, err
	}
	return errs, nil
}

func (c *HTTPClient) getJSON(path string, query url.Values, result any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	resp, err := c.client.Get(u.String())
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, result)
}

func (c *HTTPClient) postJSON(path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, result)
}

func decodeResponse(resp *http.Response, result any) error {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
