package apiserver

import (
	"context"
	"encoding/json"
	"time"

	"trustplane/domain/submission"
)

type RegistrationOperations interface {
	Register(ctx context.Context, req RegistrationRequest) (*RegistrationResponse, error)
}

type HeartbeatOperations interface {
	Heartbeat(ctx context.Context, req HeartbeatRequest) (*HeartbeatResponse, error)
}

type SubmissionOperations interface {
	SubmitData(ctx context.Context, req SubmissionRequest) (*SubmissionResponse, error)
}

type ErrorReportOperations interface {
	ReportErrors(ctx context.Context, req ErrorReportRequest) (*ErrorReportResponse, error)
}

type RegistrationRequest struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	Version         string `json:"version,omitempty"`
	MachineName     string `json:"machine_name"`
	IPAddress       string `json:"ip_address,omitempty"`
	Domain          string `json:"domain,omitempty"`
	OperatingSystem string `json:"os,omitempty"`
	Configuration   string `json:"configuration,omitempty"`
}

type CollectionConfig struct {
	DataTypes       []submission.DataType `json:"data_types"`
	IntervalMinutes int                   `json:"interval_minutes"`
}

type RegistrationResponse struct {
	AgentID       string           `json:"agent_id"`
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	APIKey        string           `json:"api_key"`
	Configuration CollectionConfig `json:"configuration"`
}

type HeartbeatRequest struct {
	AgentID       string `json:"agent_id"`
	Status        string `json:"status,omitempty"`
	StatusMessage string `json:"status_message,omitempty"`
}

type HeartbeatResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	UpdateAvailable bool   `json:"update_available"`
}

type SubmissionRequest struct {
	AgentID     string              `json:"agent_id"`
	DataType    submission.DataType `json:"data_type"`
	RecordCount int                 `json:"record_count"`
	Data        json.RawMessage     `json:"data,omitempty"`
	DataHash    string              `json:"data_hash,omitempty"`
	Metadata    string              `json:"metadata,omitempty"`
}

type SubmissionResponse struct {
	SubmissionID string     `json:"submission_id"`
	Success      bool       `json:"success"`
	Message      string     `json:"message"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

type ErrorItem struct {
	ErrorID         string     `json:"error_id"`
	Severity        string     `json:"severity,omitempty"`
	Category        string     `json:"category,omitempty"`
	Source          string     `json:"source,omitempty"`
	Message         string     `json:"message,omitempty"`
	StackTrace      string     `json:"stack_trace,omitempty"`
	AdditionalData  string     `json:"additional_data,omitempty"`
	OccurredAt      *time.Time `json:"occurred_at,omitempty"`
	OccurrenceCount int        `json:"occurrence_count,omitempty"`
	FirstOccurrence *time.Time `json:"first_occurrence,omitempty"`
	LastOccurrence  *time.Time `json:"last_occurrence,omitempty"`
}

type ErrorReportRequest struct {
	AgentID    string      `json:"agent_id"`
	ReportedAt *time.Time  `json:"reported_at,omitempty"`
	Errors     []ErrorItem `json:"errors"`
}

type ErrorReportResponse struct {
	Success             bool      `json:"success"`
	Message             string    `json:"message"`
	ProcessedErrorCount int       `json:"processed_error_count"`
	NewErrorCount       int       `json:"new_error_count"`
	DuplicateErrorCount int       `json:"duplicate_error_count"`
	ProcessedAt         time.Time `json:"processed_at"`
}

func (c *client) Register(ctx context.Context, req RegistrationRequest) (*RegistrationResponse, error) {
	var result RegistrationResponse
	if err := c.Post(ctx, "/api/v1/agents/register", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) Heartbeat(ctx context.Context, req HeartbeatRequest) (*HeartbeatResponse, error) {
	var result HeartbeatResponse
	if err := c.Post(ctx, "/api/v1/agents/heartbeat", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) SubmitData(ctx context.Context, req SubmissionRequest) (*SubmissionResponse, error) {
	var result SubmissionResponse
	if err := c.Post(ctx, "/api/v1/data/submit", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) ReportErrors(ctx context.Context, req ErrorReportRequest) (*ErrorReportResponse, error) {
	var result ErrorReportResponse
	if err := c.Post(ctx, "/api/v1/errors/report", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
