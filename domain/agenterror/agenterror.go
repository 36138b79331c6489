package agenterror

import "time"

// Statuses for the deduplicated error rows.
const (
	StatusNew          = "New"
	StatusAcknowledged = "Acknowledged"
	StatusResolved     = "Resolved"
)

// Report envelope statuses.
const (
	ReportStatusCompleted = "Completed"
	ReportStatusPartial   = "Partial"
)

// AgentError is the deduplicated unit keyed by (agent_id, error_id). A
// repeated report of the same key bumps OccurrenceCount and refreshes
// LastOccurrence instead of inserting a second row.
type AgentError struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AgentID string `json:"agent_id" gorm:"uniqueIndex:idx_agent_errors_agent_error"`
	ErrorID string `json:"error_id" gorm:"uniqueIndex:idx_agent_errors_agent_error"`

	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Source         string `json:"source"`
	Message        string `json:"message"`
	StackTrace     string `json:"stack_trace,omitempty"`
	AdditionalData string `json:"additional_data,omitempty"`

	OccurredAt      time.Time `json:"occurred_at"`
	OccurrenceCount int       `json:"occurrence_count"`
	FirstOccurrence time.Time `json:"first_occurrence"`
	LastOccurrence  time.Time `json:"last_occurrence"`
	ReportedAt      time.Time `json:"reported_at"`

	Status string `json:"status"`
}

// Report is the audit envelope written once per ReportErrors batch.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AgentID    string    `json:"agent_id" gorm:"index"`
	ReportedAt time.Time `json:"reported_at"`

	TotalErrorCount     int `json:"total_error_count"`
	ProcessedErrorCount int `json:"processed_error_count"`
	NewErrorCount       int `json:"new_error_count"`
	DuplicateErrorCount int `json:"duplicate_error_count"`

	Status string `json:"status"`
}
