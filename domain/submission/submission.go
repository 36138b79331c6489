package submission

import "time"

// DataType tags the payload of a submission. The processor dispatches on it
// through a handler table; unknown values are skipped, never an error.
type DataType string

const (
	DataTypeUsers      DataType = "Users"
	DataTypeGroups     DataType = "Groups"
	DataTypePolicies   DataType = "Policies"
	DataTypeEvents     DataType = "Events"
	DataTypeLocalUsers DataType = "LocalUsers"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
)

// DefaultMaxRetries bounds the caller-driven retry bookkeeping; the
// processor itself never retries.
const DefaultMaxRetries = 3

type Submission struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AgentID       string   `json:"agent_id" gorm:"index"`
	DataType      DataType `json:"data_type"`
	RecordCount   int      `json:"record_count"`
	DataSizeBytes int64    `json:"data_size_bytes"`
	FileHash      string   `json:"file_hash"`
	Metadata      string   `json:"metadata"`

	Status         Status     `json:"status"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	ProcessedCount int        `json:"processed_count"`
	ErrorCount     int        `json:"error_count"`
	ErrorDetails   string     `json:"error_details,omitempty"`

	RetryCount int        `json:"retry_count"`
	RetryAfter *time.Time `json:"retry_after,omitempty"`
	MaxRetries int        `json:"max_retries"`

	SubmittedAt time.Time `json:"submitted_at"`
}

type Filters struct {
	AgentID  *string
	Status   *Status
	DataType *DataType
}
