package agent

import (
	"errors"
	"time"
)

var (
	ErrAgentNotFound = errors.New("agent not found")
	ErrInvalidType   = errors.New("invalid agent type")
)

// Type classifies the host an agent runs on.
type Type string

const (
	TypeDomainController Type = "DomainController"
	TypeServer           Type = "Server"
	TypeWorkstation      Type = "Workstation"
)

// ParseType validates a wire-format agent type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeDomainController, TypeServer, TypeWorkstation:
		return Type(s), nil
	}
	return "", ErrInvalidType
}

// Agent lifecycle statuses. Agents are never deleted; deactivation is the
// terminal transition and a later registration reactivates in place.
const (
	StatusRegistered  = "Registered"
	StatusDeactivated = "Deactivated"
)

type Agent struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	Name            string `json:"name"`
	Type            Type   `json:"type" gorm:"uniqueIndex:idx_agents_machine_type"`
	MachineName     string `json:"machine_name" gorm:"uniqueIndex:idx_agents_machine_type"`
	Version         string `json:"version"`
	IPAddress       string `json:"ip_address"`
	Domain          string `json:"domain"`
	OperatingSystem string `json:"operating_system"`

	// Configuration is an opaque blob owned by the agent; the server only
	// stores and echoes it.
	Configuration string `json:"configuration"`

	// APIKey is the opaque credential issued at registration.
	APIKey string `json:"-"`

	IsActive      bool   `json:"is_active"`
	IsOnline      bool   `json:"is_online"`
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`

	RegisteredAt       time.Time  `json:"registered_at"`
	LastHeartbeat      *time.Time `json:"last_heartbeat,omitempty"`
	LastDataCollection *time.Time `json:"last_data_collection,omitempty"`
}

type Filters struct {
	Type     *Type
	IsOnline *bool
}
