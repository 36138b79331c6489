package certificate

import (
	"errors"
	"time"
)

var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrAlreadyRevoked      = errors.New("certificate already revoked")
)

// Status is the certificate lifecycle state. Active is the only non-terminal
// state: Superseded and Revoked rows never transition again.
type Status string

const (
	StatusActive     Status = "Active"
	StatusSuperseded Status = "Superseded"
	StatusRevoked    Status = "Revoked"
)

// ReasonSuperseded marks a soft revocation caused by renewal, distinguished
// from explicit revocation by reason rather than by a separate flag.
const ReasonSuperseded = "Superseded"

type Certificate struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AgentID      string `json:"agent_id" gorm:"index"`
	Thumbprint   string `json:"thumbprint" gorm:"uniqueIndex"`
	SerialNumber string `json:"serial_number"`
	Subject      string `json:"subject"`
	Issuer       string `json:"issuer"`

	NotBefore time.Time `json:"not_before"`
	NotAfter  time.Time `json:"not_after"`
	IssuedAt  time.Time `json:"issued_at"`

	Status Status `json:"status"`
	Usage  string `json:"usage"`

	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	RevocationReason string     `json:"revocation_reason,omitempty"`
}
