// Package directoryuser holds the user records harvested from a directory
// service and shipped to the server inside Users data submissions.
package directoryuser

import "time"

type DirectoryUser struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Username is the natural key: submissions upsert by it, they never
	// create duplicates and never delete absentees.
	Username    string `json:"username" gorm:"uniqueIndex"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Domain      string `json:"domain"`
	Enabled     bool   `json:"enabled"`

	LastLogonAt *time.Time `json:"last_logon_at,omitempty"`

	// Source identifies which agent submission produced or refreshed the row.
	Source   string `json:"source"`
	SourceID string `json:"source_id"`
}

type Filters struct {
	Domain  *string
	Enabled *bool
}
