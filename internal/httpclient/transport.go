// Package httpclient provides HTTP client utilities with agent identification
// and credential headers.
package httpclient

import (
	"net/http"
	"runtime"
	"time"

	"trustplane/version"
)

// CredentialSource supplies the per-agent credentials issued at
// registration. An empty agent ID means the agent is not registered yet and
// no credential headers are sent.
type CredentialSource interface {
	GetAgentID() string
	GetAPIKey() string
}

// AgentTransport wraps an http.RoundTripper and injects agent identification
// headers plus, when available, the registration credentials.
type AgentTransport struct {
	Base        http.RoundTripper
	Credentials CredentialSource
}

// RoundTrip implements http.RoundTripper.
func (t *AgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid mutating the original
	clone := req.Clone(req.Context())

	clone.Header.Set("X-Agent-Version", version.Version)
	clone.Header.Set("X-Agent-OS", runtime.GOOS)
	clone.Header.Set("X-Agent-Arch", runtime.GOARCH)

	if t.Credentials != nil {
		if agentID := t.Credentials.GetAgentID(); agentID != "" {
			clone.Header.Set("X-Agent-ID", agentID)
		}
		if apiKey := t.Credentials.GetAPIKey(); apiKey != "" {
			clone.Header.Set("X-API-Key", apiKey)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// NewClient returns an *http.Client configured with AgentTransport and the
// specified timeout.
func NewClient(timeout time.Duration, creds CredentialSource) *http.Client {
	return &http.Client{
		Transport: &AgentTransport{Credentials: creds},
		Timeout:   timeout,
	}
}
