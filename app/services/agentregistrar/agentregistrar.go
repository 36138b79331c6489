// Package agentregistrar performs the registration handshake with the
// control plane and persists the issued identity. Registration is an
// idempotent upsert keyed by machine name and type, so running it on every
// startup is safe and rotates the API key.
package agentregistrar

import (
	"context"
	"fmt"

	"trustplane/app/services/agentstate"
	"trustplane/app/services/hostfacts"
	"trustplane/internal/apiserver"
	"trustplane/version"
)

type Registrar struct {
	api       apiserver.RegistrationOperations
	state     agentstate.Operations
	facts     hostfacts.Collector
	name      string
	agentType string
}

type Config struct {
	API   apiserver.RegistrationOperations
	State agentstate.Operations
	Facts hostfacts.Collector
	// Name is the display name reported to the control plane; defaults to
	// "<machine name> agent".
	Name string
	// AgentType is the wire-format agent type, e.g. "Server".
	AgentType string
}

func New(cfg Config) *Registrar {
	facts := cfg.Facts
	if facts == nil {
		facts = hostfacts.New()
	}

	agentType := cfg.AgentType
	if agentType == "" {
		agentType = "Server"
	}

	return &Registrar{
		api:       cfg.API,
		state:     cfg.State,
		facts:     facts,
		name:      cfg.Name,
		agentType: agentType,
	}
}

func (r *Registrar) Register(ctx context.Context) (*apiserver.RegistrationResponse, error) {
	facts, err := r.facts.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect host facts: %w", err)
	}

	name := r.name
	if name == "" {
		name = facts.MachineName + " agent"
	}

	resp, err := r.api.Register(ctx, apiserver.RegistrationRequest{
		Name:            name,
		Type:            r.agentType,
		Version:         version.Version,
		MachineName:     facts.MachineName,
		IPAddress:       facts.IPAddress,
		Domain:          facts.Domain,
		OperatingSystem: facts.OperatingSystem,
	})
	if err != nil {
		return nil, err
	}

	if err := r.state.SetCredentials(resp.AgentID, resp.APIKey); err != nil {
		return nil, fmt.Errorf("failed to persist credentials: %w", err)
	}
	if err := r.state.SetCollection(resp.Configuration.DataTypes, resp.Configuration.IntervalMinutes); err != nil {
		return nil, fmt.Errorf("failed to persist collection config: %w", err)
	}

	return resp, nil
}
