// Package heartbeat sends the periodic liveness signal that keeps the agent
// marked online on the control plane.
package heartbeat

import (
	"context"
	"fmt"

	"trustplane/app/services/agentstate"
	"trustplane/config/appconf"
	"trustplane/internal/apiserver"
)

type Service interface {
	Send(ctx context.Context) error
}

type heartbeatService struct {
	apiserver  apiserver.HeartbeatOperations
	agentstate agentstate.Operations
}

func New() (*heartbeatService, error) {
	state := agentstate.New(appconf.AgentStatePath())
	if err := state.Load(); err != nil {
		return nil, err
	}

	client, err := apiserver.NewDefaultClient(state)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	return NewWithDependencies(client, state), nil
}

func NewWithDependencies(
	apiserver apiserver.HeartbeatOperations,
	agentstate agentstate.Operations,
) *heartbeatService {
	return &heartbeatService{
		apiserver:  apiserver,
		agentstate: agentstate,
	}
}

func (s *heartbeatService) Send(ctx context.Context) error {
	agentID := s.agentstate.GetAgentID()
	if agentID == "" {
		return fmt.Errorf("agent not registered: missing agent ID")
	}

	resp, err := s.apiserver.Heartbeat(ctx, apiserver.HeartbeatRequest{
		AgentID: agentID,
		Status:  "Healthy",
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("heartbeat rejected: %s", resp.Message)
	}

	return nil
}
