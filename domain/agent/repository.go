package agent

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, agent *Agent) error
	Update(ctx context.Context, agent *Agent) error
	FindByID(ctx context.Context, id string) (*Agent, error)
	FindByMachine(ctx context.Context, machineName string, typ Type) (*Agent, error)
	// FindAllActive returns active agents only; deactivated agents stay in
	// the store but drop out of every read projection.
	FindAllActive(ctx context.Context, filters Filters) ([]Agent, error)
	// MarkOfflineSince flips is_online off for agents that have not sent a
	// heartbeat since cutoff. Heartbeats never mark agents offline; this is
	// the only path that does. Returns how many rows transitioned.
	MarkOfflineSince(ctx context.Context, cutoff time.Time) (int64, error)
	Transaction(ctx context.Context, fn func(Repository) error) error
}
