package certificate

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, cert *Certificate) error
	FindByThumbprint(ctx context.Context, thumbprint string) (*Certificate, error)
	FindByAgentAndThumbprint(ctx context.Context, agentID, thumbprint string) (*Certificate, error)
	FindAllByAgent(ctx context.Context, agentID string) ([]Certificate, error)
	// Terminate moves a non-Revoked row to the given terminal status using a
	// conditional update; it reports whether this call won the transition.
	// Two concurrent revocations of the same thumbprint see exactly one true.
	Terminate(ctx context.Context, agentID, thumbprint string, status Status, reason string, at time.Time) (bool, error)
	Transaction(ctx context.Context, fn func(Repository) error) error
}
