package agenterror

import "context"

type Repository interface {
	// Record upserts one error unit: an existing (agent_id, error_id) row
	// gets occurrence_count bumped by e.OccurrenceCount with last_occurrence
	// and reported_at refreshed; otherwise e is inserted as a new row. The
	// returned flag reports whether a new row was created.
	Record(ctx context.Context, e *AgentError) (created bool, err error)
	FindByAgentAndErrorID(ctx context.Context, agentID, errorID string) (*AgentError, error)
	FindAllByAgent(ctx context.Context, agentID string) ([]AgentError, error)
	CreateReport(ctx context.Context, report *Report) error
	FindReportsByAgent(ctx context.Context, agentID string) ([]Report, error)
}
