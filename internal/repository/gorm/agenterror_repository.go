package gorm

import (
	"context"
	"errors"

	"trustplane/domain/agenterror"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type AgentErrorRepository struct {
	db *gorm.DB
}

func NewAgentErrorRepository(db *gorm.DB) agenterror.Repository {
	return &AgentErrorRepository{db: db}
}

// Record upserts by (agent_id, error_id). The lookup-then-insert race is
// closed by the unique index: a losing insert retries as an increment.
func (r *AgentErrorRepository) Record(ctx context.Context, e *agenterror.AgentError) (bool, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		var existing agenterror.AgentError
		err := r.db.WithContext(ctx).
			Where("agent_id = ? AND error_id = ?", e.AgentID, e.ErrorID).
			First(&existing).Error

		if err == nil {
			res := r.db.WithContext(ctx).Model(&agenterror.AgentError{}).
				Where("agent_id = ? AND error_id = ?", e.AgentID, e.ErrorID).
				Updates(map[string]interface{}{
					"occurrence_count": gorm.Expr("occurrence_count + ?", e.OccurrenceCount),
					"last_occurrence":  e.LastOccurrence,
					"reported_at":      e.ReportedAt,
				})
			return false, res.Error
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}

		e.ID = "err_" + ulid.Make().String()
		if e.Status == "" {
			e.Status = agenterror.StatusNew
		}
		if createErr := r.db.WithContext(ctx).Create(e).Error; createErr == nil {
			return true, nil
		} else {
			// Unique index collision means a concurrent report inserted the
			// row first; loop back onto the duplicate path.
			lastErr = createErr
		}
	}

	return false, lastErr
}

func (r *AgentErrorRepository) FindByAgentAndErrorID(ctx context.Context, agentID, errorID string) (*agenterror.AgentError, error) {
	var e agenterror.AgentError
	err := r.db.WithContext(ctx).Where("agent_id = ? AND error_id = ?", agentID, errorID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *AgentErrorRepository) FindAllByAgent(ctx context.Context, agentID string) ([]agenterror.AgentError, error) {
	var errs []agenterror.AgentError
	err := r.db.WithContext(ctx).Where("agent_id = ?", agentID).Order("last_occurrence DESC").Find(&errs).Error
	if err != nil {
		return nil, err
	}
	return errs, nil
}

func (r *AgentErrorRepository) CreateReport(ctx context.Context, report *agenterror.Report) error {
	report.ID = "rpt_" + ulid.Make().String()
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *AgentErrorRepository) FindReportsByAgent(ctx context.Context, agentID string) ([]agenterror.Report, error) {
	var reports []agenterror.Report
	err := r.db.WithContext(ctx).Where("agent_id = ?", agentID).Order("reported_at DESC").Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
