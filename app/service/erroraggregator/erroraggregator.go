// Package erroraggregator ingests batches of agent-reported runtime errors,
// deduplicating on (agent id, error id) and writing one audit envelope per
// batch. Items are processed best-effort: a bad record is counted and
// skipped, never rolled back across the batch.
package erroraggregator

import (
	"context"
	"fmt"
	"time"

	"trustplane/domain/agent"
	"trustplane/domain/agenterror"

	log "github.com/sirupsen/logrus"
)

// AgentLookup resolves an agent id to a registered, active agent.
type AgentLookup interface {
	Get(ctx context.Context, id string) (*agent.Agent, error)
}

type Service interface {
	Report(ctx context.Context, req ReportRequest) (*ReportResult, error)
	ListErrors(ctx context.Context, agentID string) ([]agenterror.AgentError, error)
	ListReports(ctx context.Context, agentID string) ([]agenterror.Report, error)
}

type ReportRequest struct {
	AgentID    string
	ReportedAt time.Time
	Errors     []ErrorItem
}

// ErrorItem is one reported error occurrence. OccurrenceCount below one is
// treated as one; zero timestamps fall back to the occurrence time.
type ErrorItem struct {
	ErrorID         string
	Severity        string
	Category        string
	Source          string
	Message         string
	StackTrace      string
	AdditionalData  string
	OccurredAt      time.Time
	OccurrenceCount int
	FirstOccurrence time.Time
	LastOccurrence  time.Time
}

type ReportResult struct {
	Report      *agenterror.Report
	FailedCount int
	ProcessedAt time.Time
}

type AggregatorService struct {
	errors agenterror.Repository
	agents AgentLookup
}

func New(errors agenterror.Repository, agents AgentLookup) *AggregatorService {
	return &AggregatorService{errors: errors, agents: agents}
}

// Report records every item in the batch and always writes the audit
// envelope, even when some items fail. The envelope's status distinguishes
// a clean batch from a partial one.
func (s *AggregatorService) Report(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	if _, err := s.agents.Get(ctx, req.AgentID); err != nil {
		return nil, err
	}

	reportedAt := req.ReportedAt.UTC()
	if req.ReportedAt.IsZero() {
		reportedAt = time.Now().UTC()
	}

	var processed, newCount, duplicateCount, failed int
	for _, item := range req.Errors {
		if item.ErrorID == "" {
			failed++
			log.WithFields(log.Fields{
				"agent_id": req.AgentID,
				"source":   item.Source,
			}).Warn("skipping error item without an error id")
			continue
		}

		created, err := s.errors.Record(ctx, buildAgentError(req.AgentID, reportedAt, item))
		if err != nil {
			failed++
			log.WithFields(log.Fields{
				"agent_id": req.AgentID,
				"error_id": item.ErrorID,
			}).Errorf("failed to record error: %v", err)
			continue
		}

		processed++
		if created {
			newCount++
		} else {
			duplicateCount++
		}
	}

	status := agenterror.ReportStatusCompleted
	if failed > 0 {
		status = agenterror.ReportStatusPartial
	}
	report := &agenterror.Report{
		AgentID:             req.AgentID,
		ReportedAt:          reportedAt,
		TotalErrorCount:     len(req.Errors),
		ProcessedErrorCount: processed,
		NewErrorCount:       newCount,
		DuplicateErrorCount: duplicateCount,
		Status:              status,
	}
	if err := s.errors.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store error report: %w", err)
	}

	return &ReportResult{
		Report:      report,
		FailedCount: failed,
		ProcessedAt: time.Now().UTC(),
	}, nil
}

func (s *AggregatorService) ListErrors(ctx context.Context, agentID string) ([]agenterror.AgentError, error) {
	return s.errors.FindAllByAgent(ctx, agentID)
}

func (s *AggregatorService) ListReports(ctx context.Context, agentID string) ([]agenterror.Report, error) {
	return s.errors.FindReportsByAgent(ctx, agentID)
}

func buildAgentError(agentID string, reportedAt time.Time, item ErrorItem) *agenterror.AgentError {
	occurredAt := item.OccurredAt.UTC()
	if item.OccurredAt.IsZero() {
		occurredAt = reportedAt
	}

	occurrences := item.OccurrenceCount
	if occurrences < 1 {
		occurrences = 1
	}

	first := item.FirstOccurrence.UTC()
	if item.FirstOccurrence.IsZero() {
		first = occurredAt
	}
	last := item.LastOccurrence.UTC()
	if item.LastOccurrence.IsZero() {
		last = occurredAt
	}

	return &agenterror.AgentError{
		AgentID:         agentID,
		ErrorID:         item.ErrorID,
		Severity:        item.Severity,
		Category:        item.Category,
		Source:          item.Source,
		Message:         item.Message,
		StackTrace:      item.StackTrace,
		AdditionalData:  item.AdditionalData,
		OccurredAt:      occurredAt,
		OccurrenceCount: occurrences,
		FirstOccurrence: first,
		LastOccurrence:  last,
		ReportedAt:      reportedAt,
	}
}
