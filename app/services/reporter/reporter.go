// Package reporter buffers operational errors on the agent and ships them to
// the control plane in batches. Error IDs are derived deterministically from
// the error's identity so repeated failures fold into one server-side row.
package reporter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trustplane/app/services/agentstate"
	"trustplane/internal/apiserver"

	"github.com/google/uuid"
)

type Service interface {
	Capture(severity, category, source string, err error)
	Flush(ctx context.Context) error
	Pending() int
}

type reporterService struct {
	apiserver  apiserver.ErrorReportOperations
	agentstate agentstate.Operations

	mu      sync.Mutex
	pending map[string]*apiserver.ErrorItem
	now     func() time.Time
}

func New(api apiserver.ErrorReportOperations, state agentstate.Operations) *reporterService {
	return &reporterService{
		apiserver:  api,
		agentstate: state,
		pending:    make(map[string]*apiserver.ErrorItem),
		now:        time.Now,
	}
}

// Capture records one error occurrence. Identical errors captured between
// flushes collapse into a single item with a bumped occurrence count.
func (s *reporterService) Capture(severity, category, source string, err error) {
	if err == nil {
		return
	}

	now := s.now().UTC()
	errorID := deriveErrorID(category, source, err.Error())

	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.pending[errorID]; ok {
		item.OccurrenceCount++
		last := now
		item.LastOccurrence = &last
		return
	}

	occurred := now
	s.pending[errorID] = &apiserver.ErrorItem{
		ErrorID:         errorID,
		Severity:        severity,
		Category:        category,
		Source:          source,
		Message:         err.Error(),
		OccurredAt:      &occurred,
		OccurrenceCount: 1,
		FirstOccurrence: &occurred,
		LastOccurrence:  &occurred,
	}
}

// Flush sends the buffered errors as one report. On failure the items are
// merged back into the buffer so the next flush retries them.
func (s *reporterService) Flush(ctx context.Context) error {
	agentID := s.agentstate.GetAgentID()
	if agentID == "" {
		return fmt.Errorf("agent not registered: missing agent ID")
	}

	batch := s.takePending()
	if len(batch) == 0 {
		return nil
	}

	reportedAt := s.now().UTC()
	_, err := s.apiserver.ReportErrors(ctx, apiserver.ErrorReportRequest{
		AgentID:    agentID,
		ReportedAt: &reportedAt,
		Errors:     batch,
	})
	if err != nil {
		s.restorePending(batch)
		return err
	}

	return nil
}

func (s *reporterService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *reporterService) takePending() []apiserver.ErrorItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]apiserver.ErrorItem, 0, len(s.pending))
	for _, item := range s.pending {
		batch = append(batch, *item)
	}
	s.pending = make(map[string]*apiserver.ErrorItem)
	return batch
}

func (s *reporterService) restorePending(batch []apiserver.ErrorItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range batch {
		item := batch[i]
		if existing, ok := s.pending[item.ErrorID]; ok {
			existing.OccurrenceCount += item.OccurrenceCount
			if item.FirstOccurrence != nil {
				existing.FirstOccurrence = item.FirstOccurrence
			}
			continue
		}
		s.pending[item.ErrorID] = &item
	}
}

// deriveErrorID hashes the stable identity of an error into a UUID so the
// same failure reported across runs and agents restarts dedupes server-side.
func deriveErrorID(category, source, message string) string {
	identity := category + "/" + source + "/" + message
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(identity)).String()
}
