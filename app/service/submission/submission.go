// Package submission ingests bulk data payloads from agents. Every call
// leaves a durable submission row behind: payloads are dispatched to a
// per-type handler and the row records the outcome either way.
package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trustplane/domain/agent"
	"trustplane/domain/directoryuser"
	"trustplane/domain/submission"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// retryDelay is the bookkeeping hint stored on failed submissions; the
// caller drives the actual retry.
const retryDelay = 5 * time.Minute

// AgentDirectory is the slice of the registry this processor needs: caller
// verification and the post-success collection stamp.
type AgentDirectory interface {
	Get(ctx context.Context, id string) (*agent.Agent, error)
	MarkDataCollected(ctx context.Context, agentID string, at time.Time) error
}

// Handler processes one decoded payload for a single data type.
type Handler func(ctx context.Context, sub *submission.Submission, data []byte) error

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	List(ctx context.Context, filters submission.Filters) ([]submission.Submission, error)
}

type SubmitRequest struct {
	AgentID     string
	DataType    submission.DataType
	RecordCount int
	Data        []byte
	DataHash    string
	Metadata    string
}

type SubmitResult struct {
	Submission *submission.Submission
}

// UserRecord is one directory user entry inside a Users payload.
type UserRecord struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Domain      string     `json:"domain"`
	Enabled     bool       `json:"enabled"`
	LastLogonAt *time.Time `json:"last_logon_at,omitempty"`
	SourceID    string     `json:"source_id,omitempty"`
}

type ProcessorService struct {
	submissions submission.Repository
	users       directoryuser.Repository
	agents      AgentDirectory
	handlers    map[submission.DataType]Handler
}

func New(submissions submission.Repository, users directoryuser.Repository, agents AgentDirectory) *ProcessorService {
	s := &ProcessorService{
		submissions: submissions,
		users:       users,
		agents:      agents,
	}
	s.handlers = map[submission.DataType]Handler{
		submission.DataTypeUsers:  s.processUsers,
		submission.DataTypeGroups: s.processGroups,
	}
	return s
}

// Submit records the payload as Pending, runs the type's handler
// synchronously, and finalizes the row as Completed or Failed. A handler
// failure is captured on the row with retry bookkeeping rather than
// surfaced as an operation error.
func (s *ProcessorService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if _, err := s.agents.Get(ctx, req.AgentID); err != nil {
		return nil, err
	}

	sub := &submission.Submission{
		AgentID:       req.AgentID,
		DataType:      req.DataType,
		RecordCount:   req.RecordCount,
		DataSizeBytes: int64(len(req.Data)),
		FileHash:      req.DataHash,
		Metadata:      req.Metadata,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		log.WithFields(log.Fields{
			"agent_id":  req.AgentID,
			"data_type": req.DataType,
		}).Errorf("failed to store submission: %v", err)
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	handlerErr := s.dispatch(ctx, sub, req.Data)

	now := time.Now().UTC()
	if handlerErr != nil {
		sub.Status = submission.StatusFailed
		sub.ErrorDetails = handlerErr.Error()
		sub.ErrorCount = sub.RecordCount
		sub.RetryCount++
		if sub.RetryCount < sub.MaxRetries {
			retryAt := now.Add(retryDelay)
			sub.RetryAfter = &retryAt
		}
		log.WithFields(log.Fields{
			"submission_id": sub.ID,
			"agent_id":      sub.AgentID,
			"data_type":     sub.DataType,
		}).Errorf("submission processing failed: %v", handlerErr)
	} else {
		sub.Status = submission.StatusCompleted
		sub.ProcessedAt = &now
		sub.ProcessedCount = sub.RecordCount
	}

	if err := s.submissions.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to finalize submission: %w", err)
	}

	if handlerErr == nil {
		if err := s.agents.MarkDataCollected(ctx, req.AgentID, now); err != nil {
			log.WithFields(log.Fields{
				"submission_id": sub.ID,
				"agent_id":      sub.AgentID,
			}).Warnf("failed to stamp last data collection: %v", err)
		}
	}

	return &SubmitResult{Submission: sub}, nil
}

func (s *ProcessorService) List(ctx context.Context, filters submission.Filters) ([]submission.Submission, error) {
	return s.submissions.FindAll(ctx, filters)
}

func (s *ProcessorService) dispatch(ctx context.Context, sub *submission.Submission, data []byte) error {
	handler, ok := s.handlers[sub.DataType]
	if !ok {
		log.WithFields(log.Fields{
			"submission_id": sub.ID,
			"agent_id":      sub.AgentID,
			"data_type":     sub.DataType,
		}).Warn("no handler registered for data type; payload skipped")
		return nil
	}
	return handler(ctx, sub, data)
}

// processUsers upserts directory users by username. Collection is
// additive: records absent from a payload are never deleted. Entries
// without a username are skipped so one malformed record cannot sink
// the batch.
func (s *ProcessorService) processUsers(ctx context.Context, sub *submission.Submission, data []byte) error {
	var records []UserRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse users payload: %w", err)
	}

	return s.users.Transaction(ctx, func(txRepo directoryuser.Repository) error {
		for _, record := range records {
			if record.Username == "" {
				log.WithFields(log.Fields{
					"submission_id": sub.ID,
					"agent_id":      sub.AgentID,
				}).Warn("skipping user record without a username")
				continue
			}

			existing, err := txRepo.FindByUsername(ctx, record.Username)
			if err == nil {
				existing.DisplayName = record.DisplayName
				existing.Email = record.Email
				existing.Domain = record.Domain
				existing.Enabled = record.Enabled
				existing.LastLogonAt = record.LastLogonAt
				existing.Source = sub.AgentID
				if updateErr := txRepo.Update(ctx, existing); updateErr != nil {
					return fmt.Errorf("failed to update user %q: %w", record.Username, updateErr)
				}
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to look up user %q: %w", record.Username, err)
			}

			created := &directoryuser.DirectoryUser{
				Username:    record.Username,
				DisplayName: record.DisplayName,
				Email:       record.Email,
				Domain:      record.Domain,
				Enabled:     record.Enabled,
				LastLogonAt: record.LastLogonAt,
				Source:      sub.AgentID,
				SourceID:    record.SourceID,
			}
			if createErr := txRepo.Create(ctx, created); createErr != nil {
				return fmt.Errorf("failed to create user %q: %w", record.Username, createErr)
			}
		}
		return nil
	})
}

// processGroups is a reserved placeholder: group payloads are accepted and
// acknowledged without materializing rows.
func (s *ProcessorService) processGroups(ctx context.Context, sub *submission.Submission, _ []byte) error {
	log.WithFields(log.Fields{
		"submission_id": sub.ID,
		"agent_id":      sub.AgentID,
	}).Debug("group payload accepted")
	return nil
}
