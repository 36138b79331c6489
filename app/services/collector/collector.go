// Package collector gathers the data types assigned at registration from the
// host and ships them to the control plane as data submissions.
package collector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trustplane/app/services/agentstate"
	"trustplane/domain/submission"
	"trustplane/internal/apiserver"

	"github.com/labstack/gommon/log"
)

// Executor runs a collector source command and returns its combined output.
type Executor interface {
	Execute(ctx context.Context, command string) (string, error)
}

type Service interface {
	CollectAndSubmit(ctx context.Context) error
}

// UserRecord mirrors the wire format the server's Users handler parses.
type UserRecord struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name,omitempty"`
	Email       string     `json:"email,omitempty"`
	Domain      string     `json:"domain,omitempty"`
	Enabled     bool       `json:"enabled"`
	LastLogonAt *time.Time `json:"last_logon_at,omitempty"`
	SourceID    string     `json:"source_id,omitempty"`
}

type GroupRecord struct {
	Name    string   `json:"name"`
	GroupID string   `json:"group_id"`
	Members []string `json:"members,omitempty"`
}

type collectorService struct {
	apiserver  apiserver.SubmissionOperations
	agentstate agentstate.Operations
	executor   Executor
	sources    map[submission.DataType]string
}

// DefaultSources maps collectable data types to their source commands on
// this platform. Types without a source are skipped, not failed.
func DefaultSources() map[submission.DataType]string {
	return map[submission.DataType]string{
		submission.DataTypeUsers:      "getent passwd",
		submission.DataTypeLocalUsers: "getent passwd",
		submission.DataTypeGroups:     "getent group",
	}
}

func New(api apiserver.SubmissionOperations, state agentstate.Operations, executor Executor) *collectorService {
	return NewWithSources(api, state, executor, DefaultSources())
}

func NewWithSources(api apiserver.SubmissionOperations, state agentstate.Operations, executor Executor, sources map[submission.DataType]string) *collectorService {
	return &collectorService{
		apiserver:  api,
		agentstate: state,
		executor:   executor,
		sources:    sources,
	}
}

// CollectAndSubmit runs one collection cycle over every configured data
// type. Each type is collected independently; the first failure is returned
// after all types have been attempted.
func (s *collectorService) CollectAndSubmit(ctx context.Context) error {
	if s.agentstate.GetAgentID() == "" {
		return fmt.Errorf("agent not registered: missing agent ID")
	}

	var firstErr error
	for _, dataType := range s.agentstate.CollectionDataTypes() {
		if err := s.collectOne(ctx, dataType); err != nil {
			log.Errorf("collection failed for %s: %v", dataType, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", dataType, err)
			}
		}
	}
	return firstErr
}

func (s *collectorService) collectOne(ctx context.Context, dataType submission.DataType) error {
	source, ok := s.sources[dataType]
	if !ok {
		log.Debugf("no collector for data type %s on this platform", dataType)
		return nil
	}

	output, err := s.executor.Execute(ctx, source)
	if err != nil {
		return fmt.Errorf("source command failed: %w", err)
	}

	payload, recordCount, err := encodePayload(dataType, output)
	if err != nil {
		return err
	}

	digest := sha256.Sum256(payload)
	resp, err := s.apiserver.SubmitData(ctx, apiserver.SubmissionRequest{
		AgentID:     s.agentstate.GetAgentID(),
		DataType:    dataType,
		RecordCount: recordCount,
		Data:        payload,
		DataHash:    hex.EncodeToString(digest[:]),
		Metadata:    fmt.Sprintf(`{"source":%q}`, source),
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("submission %s failed server-side: %s", resp.SubmissionID, resp.Message)
	}

	log.Debugf("submitted %d %s records as %s", recordCount, dataType, resp.SubmissionID)
	return nil
}

func encodePayload(dataType submission.DataType, output string) (json.RawMessage, int, error) {
	switch dataType {
	case submission.DataTypeUsers, submission.DataTypeLocalUsers:
		users := parsePasswd(output)
		payload, err := json.Marshal(users)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode user records: %w", err)
		}
		return payload, len(users), nil
	case submission.DataTypeGroups:
		groups := parseGroups(output)
		payload, err := json.Marshal(groups)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode group records: %w", err)
		}
		return payload, len(groups), nil
	default:
		return nil, 0, fmt.Errorf("no encoder for data type %s", dataType)
	}
}

// parsePasswd converts "getent passwd" lines into user records. Malformed
// lines are dropped rather than failing the whole collection.
func parsePasswd(output string) []UserRecord {
	users := []UserRecord{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ":")
		if len(fields) < 7 || fields[0] == "" {
			continue
		}

		// The gecos field is comma-separated; the first part is the
		// display name.
		displayName, _, _ := strings.Cut(fields[4], ",")

		users = append(users, UserRecord{
			Username:    fields[0],
			DisplayName: displayName,
			Enabled:     shellAllowsLogin(fields[6]),
			SourceID:    fields[2],
		})
	}
	return users
}

func shellAllowsLogin(shell string) bool {
	switch strings.TrimSpace(shell) {
	case "/usr/sbin/nologin", "/sbin/nologin", "/bin/false", "/usr/bin/false":
		return false
	}
	return true
}

// parseGroups converts "getent group" lines into group records.
func parseGroups(output string) []GroupRecord {
	groups := []GroupRecord{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ":")
		if len(fields) < 4 || fields[0] == "" {
			continue
		}

		var members []string
		if fields[3] != "" {
			members = strings.Split(fields[3], ",")
		}

		groups = append(groups, GroupRecord{
			Name:    fields[0],
			GroupID: fields[2],
			Members: members,
		})
	}
	return groups
}
