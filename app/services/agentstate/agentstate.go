// Package agentstate persists the agent's registration identity between
// runs: the agent ID and API key issued by the control plane plus the
// collection configuration that came with them.
package agentstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"trustplane/domain/submission"
)

// Global mutex for file operations
var fileMutex sync.RWMutex

type Operations interface {
	Save() error
	Load() error
	GetAgentID() string
	GetAPIKey() string
	SetCredentials(agentID, apiKey string) error
	SetCollection(dataTypes []submission.DataType, intervalMinutes int) error
	CollectionDataTypes() []submission.DataType
	CollectionInterval() int
	Clear() error
}

type AgentState struct {
	AgentID         string                `json:"agent_id,omitempty"`
	APIKey          string                `json:"api_key,omitempty"`
	MachineName     string                `json:"machine_name,omitempty"`
	DataTypes       []submission.DataType `json:"data_types,omitempty"`
	IntervalMinutes int                   `json:"interval_minutes,omitempty"`
	LastSubmission  int64                 `json:"last_submission,omitempty"`

	stateDir string
}

func New(stateDir string) *AgentState {
	return &AgentState{
		stateDir: stateDir,
	}
}

func (s *AgentState) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(s.stateDir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	stateFile := filepath.Join(s.stateDir, "agent.json")
	// Write to a temp file first, then rename for atomic operation
	tmpFile := stateFile + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tmpFile, stateFile)
}

func (s *AgentState) Load() error {
	fileMutex.RLock()
	defer fileMutex.RUnlock()

	stateFile := filepath.Join(s.stateDir, "agent.json")

	data, err := os.ReadFile(stateFile)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, s)
}

func (s *AgentState) GetAgentID() string {
	return s.AgentID
}

func (s *AgentState) GetAPIKey() string {
	return s.APIKey
}

// SetCredentials stores the identity issued by a registration. Every
// registration rotates the API key, so both fields always move together.
func (s *AgentState) SetCredentials(agentID, apiKey string) error {
	s.AgentID = agentID
	s.APIKey = apiKey
	return s.Save()
}

func (s *AgentState) SetCollection(dataTypes []submission.DataType, intervalMinutes int) error {
	s.DataTypes = dataTypes
	s.IntervalMinutes = intervalMinutes
	return s.Save()
}

func (s *AgentState) CollectionDataTypes() []submission.DataType {
	return s.DataTypes
}

func (s *AgentState) CollectionInterval() int {
	return s.IntervalMinutes
}

func (s *AgentState) Clear() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	// Clear in-memory state
	s.AgentID = ""
	s.APIKey = ""
	s.MachineName = ""
	s.DataTypes = nil
	s.IntervalMinutes = 0
	s.LastSubmission = 0

	// Remove the file
	stateFile := filepath.Join(s.stateDir, "agent.json")
	err := os.Remove(stateFile)

	// If file doesn't exist, that's fine
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
