// Package registry owns agent identity and liveness: registration upserts,
// heartbeats, deactivation, and the read projections every other component
// uses to confirm a caller is a known active agent.
package registry

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"trustplane/domain/agent"
	"trustplane/domain/submission"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service is the registration surface consumed by controllers and by the
// other core services (which only need Get).
type Service interface {
	Register(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error)
	Heartbeat(ctx context.Context, req HeartbeatRequest) (*HeartbeatResult, error)
	Deactivate(ctx context.Context, agentID string) error
	List(ctx context.Context, filters agent.Filters) ([]agent.Agent, error)
	Get(ctx context.Context, agentID string) (*agent.Agent, error)
	MarkDataCollected(ctx context.Context, agentID string, at time.Time) error
}

type RegistrationRequest struct {
	Name            string
	Type            agent.Type
	Version         string
	MachineName     string
	IPAddress       string
	Domain          string
	OperatingSystem string
	Configuration   string
}

type RegistrationResult struct {
	Agent         *agent.Agent
	APIKey        string
	Configuration CollectionConfig
	IsNew         bool
}

type HeartbeatRequest struct {
	AgentID       string
	Status        string
	StatusMessage string
}

type HeartbeatResult struct {
	// UpdateAvailable is a placeholder for a future version-check policy;
	// the registry always reports false.
	UpdateAvailable bool
}

// CollectionConfig is the type-specific default configuration handed to an
// agent at registration time.
type CollectionConfig struct {
	DataTypes       []submission.DataType `json:"data_types"`
	IntervalMinutes int                   `json:"interval_minutes"`
}

// DefaultConfiguration returns the collection defaults for an agent type.
// Domain controllers carry the directory-wide collectors; servers and
// workstations collect host-local data at shorter and longer cycles.
func DefaultConfiguration(t agent.Type) CollectionConfig {
	switch t {
	case agent.TypeDomainController:
		return CollectionConfig{
			DataTypes:       []submission.DataType{submission.DataTypeUsers, submission.DataTypeGroups, submission.DataTypePolicies},
			IntervalMinutes: 60,
		}
	case agent.TypeServer:
		return CollectionConfig{
			DataTypes:       []submission.DataType{submission.DataTypeEvents, submission.DataTypeLocalUsers},
			IntervalMinutes: 30,
		}
	default:
		return CollectionConfig{
			DataTypes:       []submission.DataType{submission.DataTypeEvents, submission.DataTypeLocalUsers},
			IntervalMinutes: 120,
		}
	}
}

type RegistryService struct {
	agentRepo agent.Repository
}

func New(repo agent.Repository) *RegistryService {
	return &RegistryService{agentRepo: repo}
}

// Register upserts by the (machine_name, type) natural key: a known machine
// gets its mutable fields refreshed and is reactivated, an unknown one gets
// a new row. Either way the agent leaves with a freshly issued API key and
// its type's default collection configuration.
func (s *RegistryService) Register(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error) {
	apiKey, err := newAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	var (
		registered *agent.Agent
		isNew      bool
	)

	err = s.agentRepo.Transaction(ctx, func(txRepo agent.Repository) error {
		existing, findErr := txRepo.FindByMachine(ctx, req.MachineName, req.Type)
		if findErr == nil {
			existing.Name = req.Name
			existing.Version = req.Version
			existing.IPAddress = req.IPAddress
			existing.Domain = req.Domain
			existing.OperatingSystem = req.OperatingSystem
			existing.Configuration = req.Configuration
			existing.APIKey = apiKey
			existing.IsActive = true
			existing.Status = agent.StatusRegistered
			existing.StatusMessage = ""

			registered = existing
			return txRepo.Update(ctx, existing)
		}

		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		created := &agent.Agent{
			Name:            req.Name,
			Type:            req.Type,
			MachineName:     req.MachineName,
			Version:         req.Version,
			IPAddress:       req.IPAddress,
			Domain:          req.Domain,
			OperatingSystem: req.OperatingSystem,
			Configuration:   req.Configuration,
			APIKey:          apiKey,
			Status:          agent.StatusRegistered,
		}

		registered = created
		isNew = true
		return txRepo.Create(ctx, created)
	})

	if err != nil {
		log.WithFields(log.Fields{
			"machine_name": req.MachineName,
			"type":         req.Type,
		}).Errorf("agent registration failed: %v", err)
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return &RegistrationResult{
		Agent:         registered,
		APIKey:        apiKey,
		Configuration: DefaultConfiguration(req.Type),
		IsNew:         isNew,
	}, nil
}

// Heartbeat marks the agent online and records its self-reported status.
// Liveness is heartbeat-driven: the registry only ever sets is_online true,
// an external staleness sweep is expected to clear it.
func (s *RegistryService) Heartbeat(ctx context.Context, req HeartbeatRequest) (*HeartbeatResult, error) {
	err := s.agentRepo.Transaction(ctx, func(txRepo agent.Repository) error {
		found, findErr := txRepo.FindByID(ctx, req.AgentID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return agent.ErrAgentNotFound
			}
			return findErr
		}

		now := time.Now()
		found.IsOnline = true
		found.LastHeartbeat = &now
		found.Status = req.Status
		found.StatusMessage = req.StatusMessage

		return txRepo.Update(ctx, found)
	})
	if err != nil {
		return nil, err
	}

	return &HeartbeatResult{UpdateAvailable: false}, nil
}

// Deactivate takes the agent out of every projection. Calling it on an
// already-deactivated agent is a no-op success.
func (s *RegistryService) Deactivate(ctx context.Context, agentID string) error {
	return s.agentRepo.Transaction(ctx, func(txRepo agent.Repository) error {
		found, err := txRepo.FindByID(ctx, agentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return agent.ErrAgentNotFound
			}
			return err
		}

		if !found.IsActive && found.Status == agent.StatusDeactivated {
			return nil
		}

		found.IsActive = false
		found.IsOnline = false
		found.Status = agent.StatusDeactivated

		return txRepo.Update(ctx, found)
	})
}

func (s *RegistryService) List(ctx context.Context, filters agent.Filters) ([]agent.Agent, error) {
	return s.agentRepo.FindAllActive(ctx, filters)
}

// MarkDataCollected stamps the agent after a successful data submission.
func (s *RegistryService) MarkDataCollected(ctx context.Context, agentID string, at time.Time) error {
	return s.agentRepo.Transaction(ctx, func(txRepo agent.Repository) error {
		found, err := txRepo.FindByID(ctx, agentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return agent.ErrAgentNotFound
			}
			return err
		}

		found.LastDataCollection = &at
		return txRepo.Update(ctx, found)
	})
}

// Get resolves an agent id to an active agent; deactivated agents are
// reported as not found, matching the read projections.
func (s *RegistryService) Get(ctx context.Context, agentID string) (*agent.Agent, error) {
	found, err := s.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, agent.ErrAgentNotFound
		}
		return nil, err
	}
	if !found.IsActive {
		return nil, agent.ErrAgentNotFound
	}
	return found, nil
}

func newAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
