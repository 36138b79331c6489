package gorm

import (
	"context"
	"time"

	"trustplane/domain/agent"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type AgentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) agent.Repository {
	return &AgentRepository{db: db}
}

func (r *AgentRepository) Create(ctx context.Context, a *agent.Agent) error {
	a.ID = "agt_" + ulid.Make().String()
	if a.Status == "" {
		a.Status = agent.StatusRegistered
	}
	if a.RegisteredAt.IsZero() {
		a.RegisteredAt = time.Now()
	}
	a.IsActive = true
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AgentRepository) Update(ctx context.Context, a *agent.Agent) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AgentRepository) FindByID(ctx context.Context, id string) (*agent.Agent, error) {
	var a agent.Agent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AgentRepository) FindByMachine(ctx context.Context, machineName string, typ agent.Type) (*agent.Agent, error) {
	var a agent.Agent
	err := r.db.WithContext(ctx).Where("machine_name = ? AND type = ?", machineName, typ).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AgentRepository) FindAllActive(ctx context.Context, filters agent.Filters) ([]agent.Agent, error) {
	var agents []agent.Agent

	query := r.db.WithContext(ctx).Where("is_active = ?", true)

	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}

	if filters.IsOnline != nil {
		query = query.Where("is_online = ?", *filters.IsOnline)
	}

	err := query.Order("machine_name ASC").Find(&agents).Error
	if err != nil {
		return nil, err
	}

	return agents, nil
}

func (r *AgentRepository) MarkOfflineSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&agent.Agent{}).
		Where("is_online = ? AND last_heartbeat < ?", true, cutoff).
		Update("is_online", false)
	return res.RowsAffected, res.Error
}

func (r *AgentRepository) Transaction(ctx context.Context, fn func(agent.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &AgentRepository{db: tx}
		return fn(txRepo)
	})
}
