package gorm

import (
	"context"
	"time"

	"trustplane/domain/submission"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) submission.Repository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *submission.Submission) error {
	sub.ID = "sub_" + ulid.Make().String()
	if sub.Status == "" {
		sub.Status = submission.StatusPending
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	if sub.MaxRetries == 0 {
		sub.MaxRetries = submission.DefaultMaxRetries
	}
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubmissionRepository) Update(ctx context.Context, sub *submission.Submission) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*submission.Submission, error) {
	var sub submission.Submission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubmissionRepository) FindAll(ctx context.Context, filters submission.Filters) ([]submission.Submission, error) {
	var subs []submission.Submission

	query := r.db.WithContext(ctx)

	if filters.AgentID != nil {
		query = query.Where("agent_id = ?", *filters.AgentID)
	}

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if filters.DataType != nil {
		query = query.Where("data_type = ?", *filters.DataType)
	}

	err := query.Order("submitted_at DESC").Find(&subs).Error
	if err != nil {
		return nil, err
	}

	return subs, nil
}

func (r *SubmissionRepository) Transaction(ctx context.Context, fn func(submission.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &SubmissionRepository{db: tx}
		return fn(txRepo)
	})
}
