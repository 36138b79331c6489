package submission

import "context"

type Repository interface {
	Create(ctx context.Context, sub *Submission) error
	Update(ctx context.Context, sub *Submission) error
	FindByID(ctx context.Context, id string) (*Submission, error)
	FindAll(ctx context.Context, filters Filters) ([]Submission, error)
	Transaction(ctx context.Context, fn func(Repository) error) error
}
