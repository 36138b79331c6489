package directoryuser

import "context"

type Repository interface {
	Create(ctx context.Context, user *DirectoryUser) error
	Update(ctx context.Context, user *DirectoryUser) error
	FindByUsername(ctx context.Context, username string) (*DirectoryUser, error)
	FindAll(ctx context.Context, filters Filters) ([]DirectoryUser, error)
	Transaction(ctx context.Context, fn func(Repository) error) error
}
