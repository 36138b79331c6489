package gorm

import (
	"context"

	"trustplane/domain/directoryuser"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type DirectoryUserRepository struct {
	db *gorm.DB
}

func NewDirectoryUserRepository(db *gorm.DB) directoryuser.Repository {
	return &DirectoryUserRepository{db: db}
}

func (r *DirectoryUserRepository) Create(ctx context.Context, user *directoryuser.DirectoryUser) error {
	user.ID = "usr_" + ulid.Make().String()
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *DirectoryUserRepository) Update(ctx context.Context, user *directoryuser.DirectoryUser) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *DirectoryUserRepository) FindByUsername(ctx context.Context, username string) (*directoryuser.DirectoryUser, error) {
	var user directoryuser.DirectoryUser
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *DirectoryUserRepository) FindAll(ctx context.Context, filters directoryuser.Filters) ([]directoryuser.DirectoryUser, error) {
	var users []directoryuser.DirectoryUser

	query := r.db.WithContext(ctx)

	if filters.Domain != nil {
		query = query.Where("domain = ?", *filters.Domain)
	}

	if filters.Enabled != nil {
		query = query.Where("enabled = ?", *filters.Enabled)
	}

	err := query.Order("username ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *DirectoryUserRepository) Transaction(ctx context.Context, fn func(directoryuser.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &DirectoryUserRepository{db: tx}
		return fn(txRepo)
	})
}
