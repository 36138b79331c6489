package gorm

import (
	"context"
	"testing"
	"time"

	"trustplane/domain/directoryuser"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDirectoryUserTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&directoryuser.DirectoryUser{})
	require.NoError(t, err)

	return db
}

func TestDirectoryUserRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupDirectoryUserTestDB(t)
		repo := NewDirectoryUserRepository(db)
		ctx := context.Background()

		user := &directoryuser.DirectoryUser{
			Username:    "alice",
			DisplayName: "Alice Example",
			Email:       "alice@corp.example",
			Domain:      "corp.example",
			Enabled:     true,
			Source:      "agt_01",
		}

		err := repo.Create(ctx, user)
		assert.NoError(t, err)
		assert.True(t, len(user.ID) > 4 && user.ID[:4] == "usr_")
	})

	t.Run("CreateRejectsDuplicateUsername", func(t *testing.T) {
		db := setupDirectoryUserTestDB(t)
		repo := NewDirectoryUserRepository(db)
		ctx := context.Background()

		err := repo.Create(ctx, &directoryuser.DirectoryUser{Username: "alice"})
		require.NoError(t, err)

		err = repo.Create(ctx, &directoryuser.DirectoryUser{Username: "alice"})
		assert.Error(t, err)
	})

	t.Run("FindByUsername", func(t *testing.T) {
		db := setupDirectoryUserTestDB(t)
		repo := NewDirectoryUserRepository(db)
		ctx := context.Background()

		err := repo.Create(ctx, &directoryuser.DirectoryUser{Username: "alice", Domain: "corp.example"})
		require.NoError(t, err)

		found, err := repo.FindByUsername(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, "corp.example", found.Domain)

		notFound, err := repo.FindByUsername(ctx, "mallory")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Nil(t, notFound)
	})

	t.Run("Update", func(t *testing.T) {
		db := setupDirectoryUserTestDB(t)
		repo := NewDirectoryUserRepository(db)
		ctx := context.Background()

		user := &directoryuser.DirectoryUser{Username: "alice", Enabled: true}
		require.NoError(t, repo.Create(ctx, user))

		lastLogon := time.Now().UTC()
		user.Enabled = false
		user.LastLogonAt = &lastLogon
		err := repo.Update(ctx, user)
		assert.NoError(t, err)

		found, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, found.Enabled)
		require.NotNil(t, found.LastLogonAt)
	})

	t.Run("FindAllFilters", func(t *testing.T) {
		db := setupDirectoryUserTestDB(t)
		repo := NewDirectoryUserRepository(db)
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, &directoryuser.DirectoryUser{Username: "bob", Domain: "corp.example", Enabled: true}))
		require.NoError(t, repo.Create(ctx, &directoryuser.DirectoryUser{Username: "alice", Domain: "corp.example", Enabled: false}))
		require.NoError(t, repo.Create(ctx, &directoryuser.DirectoryUser{Username: "carol", Domain: "lab.example", Enabled: true}))

		domain := "corp.example"
		users, err := repo.FindAll(ctx, directoryuser.Filters{Domain: &domain})
		assert.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "bob", users[1].Username)

		enabled := true
		users, err = repo.FindAll(ctx, directoryuser.Filters{Enabled: &enabled})
		assert.NoError(t, err)
		assert.Len(t, users, 2)
	})
}
