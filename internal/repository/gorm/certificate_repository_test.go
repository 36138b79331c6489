package gorm

import (
	"context"
	"testing"
	"time"

	"trustplane/domain/certificate"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCertificateTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&certificate.Certificate{})
	require.NoError(t, err)

	return db
}

func seedCertificate(t *testing.T, repo certificate.Repository, agentID, thumbprint string) *certificate.Certificate {
	t.Helper()

	cert := &certificate.Certificate{
		AgentID:      agentID,
		Thumbprint:   thumbprint,
		SerialNumber: "0A" + thumbprint,
		Subject:      "CN=DC01",
		Issuer:       "CN=DC01",
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), cert))
	return cert
}

func TestCertificateRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupCertificateTestDB(t)
		repo := NewCertificateRepository(db)

		cert := seedCertificate(t, repo, "agt_01", "AABBCC")

		assert.True(t, len(cert.ID) > 4 && cert.ID[:4] == "crt_")
		assert.Equal(t, certificate.StatusActive, cert.Status)
		assert.NotZero(t, cert.IssuedAt)
	})

	t.Run("FindByThumbprint", func(t *testing.T) {
		db := setupCertificateTestDB(t)
		repo := NewCertificateRepository(db)
		ctx := context.Background()

		seedCertificate(t, repo, "agt_01", "AABBCC")

		found, err := repo.FindByThumbprint(ctx, "AABBCC")
		assert.NoError(t, err)
		assert.Equal(t, "agt_01", found.AgentID)

		notFound, err := repo.FindByThumbprint(ctx, "FFFFFF")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Nil(t, notFound)
	})

	t.Run("FindByAgentAndThumbprint", func(t *testing.T) {
		db := setupCertificateTestDB(t)
		repo := NewCertificateRepository(db)
		ctx := context.Background()

		seedCertificate(t, repo, "agt_01", "AABBCC")

		found, err := repo.FindByAgentAndThumbprint(ctx, "agt_01", "AABBCC")
		assert.NoError(t, err)
		assert.Equal(t, "AABBCC", found.Thumbprint)

		// Same thumbprint under another agent does not match.
		notFound, err := repo.FindByAgentAndThumbprint(ctx, "agt_02", "AABBCC")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Nil(t, notFound)
	})

	t.Run("FindAllByAgentNewestFirst", func(t *testing.T) {
		db := setupCertificateTestDB(t)
		repo := NewCertificateRepository(db)
		ctx := context.Background()

		older := seedCertificate(t, repo, "agt_01", "AABBCC")
		older.IssuedAt = time.Now().Add(-48 * time.Hour)
		require.NoError(t, db.Save(older).Error)

		seedCertificate(t, repo, "agt_01", "DDEEFF")
		seedCertificate(t, repo, "agt_02", "112233")

		certs, err := repo.FindAllByAgent(ctx, "agt_01")
		assert.NoError(t, err)
		require.Len(t, certs, 2)
		assert.Equal(t, "DDEEFF", certs[0].Thumbprint)
		assert.Equal(t, "AABBCC", certs[1].Thumbprint)
	})

	t.Run("Terminate", func(t *testing.T) {
		db := setupCertificateTestDB(t)
		repo := NewCertificateRepository(db)
		ctx := context.Background()

		seedCertificate(t, repo, "agt_01", "AABBCC")

		revokedAt := time.Now().UTC()
		won, err := repo.Terminate(ctx, "agt_01", "AABBCC", certificate.StatusRevoked, "Key compromise", revokedAt)
		assert.NoError(t, err)
		assert.True(t, won)

		found, err := repo.FindByThumbprint(ctx, "AABBCC")
		require.NoError(t, err)
		assert.Equal(t, certificate.StatusRevoked, found.Status)
		assert.Equal(t, "Key compromise", found.RevocationReason)
		require.NotNil(t, found.RevokedAt)
		assert.WithinDuration(t, revokedAt, *found.RevokedAt, time.Second)
	})

	t.Run("TerminateOnlyOneWinner", func(t *testing.T) {
		db := setupCertificateTestDB(t)
		repo := NewCertificateRepository(db)
		ctx := context.Background()

		seedCertificate(t, repo, "agt_01", "AABBCC")

		won, err := repo.Terminate(ctx, "agt_01", "AABBCC", certificate.StatusRevoked, "Key compromise", time.Now())
		require.NoError(t, err)
		require.True(t, won)

		wonAgain, err := repo.Terminate(ctx, "agt_01", "AABBCC", certificate.StatusRevoked, "Second attempt", time.Now())
		assert.NoError(t, err)
		assert.False(t, wonAgain)

		found, err := repo.FindByThumbprint(ctx, "AABBCC")
		require.NoError(t, err)
		assert.Equal(t, "Key compromise", found.RevocationReason)
	})

	t.Run("TerminateUpgradesSupersededToRevoked", func(t *testing.T) {
		db := setupCertificateTestDB(t)
		repo := NewCertificateRepository(db)
		ctx := context.Background()

		seedCertificate(t, repo, "agt_01", "AABBCC")

		won, err := repo.Terminate(ctx, "agt_01", "AABBCC", certificate.StatusSuperseded, certificate.ReasonSuperseded, time.Now())
		require.NoError(t, err)
		require.True(t, won)

		won, err = repo.Terminate(ctx, "agt_01", "AABBCC", certificate.StatusRevoked, "Key compromise", time.Now())
		assert.NoError(t, err)
		assert.True(t, won)

		found, err := repo.FindByThumbprint(ctx, "AABBCC")
		require.NoError(t, err)
		assert.Equal(t, certificate.StatusRevoked, found.Status)
	})

	t.Run("TerminateMissingRow", func(t *testing.T) {
		db := setupCertificateTestDB(t)
		repo := NewCertificateRepository(db)
		ctx := context.Background()

		won, err := repo.Terminate(ctx, "agt_01", "FFFFFF", certificate.StatusRevoked, "Key compromise", time.Now())
		assert.NoError(t, err)
		assert.False(t, won)
	})
}
