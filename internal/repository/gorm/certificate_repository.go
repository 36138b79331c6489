package gorm

import (
	"context"
	"time"

	"trustplane/domain/certificate"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) certificate.Repository {
	return &CertificateRepository{db: db}
}

func (r *CertificateRepository) Create(ctx context.Context, cert *certificate.Certificate) error {
	cert.ID = "crt_" + ulid.Make().String()
	if cert.Status == "" {
		cert.Status = certificate.StatusActive
	}
	if cert.IssuedAt.IsZero() {
		cert.IssuedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(cert).Error
}

func (r *CertificateRepository) FindByThumbprint(ctx context.Context, thumbprint string) (*certificate.Certificate, error) {
	var cert certificate.Certificate
	err := r.db.WithContext(ctx).Where("thumbprint = ?", thumbprint).First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) FindByAgentAndThumbprint(ctx context.Context, agentID, thumbprint string) (*certificate.Certificate, error) {
	var cert certificate.Certificate
	err := r.db.WithContext(ctx).Where("agent_id = ? AND thumbprint = ?", agentID, thumbprint).First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) FindAllByAgent(ctx context.Context, agentID string) ([]certificate.Certificate, error) {
	var certs []certificate.Certificate
	err := r.db.WithContext(ctx).Where("agent_id = ?", agentID).Order("issued_at DESC").Find(&certs).Error
	if err != nil {
		return nil, err
	}
	return certs, nil
}

// Terminate performs the conditional status transition in a single UPDATE so
// concurrent callers cannot both win: a row already Revoked matches nothing.
func (r *CertificateRepository) Terminate(ctx context.Context, agentID, thumbprint string, status certificate.Status, reason string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&certificate.Certificate{}).
		Where("agent_id = ? AND thumbprint = ? AND status <> ?", agentID, thumbprint, certificate.StatusRevoked).
		Updates(map[string]interface{}{
			"status":            status,
			"revoked_at":        at,
			"revocation_reason": reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CertificateRepository) Transaction(ctx context.Context, fn func(certificate.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &CertificateRepository{db: tx}
		return fn(txRepo)
	})
}
