// Package certauthority issues, validates, renews and revokes agent trust
// certificates. Signing is delegated to a pki.Signer so a real CA can be
// swapped in without touching callers.
package certauthority

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"trustplane/domain/agent"
	"trustplane/domain/certificate"
	"trustplane/internal/pki"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// DefaultValidityDays is applied when a request does not name a window.
	DefaultValidityDays = 365

	usageClientAuth = "Client Authentication"
)

// AgentLookup resolves an agent id to a registered, active agent.
type AgentLookup interface {
	Get(ctx context.Context, id string) (*agent.Agent, error)
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error)
	Renew(ctx context.Context, req RenewRequest) (*RenewResult, error)
	Revoke(ctx context.Context, req RevokeRequest) (*RevokeResult, error)
	List(ctx context.Context, agentID string) ([]certificate.Certificate, error)
}

type GenerateRequest struct {
	AgentID            string
	CommonName         string
	Organization       string
	OrganizationalUnit string
	Country            string
	ValidityDays       int
	SubjectAltNames    []string
}

// GenerateResult carries the stored row plus the issued material,
// base64-encoded DER for both certificate and private key.
type GenerateResult struct {
	Certificate     *certificate.Certificate
	CertificateData string
	PrivateKeyData  string
}

type ValidateRequest struct {
	CertificateData string
	At              *time.Time
	CheckChain      bool
	CheckRevocation bool
}

type ValidateResult struct {
	Valid  bool
	Errors []string
	Info   *Info
}

// Info is the read-only projection returned by Validate and List.
type Info struct {
	Thumbprint   string
	SerialNumber string
	Subject      string
	Issuer       string
	NotBefore    time.Time
	NotAfter     time.Time
	Status       certificate.Status
}

type RenewRequest struct {
	AgentID           string
	CurrentThumbprint string
	ValidityDays      int
	RevokeOld         bool
}

type RenewResult struct {
	GenerateResult
	OldRevoked bool
}

type RevokeRequest struct {
	AgentID    string
	Thumbprint string
	Reason     string
}

type RevokeResult struct {
	RevokedAt time.Time
}

type AuthorityService struct {
	certs  certificate.Repository
	agents AgentLookup
	signer pki.Signer
	now    func() time.Time
}

func New(certs certificate.Repository, agents AgentLookup) *AuthorityService {
	return NewWithSigner(certs, agents, pki.NewSelfSigner())
}

func NewWithSigner(certs certificate.Repository, agents AgentLookup, signer pki.Signer) *AuthorityService {
	return &AuthorityService{
		certs:  certs,
		agents: agents,
		signer: signer,
		now:    time.Now,
	}
}

// Generate issues a certificate for a registered agent and persists the
// resulting row as Active. The common name falls back to the agent's
// machine name when the request leaves it blank.
func (s *AuthorityService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	ag, err := s.agents.Get(ctx, req.AgentID)
	if err != nil {
		return nil, err
	}

	commonName := req.CommonName
	if commonName == "" {
		commonName = ag.MachineName
	}
	validityDays := req.ValidityDays
	if validityDays <= 0 {
		validityDays = DefaultValidityDays
	}

	bundle, err := s.signer.Issue(pki.Request{
		CommonName:         commonName,
		Organization:       req.Organization,
		OrganizationalUnit: req.OrganizationalUnit,
		Country:            req.Country,
		ValidityDays:       validityDays,
		SubjectAltNames:    req.SubjectAltNames,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"agent_id":    req.AgentID,
			"common_name": commonName,
		}).Errorf("certificate issuance failed: %v", err)
		return nil, fmt.Errorf("failed to issue certificate: %w", err)
	}

	cert := &certificate.Certificate{
		AgentID:      ag.ID,
		Thumbprint:   bundle.Thumbprint,
		SerialNumber: bundle.SerialNumber,
		Subject:      bundle.Certificate.Subject.String(),
		Issuer:       bundle.Certificate.Issuer.String(),
		NotBefore:    bundle.NotBefore,
		NotAfter:     bundle.NotAfter,
		IssuedAt:     s.now().UTC(),
		Status:       certificate.StatusActive,
		Usage:        usageClientAuth,
	}
	if err := s.certs.Create(ctx, cert); err != nil {
		log.WithFields(log.Fields{
			"agent_id":   req.AgentID,
			"thumbprint": bundle.Thumbprint,
		}).Errorf("certificate store failed: %v", err)
		return nil, fmt.Errorf("failed to store certificate: %w", err)
	}

	return &GenerateResult{
		Certificate:     cert,
		CertificateData: base64.StdEncoding.EncodeToString(bundle.CertificateDER),
		PrivateKeyData:  base64.StdEncoding.EncodeToString(bundle.PrivateKeyDER),
	}, nil
}

// Validate inspects certificate material against the clock and the
// certificate store, accumulating every applicable failure instead of
// stopping at the first. A nil error with Valid=false is the normal
// shape for a certificate that fails checks.
func (s *AuthorityService) Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error) {
	at := s.now().UTC()
	if req.At != nil {
		at = req.At.UTC()
	}

	parsed, err := pki.ParseCertificate(decodeCertificateData(req.CertificateData))
	if err != nil {
		return &ValidateResult{
			Valid:  false,
			Errors: []string{"certificate data could not be parsed"},
		}, nil
	}

	var failures []string
	if parsed.NotAfter.Before(at) {
		failures = append(failures, "certificate has expired")
	}
	if parsed.NotBefore.After(at) {
		failures = append(failures, "certificate is not yet valid")
	}

	info := &Info{
		Thumbprint:   pki.Thumbprint(parsed.Raw),
		SerialNumber: pki.SerialString(parsed.SerialNumber),
		Subject:      parsed.Subject.String(),
		Issuer:       parsed.Issuer.String(),
		NotBefore:    parsed.NotBefore,
		NotAfter:     parsed.NotAfter,
	}

	stored, err := s.certs.FindByThumbprint(ctx, info.Thumbprint)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		failures = append(failures, "certificate not found in database")
	case err != nil:
		return nil, fmt.Errorf("failed to look up certificate: %w", err)
	default:
		info.Status = stored.Status
		if stored.Status == certificate.StatusRevoked {
			failures = append(failures, "certificate has been revoked")
		}
	}

	// Revocation status always comes from the store above; CheckRevocation
	// is accepted for callers that expect chain-level revocation checks,
	// which self-signed chains cannot perform.
	if req.CheckChain {
		if err := pki.VerifyChain(parsed, at); err != nil {
			failures = append(failures, "certificate chain validation failed")
		}
	}

	return &ValidateResult{
		Valid:  len(failures) == 0,
		Errors: failures,
		Info:   info,
	}, nil
}

// Renew issues a replacement certificate carrying the common name of the
// current one. When RevokeOld is set the prior row is moved to Superseded;
// a prior row already Revoked stays untouched and OldRevoked reports false.
func (s *AuthorityService) Renew(ctx context.Context, req RenewRequest) (*RenewResult, error) {
	current, err := s.certs.FindByAgentAndThumbprint(ctx, req.AgentID, req.CurrentThumbprint)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, certificate.ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up certificate: %w", err)
	}

	generated, err := s.Generate(ctx, GenerateRequest{
		AgentID:      req.AgentID,
		CommonName:   pki.CommonNameFromSubject(current.Subject),
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		return nil, err
	}

	result := &RenewResult{GenerateResult: *generated}
	if req.RevokeOld {
		superseded, err := s.certs.Terminate(ctx, req.AgentID, req.CurrentThumbprint,
			certificate.StatusSuperseded, certificate.ReasonSuperseded, s.now().UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to supersede certificate: %w", err)
		}
		result.OldRevoked = superseded
	}
	return result, nil
}

// Revoke moves a certificate to Revoked exactly once. Concurrent calls on
// the same thumbprint produce one success; the rest get ErrAlreadyRevoked.
func (s *AuthorityService) Revoke(ctx context.Context, req RevokeRequest) (*RevokeResult, error) {
	current, err := s.certs.FindByAgentAndThumbprint(ctx, req.AgentID, req.Thumbprint)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, certificate.ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up certificate: %w", err)
	}
	if current.Status == certificate.StatusRevoked {
		return nil, certificate.ErrAlreadyRevoked
	}

	revokedAt := s.now().UTC()
	revoked, err := s.certs.Terminate(ctx, req.AgentID, req.Thumbprint,
		certificate.StatusRevoked, req.Reason, revokedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke certificate: %w", err)
	}
	if !revoked {
		return nil, certificate.ErrAlreadyRevoked
	}

	log.WithFields(log.Fields{
		"agent_id":   req.AgentID,
		"thumbprint": req.Thumbprint,
		"reason":     req.Reason,
	}).Info("certificate revoked")

	return &RevokeResult{RevokedAt: revokedAt}, nil
}

func (s *AuthorityService) List(ctx context.Context, agentID string) ([]certificate.Certificate, error) {
	return s.certs.FindAllByAgent(ctx, agentID)
}

// decodeCertificateData accepts either base64-encoded DER or PEM text.
// PEM never survives a base64 decode, so a failed decode falls back to
// the raw bytes.
func decodeCertificateData(data string) []byte {
	trimmed := strings.TrimSpace(data)
	if decoded, err := base64.StdEncoding.DecodeString(trimmed); err == nil {
		return decoded
	}
	return []byte(trimmed)
}
