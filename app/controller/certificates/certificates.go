// Package certificates exposes the certificate lifecycle routes: issuance,
// validation, renewal, revocation and per-agent listings.
package certificates

import (
	"errors"
	"net/http"
	"time"

	"trustplane/app/service/certauthority"
	"trustplane/domain/agent"
	"trustplane/domain/certificate"

	"github.com/labstack/echo/v4"
)

type (
	Handler struct {
		authority certauthority.Service
	}

	GenerateRequest struct {
		AgentID            string   `json:"agent_id" validate:"required"`
		CommonName         string   `json:"common_name"`
		Organization       string   `json:"organization"`
		OrganizationalUnit string   `json:"organizational_unit"`
		Country            string   `json:"country"`
		ValidityDays       int      `json:"validity_days"`
		SubjectAltNames    []string `json:"subject_alternative_names"`
	}

	GenerateResponse struct {
		Success         bool      `json:"success"`
		CertificateData string    `json:"certificate_data"`
		PrivateKeyData  string    `json:"private_key_data"`
		Thumbprint      string    `json:"thumbprint"`
		SerialNumber    string    `json:"serial_number"`
		IssuedAt        time.Time `json:"issued_at"`
		ExpiresAt       time.Time `json:"expires_at"`
	}

	ValidateRequest struct {
		CertificateData string     `json:"certificate_data" validate:"required"`
		ValidateAtTime  *time.Time `json:"validate_at_time,omitempty"`
		CheckChain      bool       `json:"check_chain"`
		CheckRevocation bool       `json:"check_revocation"`
	}

	ValidateResponse struct {
		IsValid          bool             `json:"is_valid"`
		ValidationErrors []string         `json:"validation_errors"`
		CertificateInfo  *CertificateInfo `json:"certificate_info,omitempty"`
	}

	// CertificateInfo mirrors what Validate can learn from the material
	// itself plus the stored status when the certificate is known.
	CertificateInfo struct {
		Thumbprint   string    `json:"thumbprint"`
		SerialNumber string    `json:"serial_number"`
		Subject      string    `json:"subject"`
		Issuer       string    `json:"issuer"`
		NotBefore    time.Time `json:"not_before"`
		NotAfter     time.Time `json:"not_after"`
		Status       string    `json:"status,omitempty"`
	}

	RenewRequest struct {
		AgentID              string `json:"agent_id" validate:"required"`
		CurrentThumbprint    string `json:"current_thumbprint" validate:"required"`
		ValidityDays         int    `json:"validity_days"`
		RevokeOldCertificate bool   `json:"revoke_old_certificate"`
	}

	RenewResponse struct {
		Success               bool      `json:"success"`
		NewThumbprint         string    `json:"new_thumbprint"`
		NewSerialNumber       string    `json:"new_serial_number"`
		IssuedAt              time.Time `json:"issued_at"`
		ExpiresAt             time.Time `json:"expires_at"`
		OldCertificateRevoked bool      `json:"old_certificate_revoked"`
	}

	RevokeRequest struct {
		AgentID               string `json:"agent_id" validate:"required"`
		CertificateThumbprint string `json:"certificate_thumbprint" validate:"required"`
		Reason                string `json:"reason" validate:"required"`
	}

	RevokeResponse struct {
		Success   bool      `json:"success"`
		RevokedAt time.Time `json:"revoked_at"`
	}

	// CertificateSummary is one row in a per-agent listing.
	CertificateSummary struct {
		Thumbprint       string     `json:"thumbprint"`
		SerialNumber     string     `json:"serial_number"`
		Subject          string     `json:"subject"`
		Status           string     `json:"status"`
		IssuedAt         time.Time  `json:"issued_at"`
		NotBefore        time.Time  `json:"not_before"`
		NotAfter         time.Time  `json:"not_after"`
		RevokedAt        *time.Time `json:"revoked_at,omitempty"`
		RevocationReason string     `json:"revocation_reason,omitempty"`
	}

	ListResponse struct {
		Success      bool                 `json:"success"`
		Certificates []CertificateSummary `json:"certificates"`
	}
)

func NewHandler(svc certauthority.Service) *Handler {
	return &Handler{authority: svc}
}

func (h *Handler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request format: " + err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Validation failed: " + err.Error(),
		})
	}

	result, err := h.authority.Generate(c.Request().Context(), certauthority.GenerateRequest{
		AgentID:            req.AgentID,
		CommonName:         req.CommonName,
		Organization:       req.Organization,
		OrganizationalUnit: req.OrganizationalUnit,
		Country:            req.Country,
		ValidityDays:       req.ValidityDays,
		SubjectAltNames:    req.SubjectAltNames,
	})
	if err != nil {
		return certificateError(c, err)
	}

	return c.JSON(http.StatusOK, GenerateResponse{
		Success:         true,
		CertificateData: result.CertificateData,
		PrivateKeyData:  result.PrivateKeyData,
		Thumbprint:      result.Certificate.Thumbprint,
		SerialNumber:    result.Certificate.SerialNumber,
		IssuedAt:        result.Certificate.IssuedAt,
		ExpiresAt:       result.Certificate.NotAfter,
	})
}

func (h *Handler) Validate(c echo.Context) error {
	var req ValidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request format: " + err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Validation failed: " + err.Error(),
		})
	}

	result, err := h.authority.Validate(c.Request().Context(), certauthority.ValidateRequest{
		CertificateData: req.CertificateData,
		At:              req.ValidateAtTime,
		CheckChain:      req.CheckChain,
		CheckRevocation: req.CheckRevocation,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	resp := ValidateResponse{
		IsValid:          result.Valid,
		ValidationErrors: result.Errors,
	}
	if resp.ValidationErrors == nil {
		resp.ValidationErrors = []string{}
	}
	if result.Info != nil {
		resp.CertificateInfo = &CertificateInfo{
			Thumbprint:   result.Info.Thumbprint,
			SerialNumber: result.Info.SerialNumber,
			Subject:      result.Info.Subject,
			Issuer:       result.Info.Issuer,
			NotBefore:    result.Info.NotBefore,
			NotAfter:     result.Info.NotAfter,
			Status:       string(result.Info.Status),
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Renew(c echo.Context) error {
	var req RenewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request format: " + err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Validation failed: " + err.Error(),
		})
	}

	result, err := h.authority.Renew(c.Request().Context(), certauthority.RenewRequest{
		AgentID:           req.AgentID,
		CurrentThumbprint: req.CurrentThumbprint,
		ValidityDays:      req.ValidityDays,
		RevokeOld:         req.RevokeOldCertificate,
	})
	if err != nil {
		return certificateError(c, err)
	}

	return c.JSON(http.StatusOK, RenewResponse{
		Success:               true,
		NewThumbprint:         result.Certificate.Thumbprint,
		NewSerialNumber:       result.Certificate.SerialNumber,
		IssuedAt:              result.Certificate.IssuedAt,
		ExpiresAt:             result.Certificate.NotAfter,
		OldCertificateRevoked: result.OldRevoked,
	})
}

func (h *Handler) Revoke(c echo.Context) error {
	var req RevokeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request format: " + err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Validation failed: " + err.Error(),
		})
	}

	result, err := h.authority.Revoke(c.Request().Context(), certauthority.RevokeRequest{
		AgentID:    req.AgentID,
		Thumbprint: req.CertificateThumbprint,
		Reason:     req.Reason,
	})
	if err != nil {
		return certificateError(c, err)
	}

	return c.JSON(http.StatusOK, RevokeResponse{
		Success:   true,
		RevokedAt: result.RevokedAt,
	})
}

// List returns the certificates issued to one agent, newest first.
func (h *Handler) List(c echo.Context) error {
	agentID := c.QueryParam("agent_id")
	if agentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "agent_id query parameter is required",
		})
	}

	certs, err := h.authority.List(c.Request().Context(), agentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch certificates: " + err.Error(),
		})
	}

	summaries := make([]CertificateSummary, 0, len(certs))
	for _, cert := range certs {
		summaries = append(summaries, CertificateSummary{
			Thumbprint:       cert.Thumbprint,
			SerialNumber:     cert.SerialNumber,
			Subject:          cert.Subject,
			Status:           string(cert.Status),
			IssuedAt:         cert.IssuedAt,
			NotBefore:        cert.NotBefore,
			NotAfter:         cert.NotAfter,
			RevokedAt:        cert.RevokedAt,
			RevocationReason: cert.RevocationReason,
		})
	}

	return c.JSON(http.StatusOK, ListResponse{
		Success:      true,
		Certificates: summaries,
	})
}

func certificateError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, agent.ErrAgentNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Agent not found",
		})
	case errors.Is(err, certificate.ErrCertificateNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Certificate not found",
		})
	case errors.Is(err, certificate.ErrAlreadyRevoked):
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Certificate has already been revoked",
		})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}
}

// RegisterRoutes registers all certificate routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/generate", h.Generate)
	g.POST("/validate", h.Validate)
	g.POST("/renew", h.Renew)
	g.POST("/revoke", h.Revoke)
	g.GET("", h.List)
}
