package certificates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trustplane/app/service/certauthority"
	"trustplane/domain/agent"
	"trustplane/domain/certificate"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthority struct {
	generateFunc func(ctx context.Context, req certauthority.GenerateRequest) (*certauthority.GenerateResult, error)
	validateFunc func(ctx context.Context, req certauthority.ValidateRequest) (*certauthority.ValidateResult, error)
	renewFunc    func(ctx context.Context, req certauthority.RenewRequest) (*certauthority.RenewResult, error)
	revokeFunc   func(ctx context.Context, req certauthority.RevokeRequest) (*certauthority.RevokeResult, error)
	listFunc     func(ctx context.Context, agentID string) ([]certificate.Certificate, error)
}

func (m *mockAuthority) Generate(ctx context.Context, req certauthority.GenerateRequest) (*certauthority.GenerateResult, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &certauthority.GenerateResult{
		Certificate: &certificate.Certificate{
			ID:           "crt_test123",
			AgentID:      req.AgentID,
			Thumbprint:   "AABBCC",
			SerialNumber: "1F",
			Status:       certificate.StatusActive,
			IssuedAt:     time.Now(),
			NotAfter:     time.Now().AddDate(0, 0, 365),
		},
		CertificateData: "Y2VydA==",
		PrivateKeyData:  "a2V5",
	}, nil
}

func (m *mockAuthority) Validate(ctx context.Context, req certauthority.ValidateRequest) (*certauthority.ValidateResult, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, req)
	}
	return &certauthority.ValidateResult{Valid: true}, nil
}

func (m *mockAuthority) Renew(ctx context.Context, req certauthority.RenewRequest) (*certauthority.RenewResult, error) {
	if m.renewFunc != nil {
		return m.renewFunc(ctx, req)
	}
	return &certauthority.RenewResult{}, nil
}

func (m *mockAuthority) Revoke(ctx context.Context, req certauthority.RevokeRequest) (*certauthority.RevokeResult, error) {
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, req)
	}
	return &certauthority.RevokeResult{RevokedAt: time.Now()}, nil
}

func (m *mockAuthority) List(ctx context.Context, agentID string) ([]certificate.Certificate, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, agentID)
	}
	return []certificate.Certificate{}, nil
}

func setupEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &mockValidator{}
	return e
}

type mockValidator struct{}

func (v *mockValidator) Validate(i interface{}) error {
	switch req := i.(type) {
	case *GenerateRequest:
		if req.AgentID == "" {
			return errors.New("validation error: required field missing")
		}
	case *ValidateRequest:
		if req.CertificateData == "" {
			return errors.New("validation error: required field missing")
		}
	case *RenewRequest:
		if req.AgentID == "" || req.CurrentThumbprint == "" {
			return errors.New("validation error: required field missing")
		}
	case *RevokeRequest:
		if req.AgentID == "" || req.CertificateThumbprint == "" || req.Reason == "" {
			return errors.New("validation error: required field missing")
		}
	}
	return nil
}

func postJSON(e *echo.Echo, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestCertificatesController(t *testing.T) {
	t.Run("POST /generate", func(t *testing.T) {
		t.Run("should return the issued material", func(t *testing.T) {
			handler := NewHandler(&mockAuthority{})
			e := setupEcho()

			rec, c := postJSON(e, "/generate", GenerateRequest{
				AgentID:      "agt_test123",
				CommonName:   "collector.corp.local",
				ValidityDays: 90,
			})

			require.NoError(t, handler.Generate(c))
			assert.Equal(t, http.StatusOK, rec.Code)

			var resp GenerateResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.Equal(t, "AABBCC", resp.Thumbprint)
			assert.Equal(t, "Y2VydA==", resp.CertificateData)
			assert.Equal(t, "a2V5", resp.PrivateKeyData)
		})

		t.Run("should return 404 for an unknown agent", func(t *testing.T) {
			mockSvc := &mockAuthority{
				generateFunc: func(ctx context.Context, req certauthority.GenerateRequest) (*certauthority.GenerateResult, error) {
					return nil, agent.ErrAgentNotFound
				},
			}
			handler := NewHandler(mockSvc)
			e := setupEcho()

			rec, c := postJSON(e, "/generate", GenerateRequest{AgentID: "agt_ghost"})

			require.NoError(t, handler.Generate(c))
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})

		t.Run("should reject a request without an agent id", func(t *testing.T) {
			handler := NewHandler(&mockAuthority{})
			e := setupEcho()

			rec, c := postJSON(e, "/generate", GenerateRequest{CommonName: "x"})

			require.NoError(t, handler.Generate(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	})

	t.Run("POST /validate", func(t *testing.T) {
		t.Run("should return accumulated validation errors", func(t *testing.T) {
			mockSvc := &mockAuthority{
				validateFunc: func(ctx context.Context, req certauthority.ValidateRequest) (*certauthority.ValidateResult, error) {
					return &certauthority.ValidateResult{
						Valid:  false,
						Errors: []string{"certificate has expired", "certificate not found in database"},
						Info: &certauthority.Info{
							Thumbprint: "AABBCC",
							Subject:    "CN=collector.corp.local",
						},
					}, nil
				},
			}
			handler := NewHandler(mockSvc)
			e := setupEcho()

			rec, c := postJSON(e, "/validate", ValidateRequest{CertificateData: "Y2VydA=="})

			require.NoError(t, handler.Validate(c))
			assert.Equal(t, http.StatusOK, rec.Code)

			var resp ValidateResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.IsValid)
			assert.Len(t, resp.ValidationErrors, 2)
			require.NotNil(t, resp.CertificateInfo)
			assert.Equal(t, "AABBCC", resp.CertificateInfo.Thumbprint)
		})

		t.Run("should serialize an empty error list for a valid certificate", func(t *testing.T) {
			handler := NewHandler(&mockAuthority{})
			e := setupEcho()

			rec, c := postJSON(e, "/validate", ValidateRequest{CertificateData: "Y2VydA=="})

			require.NoError(t, handler.Validate(c))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `"validation_errors":[]`)
		})

		t.Run("should pass the evaluation time through", func(t *testing.T) {
			var gotReq certauthority.ValidateRequest
			mockSvc := &mockAuthority{
				validateFunc: func(ctx context.Context, req certauthority.ValidateRequest) (*certauthority.ValidateResult, error) {
					gotReq = req
					return &certauthority.ValidateResult{Valid: true}, nil
				},
			}
			handler := NewHandler(mockSvc)
			e := setupEcho()

			at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			rec, c := postJSON(e, "/validate", ValidateRequest{
				CertificateData: "Y2VydA==",
				ValidateAtTime:  &at,
				CheckChain:      true,
			})

			require.NoError(t, handler.Validate(c))
			assert.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, gotReq.At)
			assert.True(t, gotReq.At.Equal(at))
			assert.True(t, gotReq.CheckChain)
		})
	})

	t.Run("POST /renew", func(t *testing.T) {
		t.Run("should report the replacement and supersession", func(t *testing.T) {
			mockSvc := &mockAuthority{
				renewFunc: func(ctx context.Context, req certauthority.RenewRequest) (*certauthority.RenewResult, error) {
					return &certauthority.RenewResult{
						GenerateResult: certauthority.GenerateResult{
							Certificate: &certificate.Certificate{
								Thumbprint:   "DDEEFF",
								SerialNumber: "2A",
								IssuedAt:     time.Now(),
								NotAfter:     time.Now().AddDate(0, 0, 60),
							},
						},
						OldRevoked: true,
					}, nil
				},
			}
			handler := NewHandler(mockSvc)
			e := setupEcho()

			rec, c := postJSON(e, "/renew", RenewRequest{
				AgentID:              "agt_test123",
				CurrentThumbprint:    "AABBCC",
				RevokeOldCertificate: true,
			})

			require.NoError(t, handler.Renew(c))
			assert.Equal(t, http.StatusOK, rec.Code)

			var resp RenewResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.Equal(t, "DDEEFF", resp.NewThumbprint)
			assert.True(t, resp.OldCertificateRevoked)
		})

		t.Run("should return 404 for an unknown thumbprint", func(t *testing.T) {
			mockSvc := &mockAuthority{
				renewFunc: func(ctx context.Context, req certauthority.RenewRequest) (*certauthority.RenewResult, error) {
					return nil, certificate.ErrCertificateNotFound
				},
			}
			handler := NewHandler(mockSvc)
			e := setupEcho()

			rec, c := postJSON(e, "/renew", RenewRequest{
				AgentID:           "agt_test123",
				CurrentThumbprint: "FFFF",
			})

			require.NoError(t, handler.Renew(c))
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	})

	t.Run("POST /revoke", func(t *testing.T) {
		t.Run("should return the revocation time", func(t *testing.T) {
			handler := NewHandler(&mockAuthority{})
			e := setupEcho()

			rec, c := postJSON(e, "/revoke", RevokeRequest{
				AgentID:               "agt_test123",
				CertificateThumbprint: "AABBCC",
				Reason:                "key compromised",
			})

			require.NoError(t, handler.Revoke(c))
			assert.Equal(t, http.StatusOK, rec.Code)

			var resp RevokeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.False(t, resp.RevokedAt.IsZero())
		})

		t.Run("should return 409 when already revoked", func(t *testing.T) {
			mockSvc := &mockAuthority{
				revokeFunc: func(ctx context.Context, req certauthority.RevokeRequest) (*certauthority.RevokeResult, error) {
					return nil, certificate.ErrAlreadyRevoked
				},
			}
			handler := NewHandler(mockSvc)
			e := setupEcho()

			rec, c := postJSON(e, "/revoke", RevokeRequest{
				AgentID:               "agt_test123",
				CertificateThumbprint: "AABBCC",
				Reason:                "again",
			})

			require.NoError(t, handler.Revoke(c))
			assert.Equal(t, http.StatusConflict, rec.Code)
		})

		t.Run("should reject a revocation without a reason", func(t *testing.T) {
			handler := NewHandler(&mockAuthority{})
			e := setupEcho()

			rec, c := postJSON(e, "/revoke", RevokeRequest{
				AgentID:               "agt_test123",
				CertificateThumbprint: "AABBCC",
			})

			require.NoError(t, handler.Revoke(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	})

	t.Run("GET /certificates", func(t *testing.T) {
		t.Run("should list certificates for an agent", func(t *testing.T) {
			revokedAt := time.Now()
			mockSvc := &mockAuthority{
				listFunc: func(ctx context.Context, agentID string) ([]certificate.Certificate, error) {
					return []certificate.Certificate{
						{Thumbprint: "DDEEFF", Status: certificate.StatusActive},
						{Thumbprint: "AABBCC", Status: certificate.StatusRevoked, RevokedAt: &revokedAt, RevocationReason: "key compromised"},
					}, nil
				},
			}
			handler := NewHandler(mockSvc)
			e := setupEcho()
			handler.RegisterRoutes(e.Group("/certificates"))

			req := httptest.NewRequest(http.MethodGet, "/certificates?agent_id=agt_test123", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)

			var resp ListResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			require.Len(t, resp.Certificates, 2)
			assert.Equal(t, "DDEEFF", resp.Certificates[0].Thumbprint)
			assert.Equal(t, "Revoked", resp.Certificates[1].Status)
			assert.NotNil(t, resp.Certificates[1].RevokedAt)
		})

		t.Run("should require the agent_id parameter", func(t *testing.T) {
			handler := NewHandler(&mockAuthority{})
			e := setupEcho()
			handler.RegisterRoutes(e.Group("/certificates"))

			req := httptest.NewRequest(http.MethodGet, "/certificates", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	})
}
