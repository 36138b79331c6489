package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trustplane/cmd/tpctl/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateCommand(t *testing.T) {
	cmd := CertificateCommand()

	assert.Equal(t, "cert", cmd.Name)
	require.Len(t, cmd.Commands, 2)
	assert.Equal(t, "list", cmd.Commands[0].Name)
	assert.Equal(t, "revoke", cmd.Commands[1].Name)
	assert.Equal(t, "<thumbprint>", cmd.Commands[1].ArgsUsage)
}

func TestCertList_PrintsCertificates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/certificates", r.URL.Path)
		assert.Equal(t, "agt_7", r.URL.Query().Get("agent_id"))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"certificates": []client.CertificateSummary{
				{Thumbprint: "AABBCC", Status: "Active"},
			},
		})
	}))
	defer server.Close()

	app := NewApp()
	var buf bytes.Buffer
	app.Writer = &buf

	err := app.Run(context.Background(), []string{"tpctl", "--server", server.URL, "cert", "list", "--agent", "agt_7"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "AABBCC")
	assert.Contains(t, buf.String(), "Active")
}

func TestCertRevoke_SendsReason(t *testing.T) {
	var captured client.RevokeCertificateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/certificates/revoke", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&captured)

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(client.RevokeCertificateResponse{Success: true, RevokedAt: time.Now()})
	}))
	defer server.Close()

	app := NewApp()
	app.Writer = &bytes.Buffer{}

	err := app.Run(context.Background(), []string{
		"tpctl", "--server", server.URL,
		"cert", "revoke", "AABBCC",
		"--agent", "agt_7",
		"--reason", "key compromised",
	})
	require.NoError(t, err)

	assert.Equal(t, "agt_7", captured.AgentID)
	assert.Equal(t, "AABBCC", captured.CertificateThumbprint)
	assert.Equal(t, "key compromised", captured.Reason)
}

func TestCertRevoke_RequiresThumbprint(t *testing.T) {
	app := NewApp()
	app.Writer = &bytes.Buffer{}

	err := app.Run(context.Background(), []string{
		"tpctl", "cert", "revoke",
		"--agent", "agt_7",
		"--reason", "rotation",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thumbprint is required")
}
