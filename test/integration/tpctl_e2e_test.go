//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trustplane/cmd/tpctl/client"
	"trustplane/cmd/tpctl/commands"
	"trustplane/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runTpctl executes a tpctl invocation in-process against the given server
// and returns whatever it printed.
func runTpctl(t *testing.T, serverURL string, args ...string) (string, error) {
	t.Helper()

	app := commands.NewApp()
	var buf bytes.Buffer
	app.Writer = &buf

	argv := append([]string{"tpctl", "--server", serverURL}, args...)
	err := app.Run(context.Background(), argv)
	return buf.String(), err
}

func TestE2E_TpctlAgentWorkflow(t *testing.T) {
	t.Run("should list, inspect and deactivate agents end to end", func(t *testing.T) {
		env := setupTestEnv(t, config.RouteOptions{})
		server := httptest.NewServer(env.echo)
		defer server.Close()

		reg := registerTestAgent(t, env, "CLI-DC01", "DomainController")
		registerTestAgent(t, env, "CLI-SRV01", "Server")

		stdout, err := runTpctl(t, server.URL, "agent", "list", "--type", "DomainController")
		require.NoError(t, err)

		var listed []client.Agent
		require.NoError(t, json.Unmarshal([]byte(stdout), &listed))
		require.Len(t, listed, 1)
		assert.Equal(t, reg.AgentID, listed[0].ID)
		assert.Equal(t, "CLI-DC01", listed[0].MachineName)

		stdout, err = runTpctl(t, server.URL, "agent", "get", reg.AgentID)
		require.NoError(t, err)

		var fetched client.Agent
		require.NoError(t, json.Unmarshal([]byte(stdout), &fetched))
		assert.Equal(t, reg.AgentID, fetched.ID)
		assert.True(t, fetched.IsActive)

		stdout, err = runTpctl(t, server.URL, "agent", "deactivate", reg.AgentID)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Agent deactivated")

		stdout, err = runTpctl(t, server.URL, "agent", "list")
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(stdout), &listed))
		require.Len(t, listed, 1)
		assert.Equal(t, "CLI-SRV01", listed[0].MachineName)
	})

	t.Run("should surface a 404 from agent get as a command error", func(t *testing.T) {
		env := setupTestEnv(t, config.RouteOptions{})
		server := httptest.NewServer(env.echo)
		defer server.Close()

		_, err := runTpctl(t, server.URL, "agent", "get", "agt_nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestE2E_TpctlCertificateWorkflow(t *testing.T) {
	t.Run("should list and revoke certificates end to end", func(t *testing.T) {
		env := setupTestEnv(t, config.RouteOptions{})
		server := httptest.NewServer(env.echo)
		defer server.Close()

		reg := registerTestAgent(t, env, "CLI-DC02", "DomainController")
		issued := issueCertificate(t, env, reg.AgentID)

		stdout, err := runTpctl(t, server.URL, "cert", "list", "--agent", reg.AgentID)
		require.NoError(t, err)

		var certs []client.CertificateSummary
		require.NoError(t, json.Unmarshal([]byte(stdout), &certs))
		require.Len(t, certs, 1)
		assert.Equal(t, issued.Thumbprint, certs[0].Thumbprint)
		assert.Equal(t, "Active", certs[0].Status)

		stdout, err = runTpctl(t, server.URL,
			"cert", "revoke", issued.Thumbprint,
			"--agent", reg.AgentID,
			"--reason", "host decommissioned")
		require.NoError(t, err)
		assert.Contains(t, stdout, "revoked_at")

		stdout, err = runTpctl(t, server.URL, "cert", "list", "--agent", reg.AgentID)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(stdout), &certs))
		require.Len(t, certs, 1)
		assert.Equal(t, "Revoked", certs[0].Status)
		assert.Equal(t, "host decommissioned", certs[0].RevocationReason)

		_, err = runTpctl(t, server.URL,
			"cert", "revoke", issued.Thumbprint,
			"--agent", reg.AgentID,
			"--reason", "again")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "409")
	})
}

func TestE2E_TpctlDataWorkflow(t *testing.T) {
	t.Run("should list submissions and errors produced by an agent", func(t *testing.T) {
		env := setupTestEnv(t, config.RouteOptions{})
		server := httptest.NewServer(env.echo)
		defer server.Close()

		reg := registerTestAgent(t, env, "CLI-DC03", "DomainController")

		submit := env.postJSON(t, "/api/v1/data/submit", map[string]any{
			"agent_id":  reg.AgentID,
			"data_type": "Users",
			"data":      []map[string]any{{"username": "frank", "enabled": true}},
		})
		require.Equal(t, http.StatusOK, submit.Code)

		report := env.postJSON(t, "/api/v1/errors/report", map[string]any{
			"agent_id": reg.AgentID,
			"errors":   []map[string]any{{"error_id": "cli-err", "severity": "Warning", "message": "slow disk"}},
		})
		require.Equal(t, http.StatusOK, report.Code)

		stdout, err := runTpctl(t, server.URL,
			"submission", "list", "--agent", reg.AgentID, "--status", "Completed")
		require.NoError(t, err)

		var subs []client.Submission
		require.NoError(t, json.Unmarshal([]byte(stdout), &subs))
		require.Len(t, subs, 1)
		assert.Equal(t, "Users", subs[0].DataType)

		stdout, err = runTpctl(t, server.URL, "errors", "list", "--agent", reg.AgentID)
		require.NoError(t, err)

		var errRows []client.AgentError
		require.NoError(t, json.Unmarshal([]byte(stdout), &errRows))
		require.Len(t, errRows, 1)
		assert.Equal(t, "cli-err", errRows[0].ErrorID)
		assert.Equal(t, "slow disk", errRows[0].Message)
	})
}
