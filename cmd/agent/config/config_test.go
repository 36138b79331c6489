package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "agent.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Empty(t, cfg.ServerURL)
	assert.Empty(t, cfg.Name)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	contents := `server: https://trust.example.com
name: dc01 primary
type: DomainController
state_dir: /tmp/trustplane-test
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://trust.example.com", cfg.ServerURL)
	assert.Equal(t, "dc01 primary", cfg.Name)
	assert.Equal(t, "DomainController", cfg.Type)
	assert.Equal(t, "/tmp/trustplane-test", cfg.StateDir)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestGetServerURL_Priority(t *testing.T) {
	t.Run("env var takes precedence over config file", func(t *testing.T) {
		t.Setenv("TP_CONTROL_PLANE_URL", "http://env.example.com")

		cfg := &Config{
			ServerURL: "http://file.example.com",
		}

		assert.Equal(t, "http://env.example.com", cfg.GetServerURL())
	})

	t.Run("config file takes precedence over default", func(t *testing.T) {
		t.Setenv("TP_CONTROL_PLANE_URL", "")

		cfg := &Config{
			ServerURL: "http://file.example.com",
		}

		assert.Equal(t, "http://file.example.com", cfg.GetServerURL())
	})

	t.Run("default when no env var or config", func(t *testing.T) {
		t.Setenv("TP_CONTROL_PLANE_URL", "")

		cfg := &Config{}

		assert.Equal(t, "http://localhost:8080", cfg.GetServerURL())
	})
}

func TestGetStateDir_Priority(t *testing.T) {
	t.Run("env var takes precedence over config file", func(t *testing.T) {
		t.Setenv("TP_AGENT_STATE_PATH", "/env/state")

		cfg := &Config{
			StateDir: "/file/state",
		}

		assert.Equal(t, "/env/state", cfg.GetStateDir())
	})

	t.Run("default when nothing is set", func(t *testing.T) {
		t.Setenv("TP_AGENT_STATE_PATH", "")

		cfg := &Config{}

		assert.Equal(t, "/var/lib/trustplane", cfg.GetStateDir())
	})
}
