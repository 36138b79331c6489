package config

import (
	"fmt"
	"os"

	"trustplane/config/appconf"

	"github.com/goccy/go-yaml"
)

const envVarServerURL = "TP_CONTROL_PLANE_URL"

// Config holds the agent configuration read from agent.yaml.
type Config struct {
	ServerURL string `yaml:"server"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	StateDir  string `yaml:"state_dir"`
}

// Load reads the config file at path. A missing file is not an error; every
// field has a usable default.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// GetServerURL returns the control plane URL with priority: env var >
// config file > compiled default.
func (c *Config) GetServerURL() string {
	if url := os.Getenv(envVarServerURL); url != "" {
		return url
	}
	if c.ServerURL != "" {
		return c.ServerURL
	}
	return appconf.ControlPlaneURL()
}

// GetStateDir returns where the agent persists its identity, with the same
// env var > config file > default priority.
func (c *Config) GetStateDir() string {
	if path := os.Getenv("TP_AGENT_STATE_PATH"); path != "" {
		return path
	}
	if c.StateDir != "" {
		return c.StateDir
	}
	return appconf.AgentStatePath()
}
