package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	defaultServerURL = "http://localhost:8080"
	envVarServerURL  = "TRUSTPLANE_SERVER_URL"
	configFileName   = ".trustplane/config.yml"
)

// Config holds the tpctl configuration
type Config struct {
	ServerURL string `yaml:"server"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := &Config{}

	// A missing or unreadable config file falls back to defaults.
	_ = loadFromFile(cfg)

	return cfg, nil
}

// GetServerURL returns the server URL with priority: env var > config file > default
func (c *Config) GetServerURL() string {
	if url := os.Getenv(envVarServerURL); url != "" {
		return url
	}

	if c.ServerURL != "" {
		return c.ServerURL
	}

	return defaultServerURL
}

// loadFromFile loads configuration from ~/.trustplane/config.yml
func loadFromFile(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, configFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}
