package apiserver

import (
	"fmt"
	"time"

	"trustplane/internal/httpclient"
)

type Config struct {
	BaseURL     string
	Credentials httpclient.CredentialSource
	Timeout     time.Duration
	MaxRetries  int
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
