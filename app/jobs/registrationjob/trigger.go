package registrationjob

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
)

// TriggerConfig holds configuration for the Trigger function
type TriggerConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor int
}

// DefaultTriggerConfig returns the default configuration
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		MaxRetries:    5,
		InitialDelay:  10 * time.Second,
		BackoffFactor: 2,
	}
}

// triggerWithConfig is the internal implementation with configurable delays
func triggerWithConfig(ctx context.Context, fn func() error, config TriggerConfig) error {
	retryDelay := config.InitialDelay

	var err error
	for attempt := 1; attempt <= config.MaxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		log.Errorf("registration attempt %d/%d failed: %v", attempt, config.MaxRetries, err)

		if attempt < config.MaxRetries {
			log.Infof("retrying in %v", retryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			retryDelay *= time.Duration(config.BackoffFactor)
		}
	}

	return fmt.Errorf("registration failed after %d attempts: %w", config.MaxRetries, err)
}

func Trigger(ctx context.Context, fn func() error) error {
	return triggerWithConfig(ctx, fn, DefaultTriggerConfig())
}
