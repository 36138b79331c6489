package livenessjob

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

// DefaultStaleness matches twice the slowest default heartbeat cadence so a
// single missed beat never flaps an agent offline.
const DefaultStaleness = 5 * time.Minute

type TriggerConfig struct {
	Interval time.Duration
}

func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		Interval: time.Minute,
	}
}

func TriggerWithConfig(ctx context.Context, fn func() error, config TriggerConfig) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(config.Interval):
			if err := fn(); err != nil {
				log.Errorf("liveness sweep failed: %s", err)
			}
		}
	}
}

func Trigger(ctx context.Context, fn func() error) {
	TriggerWithConfig(ctx, fn, DefaultTriggerConfig())
}
