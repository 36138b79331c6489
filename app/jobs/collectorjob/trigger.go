package collectorjob

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

type TriggerConfig struct {
	// Interval is the cadence between successful cycles, normally the
	// interval handed out at registration.
	Interval time.Duration
	// RetryDelay is the shorter wait used after a failed cycle.
	RetryDelay time.Duration
}

func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		Interval:   time.Hour,
		RetryDelay: time.Minute,
	}
}

// TriggerWithConfig runs the first cycle as soon as the job starts;
// registration has already completed by then. After a failure the next
// cycle is pulled forward to RetryDelay instead of waiting out Interval.
func TriggerWithConfig(ctx context.Context, fn func() error, config TriggerConfig) {
	var wait time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			if err := fn(); err != nil {
				log.Errorf("collection cycle failed: %s", err)
				wait = config.RetryDelay
			} else {
				wait = config.Interval
			}
		}
	}
}

func Trigger(ctx context.Context, fn func() error) {
	TriggerWithConfig(ctx, fn, DefaultTriggerConfig())
}
