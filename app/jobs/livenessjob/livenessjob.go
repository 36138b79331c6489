// Package livenessjob flips agents offline once their heartbeats go stale.
// Heartbeat handling only ever marks agents online; this sweep is the other
// half of that contract.
package livenessjob

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
)

type TriggerFunc func(context.Context, func() error)

// Sweeper is the slice of the agent store the sweep needs.
type Sweeper interface {
	MarkOfflineSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type LivenessJobConfig struct {
	Trigger TriggerFunc
	// Staleness is how long an agent may stay silent before it is
	// considered offline.
	Staleness time.Duration
}

type LivenessJob struct {
	config LivenessJobConfig
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New() LivenessJob {
	return NewWithConfig(LivenessJobConfig{})
}

func NewWithConfig(cfg LivenessJobConfig) LivenessJob {
	if cfg.Trigger == nil {
		cfg.Trigger = Trigger
	}
	if cfg.Staleness <= 0 {
		cfg.Staleness = DefaultStaleness
	}

	return LivenessJob{
		config: cfg,
	}
}

func (lj *LivenessJob) Register(ctx context.Context, store Sweeper) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	lj.cancel = cancel

	lj.wg.Add(1)
	go func() {
		defer lj.wg.Done()
		lj.config.Trigger(ctx, func() error {
			cutoff := time.Now().UTC().Add(-lj.config.Staleness)
			swept, err := store.MarkOfflineSince(ctx, cutoff)
			if err != nil {
				return err
			}
			if swept > 0 {
				log.Infof("marked %d agents offline after %s without a heartbeat", swept, lj.config.Staleness)
			}
			return nil
		})
	}()

	return cancel
}

func (lj *LivenessJob) Shutdown() {
	if lj.cancel != nil {
		lj.cancel()
	}
	lj.wg.Wait()
}
