// Package collectorjob schedules recurring data collection cycles.
package collectorjob

import (
	"context"
	"sync"

	"trustplane/app/services/collector"
)

type TriggerFunc func(context.Context, func() error)

type CollectorJobConfig struct {
	Trigger TriggerFunc
}

type CollectorJob struct {
	config CollectorJobConfig
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New() CollectorJob {
	return NewWithConfig(CollectorJobConfig{
		Trigger: Trigger,
	})
}

func NewWithConfig(cfg CollectorJobConfig) CollectorJob {
	if cfg.Trigger == nil {
		cfg.Trigger = Trigger
	}

	return CollectorJob{
		config: cfg,
	}
}

func (cj *CollectorJob) Register(ctx context.Context, svc collector.Service) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	cj.cancel = cancel

	cj.wg.Add(1)
	go func() {
		defer cj.wg.Done()
		cj.config.Trigger(ctx, func() error {
			return svc.CollectAndSubmit(ctx)
		})
	}()

	return cancel
}

func (cj *CollectorJob) Shutdown() {
	if cj.cancel != nil {
		cj.cancel()
	}
	cj.wg.Wait()
}
