// Package reportjob ships buffered error reports on a fixed cadence.
package reportjob

import (
	"context"
	"sync"

	"trustplane/app/services/reporter"
)

type TriggerFunc func(context.Context, func() error)

type ReportJobConfig struct {
	Trigger TriggerFunc
}

type ReportJob struct {
	config ReportJobConfig
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New() ReportJob {
	return NewWithConfig(ReportJobConfig{
		Trigger: Trigger,
	})
}

func NewWithConfig(cfg ReportJobConfig) ReportJob {
	if cfg.Trigger == nil {
		cfg.Trigger = Trigger
	}

	return ReportJob{
		config: cfg,
	}
}

// Register starts flushing svc on the trigger's cadence. Flushing an empty
// buffer is a no-op, so idle agents cost nothing here.
func (rj *ReportJob) Register(ctx context.Context, svc reporter.Service) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	rj.cancel = cancel

	rj.wg.Add(1)
	go func() {
		defer rj.wg.Done()
		rj.config.Trigger(ctx, func() error {
			return svc.Flush(ctx)
		})
	}()

	return cancel
}

func (rj *ReportJob) Shutdown() {
	if rj.cancel != nil {
		rj.cancel()
	}
	rj.wg.Wait()
}
