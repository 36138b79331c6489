// Package registrationjob runs the registration handshake at agent startup,
// retrying with exponential backoff until the control plane answers.
package registrationjob

import (
	"context"

	"trustplane/internal/apiserver"

	"github.com/labstack/gommon/log"
)

type TriggerFunc func(context.Context, func() error) error

type Registrar interface {
	Register(ctx context.Context) (*apiserver.RegistrationResponse, error)
}

type Job struct {
	trigger   TriggerFunc
	registrar Registrar
}

type Config struct {
	Registrar Registrar
	Trigger   TriggerFunc
}

func New(registrar Registrar) *Job {
	return NewWithConfig(&Config{
		Registrar: registrar,
	})
}

func NewWithConfig(cfg *Config) *Job {
	if cfg.Trigger == nil {
		cfg.Trigger = Trigger
	}

	return &Job{
		trigger:   cfg.Trigger,
		registrar: cfg.Registrar,
	}
}

// Register blocks until registration succeeds or the retry budget is spent.
// The agent has no identity to heartbeat or submit with until this returns
// nil, so callers treat an error as fatal.
func (j *Job) Register(ctx context.Context) error {
	return j.trigger(ctx, func() error {
		response, err := j.registrar.Register(ctx)
		if err != nil {
			return err
		}

		log.Infof("agent registered as %s", response.AgentID)
		return nil
	})
}
