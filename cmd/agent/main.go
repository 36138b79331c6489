package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trustplane/app/jobs/collectorjob"
	"trustplane/app/jobs/heartbeatjob"
	"trustplane/app/jobs/registrationjob"
	"trustplane/app/jobs/reportjob"
	"trustplane/app/services/agentregistrar"
	"trustplane/app/services/agentstate"
	"trustplane/app/services/collector"
	"trustplane/app/services/heartbeat"
	"trustplane/app/services/reporter"
	agentconf "trustplane/cmd/agent/config"
	"trustplane/config/appconf"
	"trustplane/internal/apiserver"
	"trustplane/internal/cmdexec"
	"trustplane/version"

	"github.com/labstack/gommon/log"
	"github.com/urfave/cli/v3"
)

func main() {
	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "trustplane-agent",
		Usage:   "registers this host with the control plane and reports its directory data",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the agent config file",
				Value: appconf.AgentConfigPath(),
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "control plane URL",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "agent display name",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "agent type reported at registration",
			},
			&cli.StringFlag{
				Name:  "state-dir",
				Usage: "directory for the persisted agent identity",
			},
		},
		Action: runAgent,
	}
}

func runAgent(ctx context.Context, cmd *cli.Command) error {
	cfg, err := agentconf.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load agent config: %w", err)
	}

	serverURL := cfg.GetServerURL()
	if cmd.IsSet("server") {
		serverURL = cmd.String("server")
	}
	name := cfg.Name
	if cmd.IsSet("name") {
		name = cmd.String("name")
	}
	agentType := cfg.Type
	if cmd.IsSet("type") {
		agentType = cmd.String("type")
	}
	stateDir := cfg.GetStateDir()
	if cmd.IsSet("state-dir") {
		stateDir = cmd.String("state-dir")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// A missing state file just means this host has never registered.
	state := agentstate.New(stateDir)
	if err := state.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load agent state: %w", err)
	}

	api, err := apiserver.NewClient(apiserver.Config{
		BaseURL:     serverURL,
		Credentials: state,
		Timeout:     30 * time.Second,
		MaxRetries:  3,
	})
	if err != nil {
		return err
	}

	registrar := agentregistrar.New(agentregistrar.Config{
		API:       api,
		State:     state,
		Name:      name,
		AgentType: agentType,
	})

	registration := registrationjob.New(registrar)
	if err := registration.Register(ctx); err != nil {
		return err
	}

	errorReporter := reporter.New(api, state)

	heartbeats := heartbeatjob.New()
	heartbeats.Register(ctx, heartbeat.NewWithDependencies(api, state))
	defer heartbeats.Shutdown()

	reports := reportjob.New()
	reports.Register(ctx, errorReporter)
	defer reports.Shutdown()

	collectCfg := collectorjob.DefaultTriggerConfig()
	if minutes := state.CollectionInterval(); minutes > 0 {
		collectCfg.Interval = time.Duration(minutes) * time.Minute
	}
	collections := collectorjob.NewWithConfig(collectorjob.CollectorJobConfig{
		Trigger: func(ctx context.Context, fn func() error) {
			collectorjob.TriggerWithConfig(ctx, fn, collectCfg)
		},
	})
	collections.Register(ctx, &capturingCollector{
		inner:    collector.New(api, state, cmdexec.New()),
		reporter: errorReporter,
	})
	defer collections.Shutdown()

	log.Infof("agent %s running, collecting every %v", state.GetAgentID(), collectCfg.Interval)
	<-ctx.Done()

	// The run context is gone, so give the final flush its own deadline.
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := errorReporter.Flush(flushCtx); err != nil {
		log.Warnf("final error flush failed: %v", err)
	}

	log.Info("shutting down")
	return nil
}

// capturingCollector buffers collection failures into the error reporter so
// the control plane sees them on the next flush.
type capturingCollector struct {
	inner    collector.Service
	reporter reporter.Service
}

func (c *capturingCollector) CollectAndSubmit(ctx context.Context) error {
	err := c.inner.CollectAndSubmit(ctx)
	if err != nil {
		c.reporter.Capture("Error", "Collection", "collector", err)
	}
	return err
}
