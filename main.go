package main

import (
	"context"
	"fmt"
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v3"

	"trustplane/app"
	"trustplane/app/jobs/livenessjob"
	"trustplane/config"
	"trustplane/config/appconf"
	"trustplane/internal/dbconn"
	"trustplane/internal/validator"
	"trustplane/version"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "trustplane",
		Usage:   "agent trust and submission control plane",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "print the build version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintln(cmd.Writer, version.Version)
					return nil
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx)
		},
	}
}

func runServer(ctx context.Context) error {
	db, err := dbconn.GetConn(
		dbconn.WithURL(appconf.DBURL()),
	)
	if err != nil {
		return fmt.Errorf("db connection failed: %w", err)
	}

	defer dbconn.Close()

	container := app.NewContainer(db)

	if err := container.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	e := echo.New()
	e.Validator = validator.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	config.AddRoutes(e, container, config.RouteOptions{
		AgentAuth: appconf.AgentAuthEnabled(),
	})

	sweeper := livenessjob.New()
	sweeper.Register(ctx, container.AgentRepository)
	defer sweeper.Shutdown()

	return e.Start(fmt.Sprintf(":%s", appconf.Port()))
}
