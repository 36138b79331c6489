package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func ErrorCommand() *cli.Command {
	return &cli.Command{
		Name:  "errors",
		Usage: "Inspect errors reported by agents",
		Commands: []*cli.Command{
			listErrorCommand(),
		},
	}
}

func listErrorCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List an agent's deduplicated errors, most recent first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "agent",
				Usage:    "Agent ID",
				Required: true,
			},
		},
		Action: listErrorAction,
	}
}

func listErrorAction(ctx context.Context, c *cli.Command) error {
	httpClient, err := newClient(c)
	if err != nil {
		return err
	}

	errs, err := httpClient.ListErrors(c.String("agent"))
	if err != nil {
		return fmt.Errorf("failed to list errors: %w", err)
	}

	return printJSON(c, errs)
}
