package commands

import (
	"context"
	"fmt"

	"trustplane/cmd/tpctl/client"

	"github.com/urfave/cli/v3"
)

func SubmissionCommand() *cli.Command {
	return &cli.Command{
		Name:  "submission",
		Usage: "Inspect data submissions",
		Commands: []*cli.Command{
			listSubmissionCommand(),
		},
	}
}

func listSubmissionCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List submissions, most recent first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "agent",
				Usage: "Filter by agent ID",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Filter by status (Pending, Completed, Failed)",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Filter by data type (Users, Groups, ...)",
			},
		},
		Action: listSubmissionAction,
	}
}

func listSubmissionAction(ctx context.Context, c *cli.Command) error {
	httpClient, err := newClient(c)
	if err != nil {
		return err
	}

	filters := &client.SubmissionFilters{}
	if c.IsSet("agent") {
		filters.AgentID = c.String("agent")
	}
	if c.IsSet("status") {
		filters.Status = c.String("status")
	}
	if c.IsSet("type") {
		filters.DataType = c.String("type")
	}

	submissions, err := httpClient.ListSubmissions(filters)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	return printJSON(c, submissions)
}
