package commands

import (
	"context"
	"fmt"

	"trustplane/cmd/tpctl/client"

	"github.com/urfave/cli/v3"
)

func AgentCommand() *cli.Command {
	return &cli.Command{
		Name:  "agent",
		Usage: "Manage agents",
		Commands: []*cli.Command{
			listAgentCommand(),
			getAgentCommand(),
			deactivateAgentCommand(),
		},
	}
}

func listAgentCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List active agents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "Filter by agent type (DomainController, Server, Workstation)",
			},
			&cli.BoolFlag{
				Name:  "online",
				Usage: "Show only agents currently online",
			},
		},
		Action: listAgentAction,
	}
}

func listAgentAction(ctx context.Context, c *cli.Command) error {
	httpClient, err := newClient(c)
	if err != nil {
		return err
	}

	filters := &client.AgentFilters{}
	if c.IsSet("type") {
		filters.Type = c.String("type")
	}
	if c.IsSet("online") {
		filters.Online = fmt.Sprintf("%t", c.Bool("online"))
	}

	agents, err := httpClient.ListAgents(filters)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	return printJSON(c, agents)
}

func getAgentCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get agent details",
		ArgsUsage: "<agent-id>",
		Action:    getAgentAction,
	}
}

func getAgentAction(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("agent ID is required")
	}

	httpClient, err := newClient(c)
	if err != nil {
		return err
	}

	agent, err := httpClient.GetAgent(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("failed to get agent: %w", err)
	}

	return printJSON(c, agent)
}

func deactivateAgentCommand() *cli.Command {
	return &cli.Command{
		Name:      "deactivate",
		Usage:     "Deactivate an agent so it stops appearing in listings",
		ArgsUsage: "<agent-id>",
		Action:    deactivateAgentAction,
	}
}

func deactivateAgentAction(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("agent ID is required")
	}

	httpClient, err := newClient(c)
	if err != nil {
		return err
	}

	resp, err := httpClient.DeactivateAgent(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("failed to deactivate agent: %w", err)
	}

	return printJSON(c, resp)
}
