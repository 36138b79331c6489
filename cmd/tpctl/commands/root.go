package commands

import (
	"fmt"

	"trustplane/cmd/tpctl/client"
	"trustplane/cmd/tpctl/config"
	"trustplane/cmd/tpctl/output"
	"trustplane/version"

	"github.com/urfave/cli/v3"
)

// NewApp creates the root CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "tpctl",
		Usage:   "Trustplane CLI - manage agents, certificates and submissions",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Usage: "Trustplane server URL",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Print compact JSON instead of indented",
			},
		},
		Commands: []*cli.Command{
			AgentCommand(),
			CertificateCommand(),
			SubmissionCommand(),
			ErrorCommand(),
		},
	}
}

// newClient builds an API client for the resolved server URL, letting the
// --server flag override config file and environment.
func newClient(c *cli.Command) (*client.HTTPClient, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	serverURL := cfg.GetServerURL()
	if c.IsSet("server") {
		serverURL = c.String("server")
	}

	return client.NewHTTPClient(serverURL), nil
}

// printJSON writes data to stdout with the formatter the --compact flag
// selects.
func printJSON(c *cli.Command, data any) error {
	formatter := output.NewJSONFormatter()
	if c.Bool("compact") {
		formatter = output.NewCompactFormatter()
	}

	jsonOutput, err := formatter.Format(data)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Fprintln(c.Root().Writer, jsonOutput)
	return nil
}
