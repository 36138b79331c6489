package commands

import (
	"context"
	"fmt"

	"trustplane/cmd/tpctl/client"

	"github.com/urfave/cli/v3"
)

func CertificateCommand() *cli.Command {
	return &cli.Command{
		Name:  "cert",
		Usage: "Manage agent certificates",
		Commands: []*cli.Command{
			listCertificateCommand(),
			revokeCertificateCommand(),
		},
	}
}

func listCertificateCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List an agent's certificates, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "agent",
				Usage:    "Agent ID",
				Required: true,
			},
		},
		Action: listCertificateAction,
	}
}

func listCertificateAction(ctx context.Context, c *cli.Command) error {
	httpClient, err := newClient(c)
	if err != nil {
		return err
	}

	certs, err := httpClient.ListCertificates(c.String("agent"))
	if err != nil {
		return fmt.Errorf("failed to list certificates: %w", err)
	}

	return printJSON(c, certs)
}

func revokeCertificateCommand() *cli.Command {
	return &cli.Command{
		Name:      "revoke",
		Usage:     "Revoke a certificate by thumbprint",
		ArgsUsage: "<thumbprint>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "agent",
				Usage:    "Agent ID the certificate was issued to",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "reason",
				Usage:    "Revocation reason recorded with the certificate",
				Required: true,
			},
		},
		Action: revokeCertificateAction,
	}
}

func revokeCertificateAction(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("certificate thumbprint is required")
	}

	httpClient, err := newClient(c)
	if err != nil {
		return err
	}

	resp, err := httpClient.RevokeCertificate(&client.RevokeCertificateRequest{
		AgentID:               c.String("agent"),
		CertificateThumbprint: c.Args().Get(0),
		Reason:                c.String("reason"),
	})
	if err != nil {
		return fmt.Errorf("failed to revoke certificate: %w", err)
	}

	return printJSON(c, resp)
}
