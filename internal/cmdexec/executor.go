// Package cmdexec executes collector source commands without a shell.
// Commands are split shellwords-style so configured sources read naturally
// while never passing through /bin/sh.
package cmdexec

import (
	"context"
	"fmt"
	"os/exec"

	shellwords "github.com/mattn/go-shellwords"
)

type Executor struct{}

func New() *Executor {
	return &Executor{}
}

func (e *Executor) Execute(ctx context.Context, command string) (string, error) {
	argv, err := shellwords.Parse(command)
	if err != nil {
		return "", fmt.Errorf("failed to parse command: %w", err)
	}
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), err
	}
	return string(output), nil
}
