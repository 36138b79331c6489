package main

import (
	"context"
	"fmt"
	"os"

	"trustplane/cmd/tpctl/commands"
)

func main() {
	app := commands.NewApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
