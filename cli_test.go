package main

import (
	"testing"

	"trustplane/version"
)

func TestCLIApp_VersionFlag(t *testing.T) {
	app := newApp()

	if app.Version != version.Version {
		t.Errorf("expected version %q, got %q", version.Version, app.Version)
	}
}

func TestCLIApp_HasVersionCommand(t *testing.T) {
	app := newApp()

	var found bool
	for _, cmd := range app.Commands {
		if cmd.Name == "version" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected 'version' subcommand to exist")
	}
}

func TestCLIApp_DefaultActionExists(t *testing.T) {
	app := newApp()

	// The default action (no subcommand) should be set
	if app.Action == nil {
		t.Error("expected default action to be set (starts Echo server)")
	}
}

func TestCLIApp_Name(t *testing.T) {
	app := newApp()

	if app.Name != "trustplane" {
		t.Errorf("expected app name 'trustplane', got %q", app.Name)
	}
}
