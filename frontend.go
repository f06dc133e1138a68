package dualcli

import (
	"context"

	"github.com/mwantia/dualcli/cmd"
)

// Frontend presents the application in one mode, e.g. as an interactive terminal UI.
type Frontend interface {
	Run(ctx context.Context, session *Session) error
}

// Session is what a Frontend receives when a run is handed over to it.
type Session struct {
	App  *Application
	Mode Mode

	// Node is the command addressed on the command line, or nil
	Node *cmd.Node

	// Args are the tokens following the addressed command
	Args []string
}
