package runner

import (
	"context"

	"github.com/mwantia/dualcli/cmd"
)

// Invoke runs one command with already parsed option values.
type Invoke func(ctx context.Context, values cmd.OptionValues) (cmd.Result, error)

// CommandCoordinator runs command invocations one at a time for a front-end.
type CommandCoordinator = Coordinator[cmd.OptionValues, cmd.Result]

// ForCommand binds invoke to a new coordinator.
func ForCommand(invoke Invoke, opts ...Option) *CommandCoordinator {
	return New(Operation[cmd.OptionValues, cmd.Result](invoke), opts...)
}
