package builtin

import (
	"context"
	"fmt"

	"github.com/mwantia/dualcli/cmd"
)

type VersionCommand struct {
	cmd.Base

	app     string
	version string
}

func NewVersion(app, version string) *VersionCommand {
	return &VersionCommand{
		Base: cmd.Base{
			Use:   "version",
			Short: "Show the application version",
		},
		app:     app,
		version: version,
	}
}

func (v *VersionCommand) Execute(ctx context.Context, config any, ec *cmd.ExecutionContext) (cmd.Result, error) {
	message := fmt.Sprintf("%s %s", v.app, v.version)
	fmt.Fprintln(ec.Writer(), message)

	return cmd.Result{
		Success: true,
		Data:    v.version,
		Message: message,
	}, nil
}
