// Package dualcli runs one tree of commands under several presentation modes.
//
// An Application is built once from a Config. Construction validates the command
// tree, injects help into every container and registers the built-in help, version
// and settings commands. RunFromArgs then resolves global options, the mode and the
// command path from raw tokens, parses the remaining tokens against the command's
// option schema and executes it between the configured hooks. Modes with a
// registered Frontend hand the resolved command over to that front-end instead.
package dualcli

import (
	"github.com/mwantia/dualcli/appctx"
	"github.com/mwantia/dualcli/cmd"
)

type Mode = appctx.Mode

const (
	ModeCLI     = appctx.ModeCLI
	ModeTUI     = appctx.ModeTUI
	ModeDefault = appctx.ModeDefault
)

// ReservedNames are the top-level names taken by built-in commands.
var ReservedNames = []string{cmd.HelpName, "version", "settings"}

// Config is the static description of an application.
type Config struct {
	Name    string
	Version string

	// Commands are the user-defined top-level commands in display order
	Commands []cmd.Command

	// DefaultCommand runs when the tokens do not start with a known command
	DefaultCommand string

	// DefaultMode is used when no --mode is given. Empty means cli.
	DefaultMode Mode
}
