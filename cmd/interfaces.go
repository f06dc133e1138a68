package cmd

import (
	"context"
	"io"

	"github.com/mwantia/dualcli/appctx"
	"github.com/mwantia/dualcli/log"
)

// Command is a named node of the command tree. Whether it runs anything is decided by the
// optional interfaces below; a command without Executor is a pure container.
type Command interface {
	// Name returns the command identifier used on the command line
	Name() string

	// Description returns human-readable help text
	Description() string

	// DisplayName returns the label shown by interactive front-ends
	DisplayName() string

	// Options returns the options accepted by this command
	Options() OptionSchema

	// SubCommands returns the declared children in display order
	SubCommands() []Command

	Examples() []Example

	SupportsCLI() bool
	SupportsTUI() bool
}

// Executor is implemented by commands that perform work.
// The config is whatever BuildConfig returned, or the parsed OptionValues.
type Executor interface {
	Execute(ctx context.Context, config any, ec *ExecutionContext) (Result, error)
}

// ConfigBuilder turns parsed option values into a typed configuration.
// It is called exactly once per invocation, before any hook runs.
type ConfigBuilder interface {
	BuildConfig(ctx context.Context, values OptionValues) (any, error)
}

// ConfigChangeHandler proposes follow-up value updates when an interactive front-end
// changes one option. A nil return means no further updates.
type ConfigChangeHandler interface {
	OnConfigChange(key string, value any, values OptionValues) OptionValues
}

// ArgsAcceptor is implemented by commands that accept positional words after their options.
type ArgsAcceptor interface {
	AcceptsArgs() bool
}

type Example struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// Result is the value a command returns to its invoker.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ExecutionContext carries everything an executing command may need besides its config.
type ExecutionContext struct {
	Mode appctx.Mode

	// Path contains the command names from the root to the executing command
	Path []string

	App    *appctx.Context
	Output io.Writer

	// Values contains the parsed options the config was built from
	Values OptionValues

	// Args contains positional words for commands implementing ArgsAcceptor
	Args []string
}

// Logger returns the application logger, falling back to the process-wide one.
func (ec *ExecutionContext) Logger() *log.Logger {
	if ec != nil && ec.App != nil && ec.App.Logger != nil {
		return ec.App.Logger
	}
	return appctx.CurrentLogger()
}

// Writer returns the output writer, never nil.
func (ec *ExecutionContext) Writer() io.Writer {
	if ec != nil && ec.Output != nil {
		return ec.Output
	}
	return io.Discard
}

// HasSubCommands reports whether c declares at least one child.
func HasSubCommands(c Command) bool {
	return len(c.SubCommands()) > 0
}

// IsExecutable reports whether c implements Executor.
func IsExecutable(c Command) bool {
	_, ok := c.(Executor)
	return ok
}

// AcceptsArgs reports whether c takes positional words.
func AcceptsArgs(c Command) bool {
	a, ok := c.(ArgsAcceptor)
	return ok && a.AcceptsArgs()
}
