package dualcli

import (
	"fmt"
	"io"
	"slices"

	"github.com/mwantia/dualcli/appctx"
	"github.com/mwantia/dualcli/cmd"
	"github.com/mwantia/dualcli/cmd/builtin"
	"github.com/mwantia/dualcli/log"
)

type Application struct {
	config      Config
	opts        *ApplicationOptions
	logger      *log.Logger
	ownsLogger  bool
	output      io.Writer
	registry    *cmd.Registry
	tree        []*cmd.Node
	context     *appctx.Context
	modes       []Mode
	defaultMode Mode
}

// New validates config and builds an application from it. All construction errors are
// returned before any command is registered.
//
// The new application replaces the process-wide appctx context. Only one application
// per process is supported; the most recently constructed one wins.
func New(config Config, opts ...ApplicationOption) (*Application, error) {
	options := newDefaultApplicationOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if config.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidConfig)
	}
	if err := cmd.CheckTree(config.Commands, ReservedNames); err != nil {
		return nil, err
	}

	modes := options.SupportedModes
	if len(modes) == 0 {
		modes = []Mode{ModeCLI}
	}
	defaultMode := config.DefaultMode
	if defaultMode == "" {
		defaultMode = ModeCLI
		if !slices.Contains(modes, ModeCLI) {
			defaultMode = modes[0]
		}
	}
	if err := checkModes(modes, defaultMode); err != nil {
		return nil, err
	}
	for mode := range options.Frontends {
		if !slices.Contains(modes, mode) {
			return nil, fmt.Errorf("%w: frontend registered for unsupported mode %q", ErrInvalidConfig, mode)
		}
	}

	app := &Application{
		config:      config,
		opts:        options,
		output:      options.Output,
		modes:       slices.Clone(modes),
		defaultMode: defaultMode,
		registry:    cmd.NewRegistry(),
	}

	if config.DefaultCommand != "" && !slices.Contains(ReservedNames, config.DefaultCommand) &&
		!slices.ContainsFunc(config.Commands, func(c cmd.Command) bool { return c.Name() == config.DefaultCommand }) {
		return nil, fmt.Errorf("%w: default command %q is not registered", ErrInvalidConfig, config.DefaultCommand)
	}

	help := app.helpOptions("")
	app.tree = cmd.Assemble(config.Commands, func(parent *cmd.Node) cmd.Command {
		return builtin.NewSubHelp(parent, help)
	})

	builtins := []cmd.Command{
		builtin.NewVersion(config.Name, config.Version),
		builtin.NewHelp(help, app.Tree),
		builtin.NewSettings(),
	}
	for _, c := range append(slices.Clone(config.Commands), builtins...) {
		if err := app.registry.Register(c); err != nil {
			return nil, err
		}
	}
	app.tree = append(app.tree, cmd.Assemble(builtins, nil)...)

	app.logger = options.Logger
	if app.logger == nil {
		app.logger = log.NewLogger(config.Name, options.LogLevel, options.LogFile, options.NoTerminalLog)
		app.ownsLogger = true
	}

	app.context = &appctx.Context{
		Info: appctx.Info{
			Name:           config.Name,
			Version:        config.Version,
			DefaultMode:    defaultMode,
			SupportedModes: slices.Clone(modes),
		},
		Logger: app.logger,
		Store:  options.Store,
	}
	appctx.Set(app.context)

	app.logger.Debug("application %s initialized with modes %v (default %s)", config.Name, modes, defaultMode)
	return app, nil
}

func (a *Application) helpOptions(mode Mode) builtin.HelpOptions {
	return builtin.HelpOptions{
		AppName: a.config.Name,
		Version: a.config.Version,
		Mode:    mode,
		Globals: a.GlobalOptions(),
	}
}

// Tree returns the assembled command tree including built-in commands.
func (a *Application) Tree() []*cmd.Node {
	return a.tree
}

func (a *Application) Registry() *cmd.Registry {
	return a.registry
}

func (a *Application) Context() *appctx.Context {
	return a.context
}

func (a *Application) Logger() *log.Logger {
	return a.logger
}

func (a *Application) Config() Config {
	return a.config
}

func (a *Application) Output() io.Writer {
	return a.output
}

// Close releases the logger if the application created it.
func (a *Application) Close() error {
	if a.ownsLogger {
		return a.logger.Close()
	}
	return nil
}
