package dualcli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mwantia/dualcli/cmd"
	"github.com/mwantia/dualcli/log"
	"github.com/mwantia/dualcli/settings"
)

// Invocation describes one command run as seen by the hooks.
type Invocation struct {
	Node   *cmd.Node
	Path   []string
	Values cmd.OptionValues
	Args   []string
	Config any
	Mode   Mode
}

type BeforeRunHook func(ctx context.Context, inv *Invocation) error

type AfterRunHook func(ctx context.Context, inv *Invocation, result cmd.Result) error

// ErrorHook receives every run-time error. Its return value is what the run returns.
type ErrorHook func(ctx context.Context, err error) error

type ApplicationOptions struct {
	SupportedModes []Mode
	Output         io.Writer
	Logger         *log.Logger
	LogLevel       log.LogLevel
	LogFile        string
	NoTerminalLog  bool
	Store          settings.Store
	Frontends      map[Mode]Frontend
	BeforeRun      BeforeRunHook
	AfterRun       AfterRunHook
	OnError        ErrorHook
}

type ApplicationOption func(*ApplicationOptions) error

func newDefaultApplicationOptions() *ApplicationOptions {
	return &ApplicationOptions{
		Output:    os.Stdout,
		LogLevel:  log.Info,
		Frontends: make(map[Mode]Frontend),
	}
}

// WithSupportedModes replaces the default [cli] set of supported modes.
func WithSupportedModes(modes ...Mode) ApplicationOption {
	return func(opts *ApplicationOptions) error {
		if len(modes) == 0 {
			return fmt.Errorf("%w: at least one mode must be supported", ErrInvalidConfig)
		}
		opts.SupportedModes = modes
		return nil
	}
}

// WithOutput sets where help and command output is written. Defaults to stdout.
func WithOutput(w io.Writer) ApplicationOption {
	return func(opts *ApplicationOptions) error {
		if w == nil {
			return fmt.Errorf("%w: output cannot be nil", ErrInvalidConfig)
		}
		opts.Output = w
		return nil
	}
}

// WithLogger uses logger instead of creating one. Log level and file options are ignored.
func WithLogger(logger *log.Logger) ApplicationOption {
	return func(opts *ApplicationOptions) error {
		opts.Logger = logger
		return nil
	}
}

func WithLogLevel(logLevel log.LogLevel) ApplicationOption {
	return func(opts *ApplicationOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithLogFile(logFile string) ApplicationOption {
	return func(opts *ApplicationOptions) error {
		opts.LogFile = logFile
		return nil
	}
}

func WithoutTerminalLog() ApplicationOption {
	return func(opts *ApplicationOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}

// WithSettingsStore loads settings from store at the start of every run and lets the
// settings command persist changes to it.
func WithSettingsStore(store settings.Store) ApplicationOption {
	return func(opts *ApplicationOptions) error {
		opts.Store = store
		return nil
	}
}

// WithFrontend hands runs in mode over to frontend.
func WithFrontend(mode Mode, frontend Frontend) ApplicationOption {
	return func(opts *ApplicationOptions) error {
		if frontend == nil {
			return fmt.Errorf("%w: frontend for mode %q cannot be nil", ErrInvalidConfig, mode)
		}
		opts.Frontends[mode] = frontend
		return nil
	}
}

func WithBeforeRun(hook BeforeRunHook) ApplicationOption {
	return func(opts *ApplicationOptions) error {
		opts.BeforeRun = hook
		return nil
	}
}

func WithAfterRun(hook AfterRunHook) ApplicationOption {
	return func(opts *ApplicationOptions) error {
		opts.AfterRun = hook
		return nil
	}
}

func WithErrorHandler(hook ErrorHook) ApplicationOption {
	return func(opts *ApplicationOptions) error {
		opts.OnError = hook
		return nil
	}
}
