package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mwantia/dualcli"
	"github.com/mwantia/dualcli/cli/tui"
	"github.com/mwantia/dualcli/cmd"
	"github.com/mwantia/dualcli/settings"
	"github.com/mwantia/dualcli/settings/consul"
	"github.com/mwantia/dualcli/settings/file"
	"github.com/mwantia/dualcli/settings/sqlite"
)

const appName = "dualcli-demo"

var errDivideByZero = errors.New("cannot divide by zero")

type divideConfig struct {
	A, B float64
}

// divideCommand validates its operands while building the config
type divideCommand struct {
	cmd.Base
}

func (d *divideCommand) BuildConfig(_ context.Context, values cmd.OptionValues) (any, error) {
	if values.Number("b") == 0 {
		return nil, errDivideByZero
	}
	return divideConfig{A: values.Number("a"), B: values.Number("b")}, nil
}

func (d *divideCommand) Execute(_ context.Context, config any, ec *cmd.ExecutionContext) (cmd.Result, error) {
	c := config.(divideConfig)
	return cmd.Result{Success: true, Data: c.A / c.B, Message: fmt.Sprintf("%g", c.A/c.B)}, nil
}

// trackingWriter remembers whether a command wrote output itself
type trackingWriter struct {
	w       io.Writer
	written bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	t.written = t.written || len(p) > 0
	return t.w.Write(p)
}

func operands() cmd.OptionSchema {
	return cmd.OptionSchema{
		{Name: "a", Type: cmd.TypeNumber, Required: true, Description: "first operand", Order: 1},
		{Name: "b", Type: cmd.TypeNumber, Required: true, Description: "second operand", Order: 2},
	}
}

func commands() []cmd.Command {
	greet := cmd.Func("greet", "Say hello", cmd.OptionSchema{
		{Name: "name", Alias: "n", Default: "world", Description: "who to greet"},
		{Name: "loud", Alias: "l", Type: cmd.TypeBoolean, Description: "shout the greeting"},
	}, func(_ context.Context, values cmd.OptionValues, ec *cmd.ExecutionContext) (cmd.Result, error) {
		message := "Hello, " + values.String("name") + "!"
		if values.Bool("loud") {
			message = strings.ToUpper(message)
		}
		ec.Logger().Debug("greeting %s", values.String("name"))
		return cmd.Result{Success: true, Message: message}, nil
	})
	greet.Samples = []cmd.Example{
		{Command: "greet --name ada", Description: "Greet ada"},
	}

	add := cmd.Func("add", "Add two numbers", operands(), func(_ context.Context, values cmd.OptionValues, _ *cmd.ExecutionContext) (cmd.Result, error) {
		sum := values.Number("a") + values.Number("b")
		return cmd.Result{Success: true, Data: sum, Message: fmt.Sprintf("%g", sum)}, nil
	})

	divide := &divideCommand{Base: cmd.Base{
		Use:   "divide",
		Short: "Divide a by b",
		Flags: operands(),
	}}

	return []cmd.Command{
		greet,
		cmd.NewGroup("math", "Arithmetic commands", add, divide),
	}
}

// newStore picks the settings store from DUALCLI_SETTINGS: "consul", "sqlite:<path>"
// or a settings file path. The default is a yaml file in the user config dir.
func newStore() (settings.Store, error) {
	target := os.Getenv("DUALCLI_SETTINGS")

	switch {
	case target == "consul":
		return consul.NewStore(&consul.Config{
			Address: os.Getenv("CONSUL_HTTP_ADDR"),
			Token:   os.Getenv("CONSUL_HTTP_TOKEN"),
		}, appName)

	case strings.HasPrefix(target, "sqlite:"):
		path := strings.TrimPrefix(target, "sqlite:")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		return sqlite.NewStore(path, appName)

	case target != "":
		return file.NewStore(target, "DUALCLI"), nil
	}

	path, err := file.DefaultPath(appName)
	if err != nil {
		return nil, err
	}
	return file.NewStore(path, "DUALCLI"), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open settings store: %v\n", err)
		os.Exit(1)
	}

	output := &trackingWriter{w: os.Stdout}
	opts := []dualcli.ApplicationOption{
		dualcli.WithOutput(output),
		dualcli.WithSupportedModes(dualcli.ModeCLI, dualcli.ModeTUI),
		dualcli.WithFrontend(dualcli.ModeTUI, tui.New()),
		dualcli.WithSettingsStore(store),
	}
	if logFile := os.Getenv("DUALCLI_LOG_FILE"); logFile != "" {
		opts = append(opts, dualcli.WithLogFile(logFile), dualcli.WithoutTerminalLog())
	}

	app, err := dualcli.New(dualcli.Config{
		Name:     appName,
		Version:  "0.1.0",
		Commands: commands(),
	}, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create application: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// Shell completion: DUALCLI_COMPLETE=<prefix> lists matching top-level commands
	if prefix, ok := os.LookupEnv("DUALCLI_COMPLETE"); ok {
		for _, name := range app.Registry().Complete(prefix) {
			fmt.Fprintln(os.Stdout, name)
		}
		return
	}

	result, err := app.RunFromArgs(ctx, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		app.Close()
		os.Exit(1)
	}
	if result != nil && result.Message != "" && !output.written {
		fmt.Fprintln(os.Stdout, result.Message)
	}
}
