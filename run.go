package dualcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mwantia/dualcli/cmd"
	"github.com/mwantia/dualcli/cmd/builtin"
	"github.com/mwantia/dualcli/log"
	"github.com/mwantia/dualcli/runner"
	"github.com/mwantia/dualcli/settings"
)

// RunFromArgs runs the command addressed by tokens, usually os.Args[1:].
//
// A nil result without error means help was written or the run was handed over
// to a front-end. Run-time errors are passed to the error hook when one is set.
func (a *Application) RunFromArgs(ctx context.Context, tokens []string) (*cmd.Result, error) {
	a.loadSettings(ctx)

	globals, rest, err := ExtractGlobals(tokens)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	a.applyGlobals(globals)

	mode, err := a.ResolveMode(globals.Mode)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	a.logger.Debug("resolved mode %s", mode)

	node, tail := a.resolve(rest, mode)

	if frontend, ok := a.opts.Frontends[mode]; ok {
		a.logger.Debug("handing over to %s front-end", mode)
		session := &Session{
			App:  a,
			Mode: mode,
			Node: node,
			Args: tail,
		}
		if err := frontend.Run(ctx, session); err != nil {
			return nil, a.fail(ctx, err)
		}
		return nil, nil
	}

	if node == nil {
		return nil, a.writeHelp(ctx, builtin.RenderRootHelp(a.tree, a.helpOptions(mode)))
	}
	if node.IsContainer() && !node.IsExecutable() && len(tail) == 0 {
		return nil, a.writeHelp(ctx, builtin.RenderHelp(node, a.helpOptions(mode)))
	}
	if wantsHelp(node.Command, tail) {
		return nil, a.writeHelp(ctx, builtin.RenderHelp(node, a.helpOptions(mode)))
	}

	parser := cmd.NewParser(node.Command.Options(), cmd.AcceptsArgs(node.Command))
	values, args, err := parser.Parse(tail)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	if !node.IsExecutable() {
		return nil, a.writeHelp(ctx, builtin.RenderHelp(node, a.helpOptions(mode)))
	}

	result, err := a.invoke(ctx, a.output, node, values, args, mode)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	return &result, nil
}

// resolve finds the command addressed by the leading tokens, falling back to the
// default command when no command matches.
func (a *Application) resolve(tokens []string, mode Mode) (*cmd.Node, []string) {
	visible := func(c cmd.Command) bool {
		return builtin.Visible(c, mode)
	}

	node, tail := cmd.Resolve(a.tree, tokens, visible)
	if node != nil {
		a.logger.Debug("resolved command %s", strings.Join(node.Path(), " "))
		return node, tail
	}

	if name := a.config.DefaultCommand; name != "" {
		if def, ok := cmd.Find(a.tree, name); ok && visible(def.Command) {
			a.logger.Debug("using default command %s", name)
			return def, tokens
		}
	}

	if len(tokens) > 0 && !strings.HasPrefix(tokens[0], "-") {
		if suggestion, ok := a.registry.Suggest(tokens[0]); ok && suggestion != tokens[0] {
			a.logger.Warn("unknown command %q, did you mean %q?", tokens[0], suggestion)
		} else {
			a.logger.Warn("unknown command %q", tokens[0])
		}
	}
	return nil, tokens
}

// Invoke builds the config for node from values and executes it between the hooks.
// Front-ends use it after collecting option values themselves.
func (a *Application) Invoke(ctx context.Context, node *cmd.Node, values cmd.OptionValues, mode Mode) (cmd.Result, error) {
	return a.InvokeTo(ctx, a.output, node, values, mode)
}

// InvokeTo is Invoke with command output written to w instead of the application output.
func (a *Application) InvokeTo(ctx context.Context, w io.Writer, node *cmd.Node, values cmd.OptionValues, mode Mode) (cmd.Result, error) {
	result, err := a.invoke(ctx, w, node, values, nil, mode)
	if err != nil {
		return cmd.Result{}, a.fail(ctx, err)
	}
	return result, nil
}

func (a *Application) invoke(ctx context.Context, w io.Writer, node *cmd.Node, values cmd.OptionValues, args []string, mode Mode) (cmd.Result, error) {
	executor, ok := node.Command.(cmd.Executor)
	if !ok {
		return cmd.Result{}, fmt.Errorf("%w: %s has no execute behavior", cmd.ErrInvalidCommand, strings.Join(node.Path(), " "))
	}

	inv := &Invocation{
		Node:   node,
		Path:   node.Path(),
		Values: values,
		Args:   args,
		Config: values,
		Mode:   mode,
	}

	if builder, ok := node.Command.(cmd.ConfigBuilder); ok {
		config, err := builder.BuildConfig(ctx, values.Clone())
		if err != nil {
			return cmd.Result{}, &ConfigBuildError{Path: inv.Path, Err: err}
		}
		inv.Config = config
	}

	if a.opts.BeforeRun != nil {
		if err := a.opts.BeforeRun(ctx, inv); err != nil {
			return cmd.Result{}, err
		}
	}

	ec := &cmd.ExecutionContext{
		Mode:   mode,
		Path:   inv.Path,
		App:    a.context,
		Output: w,
		Values: values,
		Args:   args,
	}
	a.logger.Debug("executing %s", strings.Join(inv.Path, " "))

	result, err := executor.Execute(ctx, inv.Config, ec)
	if err != nil {
		return cmd.Result{}, &ExecutionError{Path: inv.Path, Err: err}
	}

	if a.opts.AfterRun != nil {
		if err := a.opts.AfterRun(ctx, inv, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// fail routes err to the error hook. Cancellation never reaches the hook.
func (a *Application) fail(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, runner.ErrCancelled) {
		a.logger.Debug("run cancelled: %v", err)
		return err
	}

	a.logger.Debug("run failed: %v", err)
	if a.opts.OnError != nil {
		return a.opts.OnError(ctx, err)
	}
	return err
}

func (a *Application) writeHelp(ctx context.Context, text string) error {
	if _, err := io.WriteString(a.output, text); err != nil {
		return a.fail(ctx, fmt.Errorf("write help: %w", err))
	}
	return nil
}

// wantsHelp reports whether tail asks for help through a flag the command does not declare.
func wantsHelp(c cmd.Command, tail []string) bool {
	schema := c.Options()
	for _, token := range tail {
		switch token {
		case "--":
			return false
		case "--help":
			if _, declared := schema.Lookup("help"); !declared {
				return true
			}
		case "-h":
			if _, declared := schema.LookupAlias("h"); !declared {
				return true
			}
		}
	}
	return false
}

func (a *Application) loadSettings(ctx context.Context) {
	store := a.opts.Store
	if store == nil {
		return
	}

	stored, err := store.Load(ctx)
	if errors.Is(err, settings.ErrNotFound) {
		return
	}
	if err != nil {
		a.logger.Warn("failed to load settings: %v", err)
		return
	}

	a.logger.SetMinLevel(log.Parse(stored.LogLevel))
	a.logger.SetDetailed(stored.DetailedLogs)
}

func (a *Application) applyGlobals(globals Globals) {
	if globals.LogLevel != nil {
		a.logger.SetMinLevel(*globals.LogLevel)
	}
	if globals.Detailed != nil {
		a.logger.SetDetailed(*globals.Detailed)
	}
}
