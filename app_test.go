package dualcli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mwantia/dualcli/appctx"
	"github.com/mwantia/dualcli/cmd"
	"github.com/mwantia/dualcli/log"
	"github.com/mwantia/dualcli/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDivideByZero = errors.New("cannot divide by zero")

type divideConfig struct {
	A, B float64
}

// divideCommand counts BuildConfig calls and rejects a zero divisor while building its config.
type divideCommand struct {
	cmd.Base
	builds   int
	executed bool
}

func newDivide() *divideCommand {
	return &divideCommand{Base: cmd.Base{
		Use:   "divide",
		Short: "Divide a by b",
		Flags: cmd.OptionSchema{
			{Name: "a", Type: cmd.TypeNumber, Required: true},
			{Name: "b", Type: cmd.TypeNumber, Required: true},
		},
	}}
}

func (d *divideCommand) BuildConfig(_ context.Context, values cmd.OptionValues) (any, error) {
	d.builds++
	if values.Number("b") == 0 {
		return nil, errDivideByZero
	}
	return divideConfig{A: values.Number("a"), B: values.Number("b")}, nil
}

func (d *divideCommand) Execute(_ context.Context, config any, ec *cmd.ExecutionContext) (cmd.Result, error) {
	d.executed = true
	c := config.(divideConfig)
	return cmd.Result{Success: true, Data: c.A / c.B}, nil
}

type recordingFrontend struct {
	session *Session
	err     error
}

func (f *recordingFrontend) Run(_ context.Context, session *Session) error {
	f.session = session
	return f.err
}

type memoryStore struct {
	stored *settings.Settings
}

func (m *memoryStore) Load(context.Context) (*settings.Settings, error) {
	if m.stored == nil {
		return nil, settings.ErrNotFound
	}
	return m.stored, nil
}

func (m *memoryStore) Save(_ context.Context, s settings.Settings) error {
	m.stored = &s
	return nil
}

type fixture struct {
	app    *Application
	out    *bytes.Buffer
	logs   *bytes.Buffer
	divide *divideCommand
	greets []cmd.OptionValues
}

func newFixture(t *testing.T, config Config, opts ...ApplicationOption) *fixture {
	t.Helper()

	previous := appctx.Current()
	t.Cleanup(func() { appctx.Set(previous) })

	f := &fixture{
		out:    &bytes.Buffer{},
		logs:   &bytes.Buffer{},
		divide: newDivide(),
	}

	greet := cmd.Func("greet", "Say hello", cmd.OptionSchema{
		{Name: "name", Alias: "n", Default: "world"},
		{Name: "loud", Type: cmd.TypeBoolean},
	}, func(_ context.Context, values cmd.OptionValues, ec *cmd.ExecutionContext) (cmd.Result, error) {
		f.greets = append(f.greets, values)
		return cmd.Result{Success: true, Message: "hello " + values.String("name")}, nil
	})

	if config.Name == "" {
		config.Name = "demo"
		config.Version = "1.0.0"
	}
	if config.Commands == nil {
		config.Commands = []cmd.Command{
			greet,
			cmd.NewGroup("math", "Arithmetic", f.divide),
		}
	}

	logger := log.New(log.Options{Name: "demo", Level: log.Info, Output: f.logs})
	opts = append([]ApplicationOption{WithOutput(f.out), WithLogger(logger)}, opts...)

	app, err := New(config, opts...)
	require.NoError(t, err)
	f.app = app
	return f
}

func TestNew_ConstructionErrors(t *testing.T) {
	greet := cmd.Func("greet", "", nil, nil)

	tests := []struct {
		name   string
		config Config
		opts   []ApplicationOption
		want   error
	}{
		{name: "EmptyName", config: Config{}, want: ErrInvalidConfig},
		{name: "ReservedName", config: Config{Name: "x", Commands: []cmd.Command{cmd.Func("version", "", nil, nil)}}, want: cmd.ErrReservedName},
		{name: "HelpConflict", config: Config{Name: "x", Commands: []cmd.Command{cmd.NewGroup("math", "", cmd.Func("help", "", nil, nil))}}, want: cmd.ErrHelpConflict},
		{name: "UnsupportedDefaultMode", config: Config{Name: "x", DefaultMode: ModeTUI}, want: ErrInvalidConfig},
		{name: "DefaultAsSupportedMode", config: Config{Name: "x"}, opts: []ApplicationOption{WithSupportedModes(ModeCLI, ModeDefault)}, want: ErrInvalidConfig},
		{name: "DuplicateMode", config: Config{Name: "x"}, opts: []ApplicationOption{WithSupportedModes(ModeCLI, ModeCLI)}, want: ErrInvalidConfig},
		{name: "FrontendForUnsupportedMode", config: Config{Name: "x"}, opts: []ApplicationOption{WithFrontend(ModeTUI, &recordingFrontend{})}, want: ErrInvalidConfig},
		{name: "UnknownDefaultCommand", config: Config{Name: "x", Commands: []cmd.Command{greet}, DefaultCommand: "nope"}, want: ErrInvalidConfig},
		{name: "InvalidSchema", config: Config{Name: "x", Commands: []cmd.Command{cmd.Func("a", "", cmd.OptionSchema{{Name: "n", Type: cmd.TypeNumber, Min: cmd.Bound(2), Max: cmd.Bound(1)}}, nil)}}, want: cmd.ErrInvalidSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			previous := appctx.Current()
			t.Cleanup(func() { appctx.Set(previous) })

			opts := append([]ApplicationOption{WithLogger(log.Discard())}, tt.opts...)
			app, err := New(tt.config, opts...)
			assert.Nil(t, app)
			assert.ErrorIs(t, err, tt.want)
			assert.Same(t, previous, appctx.Current())
		})
	}
}

func TestNew_Registration(t *testing.T) {
	f := newFixture(t, Config{})

	assert.Equal(t, []string{"greet", "math", "version", "help", "settings"}, f.app.Registry().Names())
	assert.Equal(t, []Mode{ModeCLI}, f.app.SupportedModes())
	assert.Equal(t, ModeCLI, f.app.DefaultMode())
	assert.Same(t, f.app.Context(), appctx.Current())

	math, ok := cmd.Find(f.app.Tree(), "math")
	require.True(t, ok)
	help, ok := math.Child(cmd.HelpName)
	require.True(t, ok)
	assert.True(t, help.Injected())

	greet, ok := cmd.Find(f.app.Tree(), "greet")
	require.True(t, ok)
	assert.Empty(t, greet.Children)
}

func TestNew_DefaultModeFollowsSupportedModes(t *testing.T) {
	f := newFixture(t, Config{}, WithSupportedModes(ModeTUI))
	assert.Equal(t, ModeTUI, f.app.DefaultMode())
}

func TestRunFromArgs_ExecutesLeaf(t *testing.T) {
	f := newFixture(t, Config{})

	result, err := f.app.RunFromArgs(t.Context(), []string{"greet", "-n", "ada", "--loud"})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "hello ada", result.Message)
	require.Len(t, f.greets, 1)
	assert.True(t, f.greets[0].Bool("loud"))
}

func TestRunFromArgs_NestedCommand(t *testing.T) {
	f := newFixture(t, Config{})

	result, err := f.app.RunFromArgs(t.Context(), []string{"math", "divide", "--a", "9", "--b", "-3"})
	require.NoError(t, err)
	assert.Equal(t, -3.0, result.Data)
	assert.Equal(t, 1, f.divide.builds)
}

func TestRunFromArgs_ContainerShowsHelp(t *testing.T) {
	f := newFixture(t, Config{})

	for _, tokens := range [][]string{{"math"}, {"math", "help"}} {
		f.out.Reset()

		result, err := f.app.RunFromArgs(t.Context(), tokens)
		require.NoError(t, err)
		if tokens[len(tokens)-1] == "math" {
			assert.Nil(t, result)
		}
		assert.Contains(t, f.out.String(), "Usage: demo math <command>")
		assert.Contains(t, f.out.String(), "divide")
	}
	assert.False(t, f.divide.executed)
}

// runnableGroup has sub-commands and its own execute behavior.
type runnableGroup struct {
	cmd.Base
	ran bool
}

func (g *runnableGroup) Execute(context.Context, any, *cmd.ExecutionContext) (cmd.Result, error) {
	g.ran = true
	return cmd.Result{Success: true, Message: "group ran"}, nil
}

func TestRunFromArgs_ExecutableContainerRuns(t *testing.T) {
	leaf := cmd.Func("leaf", "", nil, func(context.Context, cmd.OptionValues, *cmd.ExecutionContext) (cmd.Result, error) {
		return cmd.Result{Success: true}, nil
	})
	group := &runnableGroup{Base: cmd.Base{Use: "grp", Short: "Runnable group", Children: []cmd.Command{leaf}}}
	f := newFixture(t, Config{Commands: []cmd.Command{group}})

	result, err := f.app.RunFromArgs(t.Context(), []string{"grp"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, group.ran)
	assert.Equal(t, "group ran", result.Message)
	assert.Empty(t, f.out.String())
}

func TestRunFromArgs_HelpFlag(t *testing.T) {
	f := newFixture(t, Config{})

	result, err := f.app.RunFromArgs(t.Context(), []string{"greet", "--name", "x", "--help"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Contains(t, f.out.String(), "Usage: demo greet [options]")
	assert.Empty(t, f.greets)
}

func TestRunFromArgs_RootHelp(t *testing.T) {
	f := newFixture(t, Config{})

	result, err := f.app.RunFromArgs(t.Context(), nil)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Contains(t, f.out.String(), "Usage: demo [global options] <command> [options]")
	assert.Contains(t, f.out.String(), "greet")
	assert.NotContains(t, f.out.String(), "settings")
}

func TestRunFromArgs_UnknownCommandWarns(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.app.RunFromArgs(t.Context(), []string{"gret"})
	require.NoError(t, err)
	assert.Contains(t, f.logs.String(), `unknown command "gret", did you mean "greet"?`)
	assert.Contains(t, f.out.String(), "Usage: demo [global options]")
}

func TestRunFromArgs_SettingsHiddenInCLI(t *testing.T) {
	f := newFixture(t, Config{})

	result, err := f.app.RunFromArgs(t.Context(), []string{"settings", "--log-level", "debug"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Contains(t, f.logs.String(), `unknown command "settings"`)
}

func TestRunFromArgs_DefaultCommand(t *testing.T) {
	f := newFixture(t, Config{DefaultCommand: "greet"})

	result, err := f.app.RunFromArgs(t.Context(), []string{"--name", "bob"})
	require.NoError(t, err)
	assert.Equal(t, "hello bob", result.Message)

	result, err = f.app.RunFromArgs(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Message)
}

func TestRunFromArgs_HelpAndVersionCommands(t *testing.T) {
	f := newFixture(t, Config{})

	result, err := f.app.RunFromArgs(t.Context(), []string{"help", "math", "divide"})
	require.NoError(t, err)
	assert.Contains(t, result.Data, "Usage: demo math divide [options]")

	result, err = f.app.RunFromArgs(t.Context(), []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "demo 1.0.0", result.Message)
}

func TestRunFromArgs_ValidationError(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.app.RunFromArgs(t.Context(), []string{"math", "divide", "--a", "1"})
	assert.ErrorIs(t, err, cmd.ErrValidation)
	assert.Equal(t, 0, f.divide.builds)
}

func TestRunFromArgs_ConfigBuildError(t *testing.T) {
	var hooked []error
	var before bool
	f := newFixture(t, Config{},
		WithBeforeRun(func(context.Context, *Invocation) error {
			before = true
			return nil
		}),
		WithErrorHandler(func(_ context.Context, err error) error {
			hooked = append(hooked, err)
			return err
		}),
	)

	_, err := f.app.RunFromArgs(t.Context(), []string{"math", "divide", "--a", "1", "--b", "0"})

	var buildErr *ConfigBuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, errDivideByZero.Error(), err.Error())
	assert.ErrorIs(t, err, errDivideByZero)
	assert.Equal(t, []string{"math", "divide"}, buildErr.Path)

	assert.Equal(t, 1, f.divide.builds)
	assert.False(t, before)
	assert.False(t, f.divide.executed)
	require.Len(t, hooked, 1)
	assert.Same(t, err, hooked[0])
}

func TestRunFromArgs_HookOrder(t *testing.T) {
	var events []string
	f := newFixture(t, Config{},
		WithBeforeRun(func(_ context.Context, inv *Invocation) error {
			events = append(events, "before:"+strings.Join(inv.Path, " "))
			assert.Equal(t, divideConfig{A: 6, B: 2}, inv.Config)
			return nil
		}),
		WithAfterRun(func(_ context.Context, inv *Invocation, result cmd.Result) error {
			events = append(events, "after")
			assert.Equal(t, 3.0, result.Data)
			return nil
		}),
	)

	_, err := f.app.RunFromArgs(t.Context(), []string{"math", "divide", "--a=6", "--b=2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"before:math divide", "after"}, events)
	assert.True(t, f.divide.executed)
}

func TestRunFromArgs_BeforeRunAborts(t *testing.T) {
	abort := errors.New("not now")
	f := newFixture(t, Config{}, WithBeforeRun(func(context.Context, *Invocation) error { return abort }))

	_, err := f.app.RunFromArgs(t.Context(), []string{"greet"})
	assert.ErrorIs(t, err, abort)
	assert.Empty(t, f.greets)
}

func TestRunFromArgs_ExecutionError(t *testing.T) {
	boom := errors.New("boom")
	failing := cmd.Func("fail", "", nil, func(context.Context, cmd.OptionValues, *cmd.ExecutionContext) (cmd.Result, error) {
		return cmd.Result{}, boom
	})
	f := newFixture(t, Config{Commands: []cmd.Command{failing}})

	_, err := f.app.RunFromArgs(t.Context(), []string{"fail"})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, []string{"fail"}, execErr.Path)
}

func TestRunFromArgs_ErrorHookReturnValue(t *testing.T) {
	f := newFixture(t, Config{}, WithErrorHandler(func(context.Context, error) error { return nil }))

	result, err := f.app.RunFromArgs(t.Context(), []string{"math", "divide", "--a", "1", "--b", "0"})
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestRunFromArgs_UnsupportedMode(t *testing.T) {
	f := newFixture(t, Config{}, WithSupportedModes(ModeCLI, ModeTUI), WithFrontend(ModeTUI, &recordingFrontend{}))

	_, err := f.app.RunFromArgs(t.Context(), []string{"--mode", "ink", "greet"})

	var modeErr *ModeError
	require.ErrorAs(t, err, &modeErr)
	assert.ErrorIs(t, err, ErrUnsupportedMode)
	assert.Equal(t, Mode("ink"), modeErr.Requested)
	assert.Equal(t, []Mode{ModeCLI, ModeTUI}, modeErr.Supported)
	assert.Equal(t, `unsupported mode "ink" (supported modes: cli, tui)`, err.Error())
	assert.Empty(t, f.greets)
}

func TestRunFromArgs_DefaultModeKeyword(t *testing.T) {
	frontend := &recordingFrontend{}
	f := newFixture(t, Config{DefaultMode: ModeTUI}, WithSupportedModes(ModeCLI, ModeTUI), WithFrontend(ModeTUI, frontend))

	result, err := f.app.RunFromArgs(t.Context(), []string{"math", "--mode=default"})
	require.NoError(t, err)
	assert.Nil(t, result)

	require.NotNil(t, frontend.session)
	assert.Equal(t, ModeTUI, frontend.session.Mode)
	assert.Equal(t, []string{"math"}, frontend.session.Node.Path())
	assert.Same(t, f.app, frontend.session.App)

	frontend.session = nil
	_, err = f.app.RunFromArgs(t.Context(), []string{"--mode", "cli", "greet"})
	require.NoError(t, err)
	assert.Nil(t, frontend.session)
	assert.Len(t, f.greets, 1)
}

func TestRunFromArgs_FrontendErrorRouted(t *testing.T) {
	failure := errors.New("terminal unavailable")
	var hooked error
	f := newFixture(t, Config{},
		WithSupportedModes(ModeCLI, ModeTUI),
		WithFrontend(ModeTUI, &recordingFrontend{err: failure}),
		WithErrorHandler(func(_ context.Context, err error) error {
			hooked = err
			return err
		}),
	)

	_, err := f.app.RunFromArgs(t.Context(), []string{"--mode", "tui"})
	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, hooked, failure)
}

func TestRunFromArgs_GlobalsConfigureLogger(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.app.RunFromArgs(t.Context(), []string{"greet", "--log-level", "DEBUG", "--name", "x", "--detailed-logs"})
	require.NoError(t, err)
	assert.Equal(t, log.Debug, f.app.Logger().MinLevel())
	assert.True(t, f.app.Logger().Detailed())
	assert.Equal(t, "x", f.greets[0].String("name"))

	_, err = f.app.RunFromArgs(t.Context(), []string{"--log-level=verbose", "greet"})
	assert.ErrorIs(t, err, cmd.ErrValidation)
}

func TestRunFromArgs_LoadsStoredSettings(t *testing.T) {
	store := &memoryStore{stored: &settings.Settings{LogLevel: "error", DetailedLogs: true}}
	f := newFixture(t, Config{}, WithSettingsStore(store))

	_, err := f.app.RunFromArgs(t.Context(), []string{"greet"})
	require.NoError(t, err)
	assert.Equal(t, log.Error, f.app.Logger().MinLevel())
	assert.True(t, f.app.Logger().Detailed())

	_, err = f.app.RunFromArgs(t.Context(), []string{"greet", "--log-level", "warn"})
	require.NoError(t, err)
	assert.Equal(t, log.Warn, f.app.Logger().MinLevel())
	assert.Same(t, store, f.app.Context().Store)
}

func TestInvoke_SettingsCommand(t *testing.T) {
	store := &memoryStore{}
	f := newFixture(t, Config{}, WithSupportedModes(ModeCLI, ModeTUI), WithSettingsStore(store))

	node, ok := cmd.Find(f.app.Tree(), "settings")
	require.True(t, ok)

	values, err := cmd.Parse(node.Command.Options(), []string{"--log-level", "Debug"})
	require.NoError(t, err)

	result, err := f.app.Invoke(t.Context(), node, values, ModeTUI)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, log.Debug, f.app.Logger().MinLevel())
	assert.Equal(t, &settings.Settings{LogLevel: "debug"}, store.stored)
}

func TestInvoke_ContainerFails(t *testing.T) {
	f := newFixture(t, Config{})
	math, _ := cmd.Find(f.app.Tree(), "math")

	_, err := f.app.Invoke(t.Context(), math, nil, ModeCLI)
	assert.ErrorIs(t, err, cmd.ErrInvalidCommand)
}

func TestRunFromArgs_CancellationSkipsErrorHook(t *testing.T) {
	var hooked bool
	blocking := cmd.Func("wait", "", nil, func(ctx context.Context, _ cmd.OptionValues, _ *cmd.ExecutionContext) (cmd.Result, error) {
		<-ctx.Done()
		return cmd.Result{}, ctx.Err()
	})
	f := newFixture(t, Config{Commands: []cmd.Command{blocking}}, WithErrorHandler(func(_ context.Context, err error) error {
		hooked = true
		return err
	}))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := f.app.RunFromArgs(ctx, []string{"wait"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, hooked)
}
