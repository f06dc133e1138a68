package cmd

import "context"

// Base implements Command from plain fields. Embed it to get the default capability
// flags, or use it directly for containers.
type Base struct {
	Use      string
	Short    string
	Label    string
	Flags    OptionSchema
	Children []Command
	Samples  []Example

	// NoCLI and NoTUI hide the command in the respective mode
	NoCLI bool
	NoTUI bool
}

func (b Base) Name() string           { return b.Use }
func (b Base) Description() string    { return b.Short }
func (b Base) Options() OptionSchema  { return b.Flags }
func (b Base) SubCommands() []Command { return b.Children }
func (b Base) Examples() []Example    { return b.Samples }
func (b Base) SupportsCLI() bool      { return !b.NoCLI }
func (b Base) SupportsTUI() bool      { return !b.NoTUI }

// DisplayName returns Label, or Name when no label is set.
func (b Base) DisplayName() string {
	if b.Label != "" {
		return b.Label
	}
	return b.Use
}

// NewGroup creates a container command without an execute behavior.
func NewGroup(name, description string, children ...Command) Command {
	return Base{
		Use:      name,
		Short:    description,
		Children: children,
	}
}

// ExecuteFunc is the execute behavior of a command built with Func.
// The values passed are the parsed options.
type ExecuteFunc func(ctx context.Context, values OptionValues, ec *ExecutionContext) (Result, error)

// FuncCommand is an executable leaf backed by a function.
type FuncCommand struct {
	Base
	Run ExecuteFunc
}

// Func creates an executable command from fn.
func Func(name, description string, schema OptionSchema, fn ExecuteFunc) *FuncCommand {
	return &FuncCommand{
		Base: Base{
			Use:   name,
			Short: description,
			Flags: schema,
		},
		Run: fn,
	}
}

func (f *FuncCommand) Execute(ctx context.Context, config any, ec *ExecutionContext) (Result, error) {
	values, _ := config.(OptionValues)
	if values == nil && ec != nil {
		values = ec.Values
	}
	return f.Run(ctx, values, ec)
}
