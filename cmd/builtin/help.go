package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mwantia/dualcli/appctx"
	"github.com/mwantia/dualcli/cmd"
)

var ErrUnknownCommand = errors.New("builtin: unknown command")

// HelpOptions carries the application details help output refers to.
type HelpOptions struct {
	AppName string
	Version string

	// Mode filters out commands hidden in that mode; empty shows everything
	Mode appctx.Mode

	// Globals lists the options accepted before or after any command
	Globals cmd.OptionSchema
}

func (o HelpOptions) withMode(mode appctx.Mode) HelpOptions {
	if mode != "" {
		o.Mode = mode
	}
	return o
}

// Visible reports whether c can be invoked in mode.
func Visible(c cmd.Command, mode appctx.Mode) bool {
	switch mode {
	case "":
		return true
	case appctx.ModeCLI:
		return c.SupportsCLI()
	default:
		return c.SupportsTUI()
	}
}

// RenderHelp renders the help text of a single command.
func RenderHelp(node *cmd.Node, opts HelpOptions) string {
	var b strings.Builder
	c := node.Command

	usage := append([]string{opts.AppName}, node.Path()...)
	if node.IsContainer() {
		usage = append(usage, "<command>")
	}
	if len(c.Options()) > 0 {
		usage = append(usage, "[options]")
	}
	if cmd.AcceptsArgs(c) {
		usage = append(usage, "[args...]")
	}
	fmt.Fprintf(&b, "Usage: %s\n", strings.Join(usage, " "))

	if desc := c.Description(); desc != "" {
		fmt.Fprintf(&b, "\n%s\n", desc)
	}

	if rows := commandRows(node.Children, opts.Mode); len(rows) > 0 {
		writeSection(&b, "Commands", rows)
	}
	if len(c.Options()) > 0 {
		writeSection(&b, "Options", optionRows(c.Options()))
	}
	if len(opts.Globals) > 0 {
		writeSection(&b, "Global options", optionRows(opts.Globals))
	}

	if examples := c.Examples(); len(examples) > 0 {
		rows := make([]table.Row, 0, len(examples))
		for _, ex := range examples {
			rows = append(rows, table.Row{ex.Command, ex.Description})
		}
		writeSection(&b, "Examples", rows)
	}

	return b.String()
}

// RenderRootHelp renders the overview listing every top-level command.
func RenderRootHelp(roots []*cmd.Node, opts HelpOptions) string {
	var b strings.Builder

	if opts.Version != "" {
		fmt.Fprintf(&b, "%s %s\n\n", opts.AppName, opts.Version)
	}
	fmt.Fprintf(&b, "Usage: %s [global options] <command> [options]\n", opts.AppName)

	if rows := commandRows(roots, opts.Mode); len(rows) > 0 {
		writeSection(&b, "Commands", rows)
	}
	if len(opts.Globals) > 0 {
		writeSection(&b, "Global options", optionRows(opts.Globals))
	}

	fmt.Fprintf(&b, "\nRun '%s help <command>' for more information on a command.\n", opts.AppName)
	return b.String()
}

func commandRows(nodes []*cmd.Node, mode appctx.Mode) []table.Row {
	rows := make([]table.Row, 0, len(nodes))
	for _, n := range nodes {
		if !Visible(n.Command, mode) {
			continue
		}
		rows = append(rows, table.Row{n.Name(), n.Command.Description()})
	}
	return rows
}

func optionRows(schema cmd.OptionSchema) []table.Row {
	rows := make([]table.Row, 0, len(schema))
	for _, def := range schema.Sorted() {
		flag := "--" + def.Name
		if def.Alias != "" {
			flag += ", -" + def.Alias
		}

		kind := string(def.Kind())
		if len(def.Enum) > 0 {
			kind = strings.Join(def.Enum, "|")
		}

		rows = append(rows, table.Row{flag, kind, def.Description, optionDetails(def)})
	}
	return rows
}

func optionDetails(def cmd.OptionDef) string {
	var details []string
	if def.Required {
		details = append(details, "required")
	}
	if def.Default != nil {
		details = append(details, fmt.Sprintf("default: %v", def.Default))
	}
	if def.Min != nil || def.Max != nil {
		lower, upper := "-inf", "+inf"
		if def.Min != nil {
			lower = strconv.FormatFloat(*def.Min, 'g', -1, 64)
		}
		if def.Max != nil {
			upper = strconv.FormatFloat(*def.Max, 'g', -1, 64)
		}
		details = append(details, fmt.Sprintf("range: [%s, %s]", lower, upper))
	}
	if len(details) == 0 {
		return ""
	}
	return "(" + strings.Join(details, ", ") + ")"
}

func writeSection(b *strings.Builder, title string, rows []table.Row) {
	tw := table.NewWriter()

	style := table.StyleDefault
	style.Options = table.OptionsNoBordersAndSeparators
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "  "
	tw.SetStyle(style)
	tw.AppendRows(rows)

	fmt.Fprintf(b, "\n%s:\n", title)
	for line := range strings.SplitSeq(tw.Render(), "\n") {
		fmt.Fprintf(b, "  %s\n", strings.TrimRight(line, " "))
	}
}

// HelpCommand is the top-level help command. It renders root help, or the help of
// the command addressed by its positional arguments.
type HelpCommand struct {
	cmd.Base

	opts  HelpOptions
	roots func() []*cmd.Node
}

// NewHelp creates the top-level help command. roots is evaluated on every execution
// so the command can be created before the tree it describes.
func NewHelp(opts HelpOptions, roots func() []*cmd.Node) *HelpCommand {
	return &HelpCommand{
		Base: cmd.Base{
			Use:   cmd.HelpName,
			Short: "Show help for a command",
			Samples: []cmd.Example{
				{Command: opts.AppName + " help", Description: "List all commands"},
			},
		},
		opts:  opts,
		roots: roots,
	}
}

func (h *HelpCommand) AcceptsArgs() bool {
	return true
}

func (h *HelpCommand) Execute(ctx context.Context, config any, ec *cmd.ExecutionContext) (cmd.Result, error) {
	opts := h.opts.withMode(ec.Mode)
	roots := h.roots()

	var text string
	if len(ec.Args) == 0 {
		text = RenderRootHelp(roots, opts)
	} else {
		node, rest := cmd.Resolve(roots, ec.Args, func(c cmd.Command) bool {
			return Visible(c, opts.Mode)
		})
		if node == nil || len(rest) > 0 {
			return cmd.Result{}, fmt.Errorf("%w: %s", ErrUnknownCommand, strings.Join(ec.Args, " "))
		}
		text = RenderHelp(node, opts)
	}

	return writeHelp(ec.Writer(), text)
}

// SubHelpCommand is injected below every container and renders the container's help.
type SubHelpCommand struct {
	cmd.Base

	parent *cmd.Node
	opts   HelpOptions
}

func NewSubHelp(parent *cmd.Node, opts HelpOptions) *SubHelpCommand {
	return &SubHelpCommand{
		Base: cmd.Base{
			Use:   cmd.HelpName,
			Short: "Show help for " + strings.Join(parent.Path(), " "),
		},
		parent: parent,
		opts:   opts,
	}
}

func (h *SubHelpCommand) Execute(ctx context.Context, config any, ec *cmd.ExecutionContext) (cmd.Result, error) {
	return writeHelp(ec.Writer(), RenderHelp(h.parent, h.opts.withMode(ec.Mode)))
}

func writeHelp(w io.Writer, text string) (cmd.Result, error) {
	if _, err := io.WriteString(w, text); err != nil {
		return cmd.Result{}, fmt.Errorf("write help: %w", err)
	}
	return cmd.Result{Success: true, Data: text}, nil
}
