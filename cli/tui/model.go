package tui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwantia/dualcli"
	"github.com/mwantia/dualcli/cmd"
	"github.com/mwantia/dualcli/cmd/builtin"
	"github.com/mwantia/dualcli/runner"
)

// Screen represents the current interaction screen
type Screen int

const (
	ScreenList Screen = iota
	ScreenForm
	ScreenHelp
)

// field is one option input of the command form
type field struct {
	def   cmd.OptionDef
	input textinput.Model
}

// Model represents the state of the TUI application
type Model struct {
	// Core components
	ctx     context.Context
	app     *dualcli.Application
	mode    dualcli.Mode
	theme   *Theme
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	// Navigation state
	stack   []*cmd.Node
	entries []*Entry
	cursor  int
	offset  int

	// View state
	width  int
	height int
	screen Screen
	back   Screen

	// Form state
	node   *cmd.Node
	fields []*field
	focus  int
	values cmd.OptionValues

	// Execution state
	coordinator *runner.CommandCoordinator
	running     bool
	runGen      int // Generation counter to drop outcomes of superseded runs

	// Status
	statusMsg string
	errorMsg  string
	output    string
}

type runFinishedMsg struct {
	generation int
	outcome    runner.Outcome[cmd.Result]
}

// NewModel creates a model browsing the commands of session.App. When the session
// addresses a command, the model starts at that command.
func NewModel(ctx context.Context, session *dualcli.Session) *Model {
	m := &Model{
		ctx:     ctx,
		app:     session.App,
		mode:    session.Mode,
		theme:   DefaultTheme(),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}

	node := session.Node
	if node == nil {
		m.loadEntries()
		return m
	}

	for parent := node.Parent; parent != nil; parent = parent.Parent {
		m.stack = append([]*cmd.Node{parent}, m.stack...)
	}
	if node.IsContainer() && !node.IsExecutable() {
		m.stack = append(m.stack, node)
		m.loadEntries()
		return m
	}

	m.loadEntries()
	m.selectNode(node)
	m.openForm(node, session.Args)
	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Close cancels the run in flight
func (m *Model) Close() {
	if m.coordinator != nil {
		m.coordinator.Cancel()
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var tick tea.Cmd
		m.spinner, tick = m.spinner.Update(msg)
		return m, tick

	case runFinishedMsg:
		if msg.generation != m.runGen {
			DebugLog("Ignoring stale outcome (gen %d, current %d)", msg.generation, m.runGen)
			return m, nil
		}
		m.finishRun(msg.outcome)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	if m.screen == ScreenForm && len(m.fields) > 0 {
		var blink tea.Cmd
		m.fields[m.focus].input, blink = m.fields[m.focus].input.Update(msg)
		return m, blink
	}
	return m, nil
}

// handleKeyPress processes keyboard input based on current screen
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenForm:
		return m.handleFormScreen(msg)
	case ScreenHelp:
		return m.handleHelpScreen(msg)
	default:
		return m.handleListScreen(msg)
	}
}

// handleListScreen processes keys while browsing commands
func (m *Model) handleListScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.back = m.screen
		m.screen = ScreenHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Enter):
		return m, m.activate(m.currentEntry())

	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Cancel):
		m.goBack()
	}
	return m, nil
}

// handleFormScreen processes keys while editing options
func (m *Model) handleFormScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.running {
			m.coordinator.Cancel()
			m.statusMsg = "Cancelling..."
			return m, nil
		}
		m.closeForm()
		return m, nil

	case key.Matches(msg, m.keys.Run):
		return m, m.submit()

	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return m, nil
	}

	if len(m.fields) == 0 {
		return m, nil
	}

	f := m.fields[m.focus]
	before := f.input.Value()

	var blink tea.Cmd
	f.input, blink = f.input.Update(msg)
	if f.input.Value() != before {
		m.onFieldChange(m.focus)
	}
	return m, blink
}

// handleHelpScreen processes keys on the help screen
func (m *Model) handleHelpScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Cancel):
		m.screen = m.back
	}
	return m, nil
}

// level returns the visible nodes of the current container
func (m *Model) level() []*cmd.Node {
	nodes := m.app.Tree()
	if len(m.stack) > 0 {
		nodes = m.stack[len(m.stack)-1].Children
	}

	visible := make([]*cmd.Node, 0, len(nodes))
	for _, n := range nodes {
		if builtin.Visible(n.Command, m.mode) {
			visible = append(visible, n)
		}
	}
	return visible
}

func (m *Model) loadEntries() {
	nodes := m.level()
	m.entries = make([]*Entry, 0, len(nodes))
	for _, n := range nodes {
		m.entries = append(m.entries, newEntry(n))
	}

	if m.cursor >= len(m.entries) {
		m.cursor = max(len(m.entries)-1, 0)
	}
	m.offset = 0
}

func (m *Model) selectNode(node *cmd.Node) {
	for i, entry := range m.entries {
		if entry.Node == node {
			m.cursor = i
			return
		}
	}
}

// activate opens a group or the form of an executable command. Commands without
// options run immediately.
func (m *Model) activate(entry *Entry) tea.Cmd {
	if entry == nil {
		return nil
	}
	m.errorMsg = ""

	if entry.IsGroup {
		m.stack = append(m.stack, entry.Node)
		m.cursor = 0
		m.loadEntries()
		return nil
	}

	m.openForm(entry.Node, nil)
	if len(m.fields) == 0 {
		return m.submit()
	}
	return nil
}

// goBack returns to the parent group, keeping the cursor on the group just left
func (m *Model) goBack() {
	if len(m.stack) == 0 {
		return
	}
	previous := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.loadEntries()
	m.selectNode(previous)
}

func (m *Model) openForm(node *cmd.Node, args []string) {
	schema := node.Command.Options()

	m.values = schema.Defaults()
	if len(args) > 0 {
		if parsed, err := cmd.NewParser(schema, false).ParsePartial(args); err == nil {
			m.values = parsed
		} else {
			m.errorMsg = err.Error()
		}
	}

	m.fields = make([]*field, 0, len(schema))
	for _, def := range schema.Sorted() {
		input := textinput.New()
		input.Placeholder = placeholder(def)
		input.CharLimit = 256
		input.SetValue(formatValue(m.values[def.Name]))
		input.CursorEnd()
		m.fields = append(m.fields, &field{def: def, input: input})
	}

	m.node = node
	m.focus = 0
	if len(m.fields) > 0 {
		m.fields[0].input.Focus()
	}
	m.screen = ScreenForm
	m.output = ""

	if m.coordinator != nil {
		m.coordinator.Cancel()
	}
	m.coordinator = runner.ForCommand(m.invoker(node), runner.WithLogger(m.app.Logger().Named("runner")))
	m.running = false
}

func (m *Model) closeForm() {
	m.Close()
	m.node = nil
	m.fields = nil
	m.values = nil
	m.running = false
	m.runGen++
	m.screen = ScreenList
}

// invoker runs node through the application and captures what it writes
func (m *Model) invoker(node *cmd.Node) runner.Invoke {
	app, mode := m.app, m.mode
	return func(ctx context.Context, values cmd.OptionValues) (cmd.Result, error) {
		var out bytes.Buffer
		result, err := app.InvokeTo(ctx, &out, node, values, mode)
		if err == nil && result.Message == "" && out.Len() > 0 {
			result.Message = strings.TrimRight(out.String(), "\n")
		}
		return result, err
	}
}

func (m *Model) moveFocus(delta int) {
	if len(m.fields) == 0 {
		return
	}
	m.fields[m.focus].input.Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	m.fields[m.focus].input.Focus()
}

// onFieldChange applies the edited value and shows any follow-up updates the
// command proposes in the other fields
func (m *Model) onFieldChange(index int) {
	f := m.fields[index]
	raw := f.input.Value()

	if raw == "" {
		m.values = m.values.Clone()
		delete(m.values, f.def.Name)
		return
	}

	m.values = cmd.ApplyConfigChange(m.node.Command, m.values, f.def.Name, typedValue(f.def, raw))
	for i, other := range m.fields {
		if i == index {
			continue
		}
		if v, ok := m.values[other.def.Name]; ok {
			if formatted := formatValue(v); formatted != other.input.Value() {
				other.input.SetValue(formatted)
				other.input.CursorEnd()
			}
		}
	}
}

// submit validates the form and starts the command in the background
func (m *Model) submit() tea.Cmd {
	if m.node == nil {
		return nil
	}

	var tokens []string
	for _, f := range m.fields {
		if value := f.input.Value(); value != "" {
			tokens = append(tokens, "--"+f.def.Name+"="+value)
		}
	}

	values, err := cmd.Parse(m.node.Command.Options(), tokens)
	if err != nil {
		m.errorMsg = err.Error()
		return nil
	}

	m.values = values
	m.runGen++
	m.running = true
	m.errorMsg = ""
	m.output = ""
	m.statusMsg = "Running " + strings.Join(m.node.Path(), " ") + "..."

	ctx, coordinator, generation := m.ctx, m.coordinator, m.runGen
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return runFinishedMsg{
			generation: generation,
			outcome:    coordinator.Execute(ctx, values),
		}
	})
}

func (m *Model) finishRun(outcome runner.Outcome[cmd.Result]) {
	m.running = false
	DebugLog("Run %s finished: %s", outcome.RunID, outcome.Status)

	switch outcome.Status {
	case runner.StatusSucceeded:
		m.statusMsg = "Done"
		m.output = formatResult(outcome.Value)
	case runner.StatusEmpty:
		m.statusMsg = "Finished without result"
	case runner.StatusCancelled:
		m.statusMsg = "Cancelled"
	case runner.StatusFailed:
		m.statusMsg = ""
		m.errorMsg = outcome.Err.Error()
	}

	if m.node != nil && len(m.fields) == 0 {
		m.screen = ScreenList
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.entries) == 0 {
		return
	}

	m.cursor = min(max(m.cursor+delta, 0), len(m.entries)-1)

	visibleLines := m.getVisibleLines()
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+visibleLines {
		m.offset = m.cursor - visibleLines + 1
	}
}

// getVisibleLines returns how many list entries fit on screen
func (m *Model) getVisibleLines() int {
	// title, status, help bar and borders
	return max(m.height-8, 1)
}

func (m *Model) currentEntry() *Entry {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return nil
	}
	return m.entries[m.cursor]
}

func placeholder(def cmd.OptionDef) string {
	switch {
	case len(def.Enum) > 0:
		return strings.Join(def.Enum, "|")
	case def.Kind() == cmd.TypeBoolean:
		return "true|false"
	default:
		return string(def.Kind())
	}
}

func typedValue(def cmd.OptionDef, raw string) any {
	switch def.Kind() {
	case cmd.TypeBoolean:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case cmd.TypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	return raw
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func formatResult(result cmd.Result) string {
	if result.Message != "" {
		return result.Message
	}
	if result.Data != nil {
		return fmt.Sprint(result.Data)
	}
	return ""
}
