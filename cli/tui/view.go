package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwantia/dualcli/cmd"
)

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.screen {
	case ScreenHelp:
		return m.renderHelp()
	default:
		return m.renderMain()
	}
}

// renderMain renders the command list next to the detail pane
func (m *Model) renderMain() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderContent())
	sections = append(sections, m.renderStatus())

	if m.output != "" {
		sections = append(sections, m.renderOutput())
	}

	sections = append(sections, m.renderHelpBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTitle renders the title bar with the current group path
func (m *Model) renderTitle() string {
	path := []string{m.app.Config().Name}
	for _, node := range m.stack {
		path = append(path, node.Name())
	}
	if m.screen == ScreenForm && m.node != nil {
		path = append(path, m.node.Name())
	}

	title := strings.Join(path, " › ")
	if version := m.app.Config().Version; version != "" {
		title += "  " + version
	}
	return m.theme.TitleStyle.Render(title)
}

func (m *Model) renderContent() string {
	leftWidth := m.width / 3
	rightWidth := m.width - leftWidth - 4

	list := m.theme.BorderStyle.
		Width(leftWidth).
		Height(m.getVisibleLines() + 2).
		Render(m.renderList())

	var detail string
	if m.screen == ScreenForm {
		detail = m.renderForm()
	} else {
		detail = m.renderDetail()
	}

	detailBox := m.theme.DetailBorderStyle.
		Width(rightWidth).
		Height(m.getVisibleLines() + 2).
		Render(detail)

	return lipgloss.JoinHorizontal(lipgloss.Top, list, detailBox)
}

func (m *Model) renderList() string {
	if len(m.entries) == 0 {
		return m.theme.NormalItemStyle.Render("(no commands)")
	}

	end := min(m.offset+m.getVisibleLines(), len(m.entries))

	var lines []string
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderEntry(m.entries[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderEntry(entry *Entry, selected bool) string {
	style := m.theme.NormalItemStyle
	switch {
	case selected:
		style = m.theme.SelectedItemStyle
	case entry.IsGroup:
		style = m.theme.GroupStyle
	}
	return style.Render(fmt.Sprintf("%s %s", entry.Icon(), entry.DisplayName()))
}

// renderDetail describes the selected command and its options
func (m *Model) renderDetail() string {
	entry := m.currentEntry()
	if entry == nil {
		return m.theme.DetailStyle.Render("No command selected")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", strings.Join(entry.Node.Path(), " "))
	if entry.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", entry.Description)
	}

	if entry.IsGroup {
		fmt.Fprintf(&b, "\n%d commands\n", len(entry.Node.Children))
		return m.theme.DetailStyle.Render(b.String())
	}

	if schema := entry.Node.Command.Options(); len(schema) > 0 {
		b.WriteString("\nOptions:\n")
		for _, def := range schema.Sorted() {
			fmt.Fprintf(&b, "  --%-16s %s\n", def.Name, describeOption(def))
		}
	}
	return m.theme.DetailStyle.Render(b.String())
}

// renderForm renders one input line per option, the focused option with its description
func (m *Model) renderForm() string {
	var lines []string

	if desc := m.node.Command.Description(); desc != "" {
		lines = append(lines, m.theme.DetailStyle.Render(desc), "")
	}

	if len(m.fields) == 0 {
		lines = append(lines, m.theme.DetailStyle.Render("(no options)"))
	}

	for i, f := range m.fields {
		label := f.def.Label
		if label == "" {
			label = f.def.Name
		}
		if f.def.Required {
			label += "*"
		}

		style := m.theme.LabelStyle
		if i == m.focus {
			style = m.theme.FocusedLabelStyle
		}
		lines = append(lines, style.Render(label)+f.input.View())

		if i == m.focus && f.def.Description != "" {
			lines = append(lines, m.theme.HelpStyle.Render("  "+f.def.Description))
		}
	}

	if m.running {
		lines = append(lines, "", m.spinner.View()+" running")
	}
	return strings.Join(lines, "\n")
}

// renderStatus renders the status bar
func (m *Model) renderStatus() string {
	left := "0 commands"
	if len(m.entries) > 0 {
		left = fmt.Sprintf("%d/%d commands", m.cursor+1, len(m.entries))
	}

	right := ""
	if m.errorMsg != "" {
		right = m.theme.ErrorStyle.Render(m.errorMsg)
	} else if m.statusMsg != "" {
		right = m.statusMsg
	}

	spacing := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-4, 0)

	statusLine := left + strings.Repeat(" ", spacing) + right
	return m.theme.StatusBarStyle.Width(m.width).Render(statusLine)
}

// renderOutput renders the result of the last run
func (m *Model) renderOutput() string {
	lines := strings.Split(m.output, "\n")
	maxLines := max(m.height/3, 5)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines = append(lines, "...")
	}

	return m.theme.DetailBorderStyle.
		Width(m.width - 4).
		Render(m.theme.SuccessStyle.Render(strings.Join(lines, "\n")))
}

func (m *Model) renderHelpBar() string {
	if m.screen == ScreenForm {
		return m.theme.HelpStyle.Render(m.help.ShortHelpView(m.keys.FormHelp()))
	}
	return m.theme.HelpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// renderHelp renders the full help screen
func (m *Model) renderHelp() string {
	sections := []string{
		m.theme.TitleStyle.Render(m.app.Config().Name + " - Help"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		m.theme.HelpStyle.Render("Press ? or q to return"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func describeOption(def cmd.OptionDef) string {
	parts := []string{string(def.Kind())}
	if def.Required {
		parts = append(parts, "required")
	}
	if def.Default != nil {
		parts = append(parts, "default: "+formatValue(def.Default))
	}
	if len(def.Enum) > 0 {
		parts = append(parts, "one of: "+strings.Join(def.Enum, ", "))
	}
	desc := "(" + strings.Join(parts, ", ") + ")"
	if def.Description != "" {
		desc = def.Description + " " + desc
	}
	return desc
}
