package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	TitleStyle        lipgloss.Style
	BorderStyle       lipgloss.Style
	DetailBorderStyle lipgloss.Style
	NormalItemStyle   lipgloss.Style
	SelectedItemStyle lipgloss.Style
	GroupStyle        lipgloss.Style
	DetailStyle       lipgloss.Style
	LabelStyle        lipgloss.Style
	FocusedLabelStyle lipgloss.Style
	ErrorStyle        lipgloss.Style
	SuccessStyle      lipgloss.Style
	StatusBarStyle    lipgloss.Style
	HelpStyle         lipgloss.Style
}

func DefaultTheme() *Theme {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")

	return &Theme{
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(accent).
			Padding(0, 1),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent),
		DetailBorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		NormalItemStyle:   lipgloss.NewStyle(),
		SelectedItemStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(accent),
		GroupStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		DetailStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		LabelStyle:        lipgloss.NewStyle().Foreground(muted).Width(18),
		FocusedLabelStyle: lipgloss.NewStyle().Foreground(accent).Bold(true).Width(18),
		ErrorStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		SuccessStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		StatusBarStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1),
		HelpStyle:         lipgloss.NewStyle().Foreground(muted),
	}
}
