package ui

import "github.com/charmbracelet/lipgloss"

const lineWidth = 40

// Styles holds the lipgloss styles used by the CLI.
var Styles = struct {
	Bold      lipgloss.Style
	Model     lipgloss.Style
	Separator lipgloss.Style
	ResultBox lipgloss.Style
	ErrorBox  lipgloss.Style
}{
	Bold: lipgloss.NewStyle().Bold(true),

	Model: lipgloss.NewStyle().Foreground(lipgloss.Color("86")),

	Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

	ResultBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("42")).
		Padding(0, 1),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1),
}
