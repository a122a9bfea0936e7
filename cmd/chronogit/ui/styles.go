// Package ui implements the interactive time travel workflow as a
// bubbletea program: a short wizard that collects the date expression,
// repository, and credentials, then shows the plan for confirmation.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary = lipgloss.Color("#8BC34A") // Lime green
	ColorAccent  = lipgloss.Color("#2196F3") // Blue
	ColorError   = lipgloss.Color("#e53935") // Red
	ColorWarning = lipgloss.Color("#FFC107") // Yellow
	ColorMuted   = lipgloss.Color("#6c7a89")
)

// Styles holds the lipgloss styles for the workflow screens.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Prompt   lipgloss.Style
	Hint     lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Success  lipgloss.Style
	Box      lipgloss.Style
}

// DefaultStyles returns the workflow styling.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Subtitle: lipgloss.NewStyle().Foreground(ColorMuted),
		Prompt:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Hint:     lipgloss.NewStyle().Faint(true),
		Error:    lipgloss.NewStyle().Foreground(ColorError),
		Warning:  lipgloss.NewStyle().Foreground(ColorWarning),
		Success:  lipgloss.NewStyle().Foreground(ColorPrimary),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1),
	}
}
