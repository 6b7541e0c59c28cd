// Package tui provides the interactive terminal front end: a stepper that
// walks a remix session from bundle to patched PDF, the settings editor, and
// the standalone style picker.
package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#8A4B08", Dark: "#E8A33D"}
	ink    = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#ECECEC"}
	faint  = lipgloss.AdaptiveColor{Light: "#8C8C8C", Dark: "#6B6B6B"}
	good   = lipgloss.AdaptiveColor{Light: "#1E7F4F", Dark: "#4FD18B"}
	bad    = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#F2766B"}

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)

	// Step trail
	StepDoneStyle    = lipgloss.NewStyle().Foreground(good)
	StepActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true)
	StepPendingStyle = lipgloss.NewStyle().Foreground(faint)

	// Required-file checklist
	PresentStyle = lipgloss.NewStyle().Foreground(good)
	MissingStyle = lipgloss.NewStyle().Foreground(faint)

	SelectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	UnselectedStyle = lipgloss.NewStyle().Foreground(ink)

	DescriptionStyle = lipgloss.NewStyle().Foreground(faint)
	SuccessStyle     = lipgloss.NewStyle().Foreground(good)
	ErrorStyle       = lipgloss.NewStyle().Foreground(bad)
	HelpStyle        = lipgloss.NewStyle().Foreground(faint).MarginTop(1)

	// SummaryStyle frames the remix summary and the unsaved-changes prompt
	SummaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)

// GetTheme returns the huh theme for forms
func GetTheme() *huh.Theme {
	return huh.ThemeCharm()
}
