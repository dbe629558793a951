// Package view renders client state for the terminal. Views are pure: they
// take state values and return strings.
package view

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#8BC34A")
	muted       = lipgloss.Color("#6B7280")
	destructive = lipgloss.Color("#E53935")
	border      = lipgloss.Color("#2A3850")
)

type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Card      lipgloss.Style
	Label     lipgloss.Style
	GridCell  lipgloss.Style
	EmptyCell lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Header:    lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Cell:      lipgloss.NewStyle().Padding(0, 1),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		Success:   lipgloss.NewStyle().Foreground(accent),
		Error:     lipgloss.NewStyle().Foreground(destructive).Bold(true),
		Card:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Label:     lipgloss.NewStyle().Foreground(muted).Width(14),
		GridCell:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(accent).Width(cellWidth).Align(lipgloss.Center),
		EmptyCell: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(muted).Foreground(muted).Width(cellWidth).Align(lipgloss.Center),
	}
}
