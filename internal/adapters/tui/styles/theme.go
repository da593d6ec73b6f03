package styles

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	Accent   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	Mass     = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	Dim      = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	Caution  = lipgloss.Color("#D97706")
	Failure  = lipgloss.Color("#DC2626")
	Inverted = lipgloss.Color("#F9FAFB")
)

var (
	App = lipgloss.NewStyle().Padding(1, 2)

	Title    = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	Subtitle = lipgloss.NewStyle().Italic(true).Foreground(Dim)
	Section  = lipgloss.NewStyle().Bold(true).Foreground(Accent).Underline(true)

	Total     = lipgloss.NewStyle().Bold(true).Foreground(Mass)
	StatLabel = lipgloss.NewStyle().Foreground(Dim)
	StatValue = lipgloss.NewStyle().Bold(true)
	Skipped   = lipgloss.NewStyle().Foreground(Caution)
	MutedText = lipgloss.NewStyle().Foreground(Dim)

	HelpKey       = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	HelpDesc      = lipgloss.NewStyle().Foreground(Dim)
	HelpSeparator = lipgloss.NewStyle().Foreground(Dim).SetString(" · ")

	Success  = lipgloss.NewStyle().Bold(true).Foreground(Mass)
	ErrorMsg = lipgloss.NewStyle().Bold(true).Foreground(Failure)
)

// Table returns the styles shared by the summary and density tables
func Table() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Dim).
		BorderBottom(true).
		Bold(true).
		Foreground(Accent)
	s.Selected = s.Selected.
		Bold(false).
		Foreground(Inverted).
		Background(Accent)
	return s
}
