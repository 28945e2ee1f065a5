package theme

import "github.com/charmbracelet/lipgloss"

// Shared CLI output styles
var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorNormal)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)
)
