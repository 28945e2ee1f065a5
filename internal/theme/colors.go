// Package theme centralizes the terminal color palette for CLI output.
package theme

import "github.com/charmbracelet/lipgloss"

// Color is an alias for lipgloss.Color for convenience
type Color = lipgloss.Color

// Brand colors
const (
	ColorPrimary   Color = "99" // Purple - app name, titles
	ColorSecondary Color = "86" // Cyan - subtitles
)

// Session status colors
const (
	ColorCancelled Color = "8"  // Gray
	ColorCompleted Color = "86" // Cyan
	ColorIdle      Color = "3"  // Yellow
	ColorRunning   Color = "2"  // Green
)

// UI semantic colors
const (
	ColorError  Color = "196" // Bright red
	ColorMuted  Color = "241" // Gray - secondary text
	ColorNormal Color = "250" // Default text
	ColorSubtle Color = "245" // Light gray - labels
)
