package desk

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79FF"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	colorDesk   = lipgloss.AdaptiveColor{Light: "#EDEDF5", Dark: "#1E1E2E"}
	colorError  = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F87"}

	deskStyle = lipgloss.NewStyle().Background(colorDesk)

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	itemStyle     = lipgloss.NewStyle()
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)

	titleFocusedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(colorAccent)
	titleBlurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")).Background(colorMuted)
	frameStyle        = lipgloss.NewStyle().Foreground(colorMuted)
	frameFocusedStyle = lipgloss.NewStyle().Foreground(colorAccent)

	dockStyle       = lipgloss.NewStyle().Background(lipgloss.Color("#303046")).Foreground(lipgloss.Color("#DDDDDD"))
	dockActiveStyle = lipgloss.NewStyle().Bold(true).Background(colorAccent).Foreground(lipgloss.Color("#FFFFFF"))
	dockMinStyle    = lipgloss.NewStyle().Faint(true).Background(lipgloss.Color("#303046")).Foreground(lipgloss.Color("#AAAAAA"))

	difficultyStyles = map[string]lipgloss.Style{
		"easy":   lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950")),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("#D29922")),
		"hard":   lipgloss.NewStyle().Foreground(lipgloss.Color("#F85149")),
	}
)
