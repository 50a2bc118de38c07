package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorBlue   = lipgloss.Color("39")
	ColorGreen  = lipgloss.Color("42")
	ColorYellow = lipgloss.Color("220")
	ColorOrange = lipgloss.Color("208")
	ColorRed    = lipgloss.Color("196")
	ColorGray   = lipgloss.Color("244")
	ColorWhite  = lipgloss.Color("255")
	ColorNavy   = lipgloss.Color("17")
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(ColorGray)
	errorStyle = lipgloss.NewStyle().Foreground(ColorRed)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorGray)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorWhite).Background(ColorNavy).Bold(true)

	headerCellStyle = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)
	selectedRow     = lipgloss.NewStyle().Foreground(ColorWhite).Background(ColorNavy)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
	activeSectionStyle = sectionStyle.BorderForeground(ColorBlue)

	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBlue).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().Foreground(ColorGray)
)

// statusColor maps an animal or carcass state to its display color.
func statusColor(status string) lipgloss.Color {
	switch status {
	case "received":
		return ColorWhite
	case "lairage":
		return ColorYellow
	case "slaughtered", "passed", "active":
		return ColorGreen
	case "rejected", "condemned":
		return ColorRed
	case "inactive":
		return ColorGray
	default:
		return ColorWhite
	}
}
