package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// renderModalFrame renders a centered, bordered modal around a viewport.
func renderModalFrame(vp *viewport.Model, title, content string, status []string, width, height int) string {
	modalWidth := max(30, width-8)
	modalHeight := max(8, height-6)

	contentWidth := modalWidth - 4
	contentHeight := modalHeight - 4

	vp.Width = contentWidth
	vp.Height = contentHeight
	vp.SetContent(lipgloss.NewStyle().Width(contentWidth).Render(content))

	header := lipgloss.NewStyle().
		Width(contentWidth).
		Foreground(ColorBlue).
		Bold(true).
		Render(title)

	modal := lipgloss.JoinVertical(lipgloss.Left, header, vp.View(), renderModalStatusBar(status))

	finalModal := lipgloss.NewStyle().
		Width(modalWidth).
		Height(modalHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Render(modal)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, finalModal)
}

// renderModalStatusBar renders the status bar for modals
func renderModalStatusBar(items []string) string {
	if len(items) == 0 {
		items = []string{"↑/↓: Scroll", "PgUp/PgDn: Page", "ESC: Close"}
	}
	return statusBarStyle.Render(strings.Join(items, " | "))
}

// scrollViewport applies the shared modal scroll keys. It reports whether
// the key was one of them.
func scrollViewport(vp *viewport.Model, key string) bool {
	switch key {
	case "up", "k":
		vp.ScrollUp(1)
	case "down", "j":
		vp.ScrollDown(1)
	case "pgup":
		vp.HalfPageUp()
	case "pgdown":
		vp.HalfPageDown()
	default:
		return false
	}
	return true
}
