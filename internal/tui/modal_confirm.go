package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModal asks a yes/no question and runs onYes when confirmed.
type ConfirmModal struct {
	prompt string
	onYes  tea.Cmd
}

func newConfirmModal(prompt string, onYes tea.Cmd) *ConfirmModal {
	return &ConfirmModal{prompt: prompt, onYes: onYes}
}

func (c *ConfirmModal) ID() string { return "confirm" }

func (c *ConfirmModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}
	switch km.String() {
	case "y", "Y":
		return true, c.onYes
	case "n", "N", "esc", "q":
		return true, nil
	}
	return false, nil
}

func (c *ConfirmModal) View(width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(c.prompt),
		"",
		helpStyle.Render("y: confirm | n/esc: cancel"),
	)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorOrange).
		Padding(1, 2).
		Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
