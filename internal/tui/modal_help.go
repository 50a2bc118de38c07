package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// HelpModal displays the key bindings.
type HelpModal struct {
	keys     KeyMap
	viewport viewport.Model
}

func NewHelpModal(keys KeyMap) *HelpModal {
	return &HelpModal{keys: keys, viewport: viewport.New(80, 20)}
}

func (h *HelpModal) ID() string { return "help" }

func (h *HelpModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if scrollViewport(&h.viewport, msg.String()) {
			return false, nil
		}
		switch msg.String() {
		case "?", "esc", "q":
			return true, nil
		}
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			h.viewport.ScrollUp(1)
		case tea.MouseButtonWheelDown:
			h.viewport.ScrollDown(1)
		}
	}
	return false, nil
}

func (h *HelpModal) View(width, height int) string {
	return renderModalFrame(&h.viewport, "Help", h.content(), nil, width, height)
}

func (h *HelpModal) content() string {
	var b strings.Builder
	b.WriteString("Yardline console\n\n")
	for _, sec := range h.keys.helpSections() {
		b.WriteString(sec.Title + ":\n")
		for _, kb := range sec.Bindings {
			hp := kb.Help()
			fmt.Fprintf(&b, "  %-14s - %s\n", hp.Key, hp.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString(`REFRESH:
  Lists re-fetch on their interval while shown, when the terminal regains
  focus after the interval has passed, and when you come back from a form
  that saved a change.
`)
	return b.String()
}
