package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yardline/yardline/internal/model"
)

type carcassAnimalMsg struct {
	publicID string
	animal   model.Animal
	err      error
}

// CarcassModal shows one carcass with its source animal and yield.
type CarcassModal struct {
	backend  model.Backend
	carcass  model.Carcass
	animal   *model.Animal
	err      error
	timeout  time.Duration
	viewport viewport.Model
}

func newCarcassModal(b model.Backend, c model.Carcass, timeout time.Duration) *CarcassModal {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &CarcassModal{backend: b, carcass: c, timeout: timeout, viewport: viewport.New(80, 20)}
}

func (m *CarcassModal) ID() string { return "carcass:" + m.carcass.PublicID }

// Init loads the source animal.
func (m *CarcassModal) Init() tea.Cmd {
	b, c, timeout := m.backend, m.carcass, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a, err := b.GetAnimal(ctx, c.AnimalID)
		return carcassAnimalMsg{publicID: c.PublicID, animal: a, err: err}
	}
}

func (m *CarcassModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case carcassAnimalMsg:
		if msg.publicID != m.carcass.PublicID {
			return false, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return false, nil
		}
		a := msg.animal
		m.animal = &a
	case tea.KeyMsg:
		if scrollViewport(&m.viewport, msg.String()) {
			return false, nil
		}
		switch msg.String() {
		case "esc", "q", "enter":
			return true, nil
		}
	}
	return false, nil
}

func (m *CarcassModal) content() string {
	c := m.carcass
	var b strings.Builder
	row := func(label, value string) { fmt.Fprintf(&b, "%-16s %s\n", label+":", value) }

	row("Public ID", c.PublicID)
	row("Tag", c.TagNumber)
	row("Species", c.Species)
	row("Hot weight", c.HotWeightKg.StringFixed(1)+" kg")
	row("Grade", c.Grade)
	row("State", carcassState(c))
	row("Slaughtered", formatTime(c.SlaughteredAt))
	if c.InspectionNote != "" {
		row("Inspection note", c.InspectionNote)
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Animal unavailable: " + m.err.Error()))
	case m.animal == nil:
		b.WriteString(helpStyle.Render("Loading animal..."))
	default:
		a := m.animal
		row("Animal", fmt.Sprintf("#%d %s %s", a.ID, a.Breed, a.Sex))
		row("Live weight", a.LiveWeightKg.StringFixed(1)+" kg")
		row("Supplier", fmt.Sprintf("#%d", a.SupplierID))
		row("Arrived", formatTime(a.ArrivedAt))
		row("Yield", c.YieldPercent(a.LiveWeightKg).StringFixed(1)+" %")
	}
	return b.String()
}

func (m *CarcassModal) View(width, height int) string {
	return renderModalFrame(&m.viewport, "Carcass "+shortID(m.carcass.PublicID), m.content(), nil, width, height)
}
