package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yardline/yardline/internal/model"
)

const (
	actionDetails         = "Details"
	actionToggleCondemned = "Toggle condemned"
)

func carcassState(c model.Carcass) string {
	if c.Condemned {
		return "condemned"
	}
	return "passed"
}

func shortID(publicID string) string {
	if len(publicID) > 8 {
		return publicID[:8]
	}
	return publicID
}

func newCarcassesPage(d deps) *ListView[model.Carcass, string] {
	cfg := listConfig[model.Carcass, string](d, PageCarcasses, "Carcasses", "carcasses")
	cfg.Key = func(c model.Carcass) string { return c.PublicID }
	cfg.Label = func(c model.Carcass) string { return shortID(c.PublicID) + " " + c.TagNumber }
	cfg.Fetch = d.backend.ListCarcasses
	cfg.Statuses = []string{"passed", "condemned"}
	cfg.Columns = []Column[model.Carcass]{
		{Title: "Carcass", Width: 8, Value: func(c model.Carcass) string { return shortID(c.PublicID) }},
		{Title: "Tag", Width: 12, Value: func(c model.Carcass) string { return c.TagNumber }},
		{Title: "Species", Width: 8, Value: func(c model.Carcass) string { return c.Species }},
		{Title: "Hot kg", Width: 8, Value: func(c model.Carcass) string { return c.HotWeightKg.StringFixed(1) }},
		{Title: "Grade", Width: 5, Value: func(c model.Carcass) string { return c.Grade }},
		{Title: "State", Width: 10, Value: carcassState},
		{Title: "Slaughtered", Width: 16, Value: func(c model.Carcass) string { return formatTime(c.SlaughteredAt) }},
		{Title: "Inspection note", Width: 30, Value: func(c model.Carcass) string { return c.InspectionNote }},
	}
	cfg.RowStyle = func(c model.Carcass) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(statusColor(carcassState(c)))
	}
	cfg.Actions = func(model.Carcass) []string {
		return []string{actionDetails, actionToggleCondemned, actionDelete}
	}
	cfg.OnAction = func(v *ListView[model.Carcass, string], action string, c model.Carcass) (tea.Cmd, *PageNav) {
		b := d.backend
		switch action {
		case actionDetails:
			m := newCarcassModal(b, c, d.fetchTimeout)
			return tea.Sequence(pushModal(m), m.Init()), nil
		case actionToggleCondemned:
			text := shortID(c.PublicID) + " condemned"
			if c.Condemned {
				text = shortID(c.PublicID) + " passed"
			}
			return v.Mutate(text, func(ctx context.Context) error {
				_, err := b.SetCarcassCondemned(ctx, c.PublicID, !c.Condemned)
				return err
			}), nil
		case actionDelete:
			return pushModal(newConfirmModal(
				"Delete carcass "+shortID(c.PublicID)+"? The animal keeps its slaughtered status.",
				v.Mutate("Deleted carcass "+shortID(c.PublicID), func(ctx context.Context) error {
					return b.DeleteCarcass(ctx, c.PublicID)
				}),
			)), nil
		}
		return nil, nil
	}
	return NewListView(cfg)
}
