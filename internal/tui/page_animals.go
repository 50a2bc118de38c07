package tui

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yardline/yardline/internal/model"
)

// Animal row actions.
const (
	actionEdit      = "Edit"
	actionSlaughter = "Slaughter"
	actionLairage   = "Move to lairage"
	actionReject    = "Reject"
	actionDelete    = "Delete"
)

func animalActions(a model.Animal) []string {
	if a.Status.Final() {
		return []string{actionEdit, actionDelete}
	}
	out := []string{actionEdit, actionSlaughter}
	if model.CanTransition(a.Status, model.StatusLairage) {
		out = append(out, actionLairage)
	}
	return append(out, actionReject, actionDelete)
}

func newAnimalsPage(d deps) *ListView[model.Animal, int64] {
	cfg := listConfig[model.Animal, int64](d, PageAnimals, "Animals", "animals")
	cfg.Key = func(a model.Animal) int64 { return a.ID }
	cfg.Label = func(a model.Animal) string { return a.TagNumber }
	cfg.Fetch = d.backend.ListAnimals
	cfg.Statuses = []string{
		string(model.StatusReceived), string(model.StatusLairage),
		string(model.StatusSlaughtered), string(model.StatusRejected),
	}
	cfg.Columns = []Column[model.Animal]{
		{Title: "ID", Width: 5, Value: func(a model.Animal) string { return strconv.FormatInt(a.ID, 10) }},
		{Title: "Tag", Width: 12, Value: func(a model.Animal) string { return a.TagNumber }},
		{Title: "Species", Width: 8, Value: func(a model.Animal) string { return a.Species }},
		{Title: "Breed", Width: 12, Value: func(a model.Animal) string { return a.Breed }},
		{Title: "Sex", Width: 8, Value: func(a model.Animal) string { return a.Sex }},
		{Title: "Live kg", Width: 8, Value: func(a model.Animal) string { return a.LiveWeightKg.StringFixed(1) }},
		{Title: "Supplier", Width: 8, Value: func(a model.Animal) string { return strconv.FormatInt(a.SupplierID, 10) }},
		{Title: "Status", Width: 11, Value: func(a model.Animal) string { return string(a.Status) }},
		{Title: "Arrived", Width: 16, Value: func(a model.Animal) string { return formatTime(a.ArrivedAt) }},
		{Title: "Updated", Width: 16, Value: func(a model.Animal) string { return formatTime(a.UpdatedAt) }},
	}
	cfg.RowStyle = func(a model.Animal) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(statusColor(string(a.Status)))
	}
	cfg.Actions = animalActions
	cfg.OnAdd = func(*ListView[model.Animal, int64]) (tea.Cmd, *PageNav) {
		return nil, &PageNav{PageID: PageAnimalForm, Params: formParams{ReturnTo: PageAnimals}}
	}
	cfg.OnAction = func(v *ListView[model.Animal, int64], action string, a model.Animal) (tea.Cmd, *PageNav) {
		b := d.backend
		switch action {
		case actionEdit:
			return nil, &PageNav{PageID: PageAnimalForm, Params: formParams{ID: a.ID, ReturnTo: PageAnimals}}
		case actionSlaughter:
			return nil, &PageNav{PageID: PageSlaughterForm, Params: slaughterParams{Animal: a, ReturnTo: PageAnimals}}
		case actionLairage, actionReject:
			status := model.StatusLairage
			if action == actionReject {
				status = model.StatusRejected
			}
			return v.Mutate(fmt.Sprintf("%s moved to %s", a.TagNumber, status), func(ctx context.Context) error {
				_, err := b.SetAnimalStatus(ctx, a.ID, status)
				return err
			}), nil
		case actionDelete:
			return pushModal(newConfirmModal(
				fmt.Sprintf("Delete animal %s?", a.TagNumber),
				v.Mutate("Deleted "+a.TagNumber, func(ctx context.Context) error {
					return b.DeleteAnimal(ctx, a.ID)
				}),
			)), nil
		}
		return nil, nil
	}
	return NewListView(cfg)
}
