package tui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yardline/yardline/internal/model"
)

const actionToggleActive = "Toggle active"

func supplierState(s model.Supplier) string {
	if s.Active {
		return "active"
	}
	return "inactive"
}

func newSuppliersPage(d deps) *ListView[model.Supplier, int64] {
	cfg := listConfig[model.Supplier, int64](d, PageSuppliers, "Suppliers", "suppliers")
	cfg.Key = func(s model.Supplier) int64 { return s.ID }
	cfg.Label = func(s model.Supplier) string { return s.Name }
	cfg.Fetch = d.backend.ListSuppliers
	cfg.Statuses = []string{"active", "inactive"}
	cfg.Columns = []Column[model.Supplier]{
		{Title: "ID", Width: 5, Value: func(s model.Supplier) string { return strconv.FormatInt(s.ID, 10) }},
		{Title: "Name", Width: 22, Value: func(s model.Supplier) string { return s.Name }},
		{Title: "Region", Width: 18, Value: func(s model.Supplier) string { return s.Region }},
		{Title: "Phone", Width: 14, Value: func(s model.Supplier) string { return s.Phone }},
		{Title: "State", Width: 8, Value: supplierState},
		{Title: "Created", Width: 16, Value: func(s model.Supplier) string { return formatTime(s.CreatedAt) }},
	}
	cfg.RowStyle = func(s model.Supplier) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(statusColor(supplierState(s)))
	}
	cfg.Actions = func(model.Supplier) []string {
		return []string{actionEdit, actionToggleActive, actionDelete}
	}
	cfg.OnAdd = func(*ListView[model.Supplier, int64]) (tea.Cmd, *PageNav) {
		return nil, &PageNav{PageID: PageSupplierForm, Params: formParams{ReturnTo: PageSuppliers}}
	}
	cfg.OnAction = func(v *ListView[model.Supplier, int64], action string, s model.Supplier) (tea.Cmd, *PageNav) {
		b := d.backend
		switch action {
		case actionEdit:
			return nil, &PageNav{PageID: PageSupplierForm, Params: formParams{ID: s.ID, ReturnTo: PageSuppliers}}
		case actionToggleActive:
			text := s.Name + " deactivated"
			if !s.Active {
				text = s.Name + " activated"
			}
			return v.Mutate(text, func(ctx context.Context) error {
				_, err := b.SetSupplierActive(ctx, s.ID, !s.Active)
				return err
			}), nil
		case actionDelete:
			return pushModal(newConfirmModal(
				"Delete supplier "+s.Name+"?",
				v.Mutate("Deleted "+s.Name, func(ctx context.Context) error {
					return b.DeleteSupplier(ctx, s.ID)
				}),
			)), nil
		}
		return nil, nil
	}
	return NewListView(cfg)
}
