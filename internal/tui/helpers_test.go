package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/model/modeltest"
	"github.com/yardline/yardline/internal/viewctl"
)

const testInterval = time.Minute

var testStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testDeps(b model.Backend, clock viewctl.Clock) deps {
	return deps{
		backend:  b,
		keys:     DefaultKeyMap(),
		signals:  viewctl.NewSignals(),
		clock:    clock,
		interval: testInterval,
		pageSize: 10,
	}
}

// seedAnimals creates one supplier and n animals tagged T001..Tnnn.
func seedAnimals(t *testing.T, b *modeltest.Backend, n int) []model.Animal {
	t.Helper()
	ctx := context.Background()
	sp, err := b.CreateSupplier(ctx, model.Supplier{Name: "Hill Farm", Active: true})
	require.NoError(t, err)

	out := make([]model.Animal, 0, n)
	for i := 1; i <= n; i++ {
		a, err := b.CreateAnimal(ctx, model.Animal{
			TagNumber:    fmt.Sprintf("T%03d", i),
			Species:      "cattle",
			Sex:          "female",
			LiveWeightKg: decimal.NewFromInt(500),
			SupplierID:   sp.ID,
		})
		require.NoError(t, err)
		out = append(out, a)
	}
	return out
}

// deliver performs the fetch the view last issued and feeds the result back.
func deliver[T any, K comparable](t *testing.T, v *ListView[T, K]) tea.Cmd {
	t.Helper()
	items, err := v.cfg.Fetch(context.Background(), v.sched.Args())
	cmd, _ := v.Update(listLoadedMsg[T]{view: v.cfg.ID, seq: v.seq, items: items, err: err})
	return cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(update func(tea.Msg), s string) {
	for _, r := range s {
		update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func itoa(n int64) string { return fmt.Sprint(n) }

// findMsg runs cmd, descending into batches, and returns the first message
// of type M. Commands that block longer than a short grace period, such as
// refresh ticks, are abandoned.
func findMsg[M any](t *testing.T, cmd tea.Cmd) M {
	t.Helper()
	out := make(chan tea.Msg, 64)
	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			out <- msg
		}()
	}
	run(cmd)

	deadline := time.After(time.Second)
	for {
		select {
		case msg := <-out:
			if m, ok := msg.(M); ok {
				return m
			}
		case <-deadline:
			var zero M
			t.Fatalf("no %T produced", zero)
			return zero
		}
	}
}
