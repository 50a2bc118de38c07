package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/model/modeltest"
	"github.com/yardline/yardline/internal/viewctl"
)

func TestDayTotals(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	rows := []model.DailyThroughput{
		{Day: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Species: "sheep", Head: 4},
		{Day: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), Species: "cattle", Head: 2},
		{Day: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), Species: "sheep", Head: 1},
	}

	dates, species, totals := dayTotals(rows, 3, today)
	require.Len(t, dates, 3)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), dates[2])
	assert.Equal(t, []string{"cattle", "sheep"}, species)
	assert.Equal(t, int64(1), totals[dates[0]]["sheep"])
	assert.Equal(t, int64(4), totals[dates[2]]["sheep"])
	assert.Empty(t, totals[dates[1]])
}

func TestOverview_LoadsAndShiftsWindow(t *testing.T) {
	b := modeltest.New()
	a := seedAnimals(t, b, 1)[0]
	_, err := b.SlaughterAnimal(t.Context(), model.SlaughterInput{AnimalID: a.ID, HotWeightKg: decimal.NewFromInt(280), Grade: "R"})
	require.NoError(t, err)

	d := testDeps(b, viewctl.NewManualClock(testStart))
	p := newOverviewPage(d)
	cmd := p.Enter(nil)
	require.True(t, p.Loading())

	loaded := findMsg[overviewLoadedMsg](t, cmd)
	require.NoError(t, loaded.err)
	p.Update(loaded)
	assert.False(t, p.Loading())
	assert.Equal(t, int64(1), p.counts["carcasses"])
	assert.Contains(t, p.View(100, 30), "Throughput, last 14 days")

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Equal(t, 30, p.sched.Args())
	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Equal(t, 30, p.sched.Args(), "widest window")
	assert.Equal(t, 2, p.sched.Issued())

	p.Leave()
	p.Update(overviewTickMsg{gen: p.sched.Generation() - 1})
	assert.Equal(t, 2, p.sched.Issued())
}
