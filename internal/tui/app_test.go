package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/model/modeltest"
	"github.com/yardline/yardline/internal/viewctl"
)

func newTestApp(t *testing.T, animals int) (*App, *modeltest.Backend, *viewctl.ManualClock) {
	t.Helper()
	b := modeltest.New()
	if animals > 0 {
		seedAnimals(t, b, animals)
	}
	clock := viewctl.NewManualClock(testStart)
	a := NewApp(Config{Backend: b, RefreshInterval: testInterval, PageSize: 10, Clock: clock})
	a.Init()
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a, b, clock
}

func animalsOf(a *App) *ListView[model.Animal, int64] {
	return a.Page(PageAnimals).(*ListView[model.Animal, int64])
}

func TestApp_TabsMountOnlyActivePage(t *testing.T) {
	a, _, _ := newTestApp(t, 2)
	require.Equal(t, PageOverview, a.ActivePage())
	assert.Equal(t, 1, a.Signals().Len(viewctl.SignalFocus))
	assert.False(t, animalsOf(a).Scheduler().Mounted())

	a.Update(keyMsg("tab"))
	assert.Equal(t, PageAnimals, a.ActivePage())
	assert.Equal(t, 1, a.Signals().Len(viewctl.SignalFocus))
	assert.True(t, animalsOf(a).Scheduler().Mounted())

	a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, PageOverview, a.ActivePage())
	assert.False(t, animalsOf(a).Scheduler().Mounted())
}

func TestApp_ModalHidesPage(t *testing.T) {
	a, _, _ := newTestApp(t, 2)
	a.Update(keyMsg("tab"))
	list := animalsOf(a)
	deliver(t, list)

	a.Update(keyMsg("?"))
	require.NotNil(t, a.TopModal())
	assert.False(t, list.Scheduler().Visible())

	a.Update(keyMsg("?"))
	assert.Nil(t, a.TopModal())
	assert.True(t, list.Scheduler().Visible())
}

func TestApp_FocusRefreshesActiveListWhenDue(t *testing.T) {
	a, _, clock := newTestApp(t, 2)
	a.Update(keyMsg("tab"))
	list := animalsOf(a)
	deliver(t, list)
	issued := list.Scheduler().Issued()

	a.Update(tea.FocusMsg{})
	assert.Equal(t, issued, list.Scheduler().Issued())

	clock.Advance(2 * testInterval)
	_, cmd := a.Update(tea.FocusMsg{})
	assert.Equal(t, issued+1, list.Scheduler().Issued())
	assert.NotNil(t, cmd)
}

func TestApp_BlurLeavesRefreshAlone(t *testing.T) {
	a, _, clock := newTestApp(t, 2)
	a.Update(keyMsg("tab"))
	list := animalsOf(a)
	deliver(t, list)
	issued := list.Scheduler().Issued()

	clock.Advance(2 * testInterval)
	_, cmd := a.Update(tea.BlurMsg{})
	assert.Nil(t, cmd)
	assert.Equal(t, issued, list.Scheduler().Issued())
	assert.True(t, list.Scheduler().Visible())
}

type initStubMsg struct{}

type initStubPage struct{}

func (initStubPage) ID() string    { return "init-stub" }
func (initStubPage) Title() string { return "Stub" }
func (initStubPage) Init() tea.Cmd {
	return func() tea.Msg { return initStubMsg{} }
}
func (initStubPage) Update(tea.Msg) (tea.Cmd, *PageNav) { return nil, nil }
func (initStubPage) View(int, int) string               { return "" }

func TestApp_InitRunsPageInitCommands(t *testing.T) {
	b := modeltest.New()
	a := NewApp(Config{Backend: b, RefreshInterval: testInterval, PageSize: 10, Clock: viewctl.NewManualClock(testStart)})
	a.addPage(initStubPage{}, false)

	cmd := a.Init()
	require.NotNil(t, cmd)
	findMsg[initStubMsg](t, cmd)
	assert.Equal(t, PageOverview, a.ActivePage())
}

func TestApp_AddressedMessagesReachInactivePages(t *testing.T) {
	a, b, _ := newTestApp(t, 3)
	a.Update(keyMsg("tab"))
	list := animalsOf(a)
	seq := list.seq
	a.Update(keyMsg("tab"))
	require.Equal(t, PageSuppliers, a.ActivePage())

	items, err := b.ListAnimals(t.Context(), model.ListQuery{})
	require.NoError(t, err)
	a.Update(listLoadedMsg[model.Animal]{view: PageAnimals, seq: seq, items: items})
	assert.False(t, list.Loading())
	assert.Len(t, list.Items(), 3)
}

func TestApp_FormSaveReturnsAndRefreshesList(t *testing.T) {
	a, b, _ := newTestApp(t, 1)
	a.Update(keyMsg("tab"))
	list := animalsOf(a)
	deliver(t, list)
	issued := list.Scheduler().Issued()
	supplierID := list.Items()[0].SupplierID

	a.Update(keyMsg("a"))
	require.Equal(t, PageAnimalForm, a.ActivePage())
	assert.False(t, list.Scheduler().Mounted())

	update := func(m tea.Msg) { a.Update(m) }
	typeText(update, "UK900")
	a.Update(keyMsg("tab"))
	typeText(update, "sheep")
	a.Update(keyMsg("tab"))
	typeText(update, "Texel")
	a.Update(keyMsg("tab"))
	typeText(update, "female")
	a.Update(keyMsg("tab"))
	typeText(update, "41.5")
	a.Update(keyMsg("tab"))
	typeText(update, itoa(supplierID))
	require.Equal(t, PageAnimalForm, a.ActivePage(), "tab moves between fields inside a form")

	_, cmd := a.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	saved := findMsg[formSavedMsg](t, cmd)
	require.NoError(t, saved.err)

	a.Update(saved)
	assert.Equal(t, PageAnimals, a.ActivePage())
	assert.Equal(t, issued+1, list.Scheduler().Issued())

	got, err := b.ListAnimals(t.Context(), model.ListQuery{Search: "UK900"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "41.5", got[0].LiveWeightKg.String())
}

func TestApp_FormCancelDoesNotRefresh(t *testing.T) {
	a, _, _ := newTestApp(t, 1)
	a.Update(keyMsg("tab"))
	list := animalsOf(a)
	deliver(t, list)
	issued := list.Scheduler().Issued()

	a.Update(keyMsg("a"))
	a.Update(keyMsg("esc"))
	assert.Equal(t, PageAnimals, a.ActivePage())
	assert.Equal(t, issued, list.Scheduler().Issued())
}

func TestApp_ToastsAreBounded(t *testing.T) {
	a, _, _ := newTestApp(t, 0)
	for _, text := range []string{"one", "two", "three", "four"} {
		a.Update(ToastMsg{Level: ToastInfo, Text: text})
	}
	assert.Equal(t, []string{"two", "three", "four"}, a.toasts.Texts())
}

func TestApp_ConfirmDeleteFlow(t *testing.T) {
	a, b, _ := newTestApp(t, 2)
	a.Update(keyMsg("tab"))
	list := animalsOf(a)
	deliver(t, list)
	victim := list.Items()[0]

	list.Update(keyMsg("m"))
	for range 4 {
		list.Update(keyMsg("j"))
	}
	cmd, _ := list.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	push, ok := cmd().(PushModalMsg)
	require.True(t, ok)
	a.Update(push)
	require.IsType(t, &ConfirmModal{}, a.TopModal())

	_, cmd = a.Update(keyMsg("y"))
	assert.Nil(t, a.TopModal())
	require.NotNil(t, cmd)

	done := findMsg[mutationDoneMsg](t, cmd)
	require.NoError(t, done.err)
	_, err := b.GetAnimal(t.Context(), victim.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestApp_ViewRendersActivePage(t *testing.T) {
	a, _, _ := newTestApp(t, 2)
	a.Update(keyMsg("tab"))
	deliver(t, animalsOf(a))

	out := a.View()
	assert.Contains(t, out, "Animals")
	assert.Contains(t, out, "T001")
}
