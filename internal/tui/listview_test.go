package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/model/modeltest"
	"github.com/yardline/yardline/internal/viewctl"
)

func newTestAnimals(t *testing.T, n int) (*ListView[model.Animal, int64], *modeltest.Backend, *viewctl.ManualClock, deps) {
	t.Helper()
	b := modeltest.New()
	seedAnimals(t, b, n)
	clock := viewctl.NewManualClock(testStart)
	d := testDeps(b, clock)
	v := newAnimalsPage(d)
	return v, b, clock, d
}

func TestListView_EnterLoadsOnce(t *testing.T) {
	v, b, _, d := newTestAnimals(t, 3)

	require.NotNil(t, v.Enter(nil))
	assert.Equal(t, 1, v.Scheduler().Issued())
	assert.True(t, v.Loading())

	deliver(t, v)
	assert.False(t, v.Loading())
	assert.Len(t, v.Items(), 3)
	assert.Equal(t, 1, b.Calls("ListAnimals"))

	v.Leave()
	assert.Zero(t, d.signals.Len(viewctl.SignalVisible))

	v.Enter(nil)
	d.signals.Emit(viewctl.SignalVisible)
	assert.Equal(t, 1, v.Scheduler().Issued(), "not due and nothing changed")
}

func TestListView_ReturnWithMutationRefreshes(t *testing.T) {
	v, _, _, _ := newTestAnimals(t, 2)
	v.Enter(nil)
	deliver(t, v)
	v.Leave()

	v.Enter(ReturnParams{Mutated: true})
	assert.Equal(t, 2, v.Scheduler().Issued())
	assert.False(t, v.ReturnFlag().Pending())

	v.Leave()
	v.Enter(ReturnParams{})
	assert.Equal(t, 2, v.Scheduler().Issued())
}

func TestListView_FocusRefreshesOnlyWhenDue(t *testing.T) {
	v, _, clock, d := newTestAnimals(t, 2)
	v.Enter(nil)
	deliver(t, v)

	clock.Advance(testInterval / 2)
	d.signals.Emit(viewctl.SignalFocus)
	assert.Equal(t, 1, v.Scheduler().Issued())

	clock.Advance(testInterval)
	d.signals.Emit(viewctl.SignalFocus)
	assert.Equal(t, 2, v.Scheduler().Issued())
	assert.NotNil(t, v.TakeCmds(), "fetch queued for the host")
}

func TestListView_TicksFollowGenerationAndVisibility(t *testing.T) {
	v, _, _, d := newTestAnimals(t, 2)
	v.Enter(nil)
	deliver(t, v)
	gen := v.Scheduler().Generation()

	v.Update(refreshTickMsg{view: PageAnimals, gen: gen})
	assert.Equal(t, 2, v.Scheduler().Issued())

	d.signals.Emit(viewctl.SignalHidden)
	v.Update(refreshTickMsg{view: PageAnimals, gen: gen})
	assert.Equal(t, 2, v.Scheduler().Issued(), "hidden views do not tick")
	d.signals.Emit(viewctl.SignalVisible)

	v.Leave()
	v.Update(refreshTickMsg{view: PageAnimals, gen: gen})
	assert.Equal(t, 2, v.Scheduler().Issued(), "stale generation")
	assert.False(t, v.Scheduler().TickAlive(gen))
}

func TestListView_PagingKeys(t *testing.T) {
	v, _, _, _ := newTestAnimals(t, 25)
	v.Enter(nil)
	deliver(t, v)

	assert.Equal(t, 3, v.Pagination().TotalPages())
	assert.Len(t, v.Visible(), 10)

	v.Update(keyMsg("n"))
	assert.Equal(t, 2, v.Pagination().CurrentPage())
	assert.Equal(t, "T011", v.Visible()[0].TagNumber)

	v.Update(keyMsg("G"))
	assert.Equal(t, 3, v.Pagination().CurrentPage())
	assert.Len(t, v.Visible(), 5)

	v.Update(keyMsg("n"))
	assert.Equal(t, 3, v.Pagination().CurrentPage(), "past the end is ignored")

	v.Update(keyMsg("+"))
	assert.Equal(t, 20, v.Pagination().PerPage())
	assert.Equal(t, 1, v.Pagination().CurrentPage())

	v.Update(keyMsg("-"))
	v.Update(keyMsg("-"))
	assert.Equal(t, 5, v.Pagination().PerPage())
	assert.Equal(t, 5, v.Pagination().TotalPages())
}

func TestListView_ShrinkPastCurrentPageReturnsToFirst(t *testing.T) {
	v, b, _, _ := newTestAnimals(t, 25)
	v.Enter(nil)
	deliver(t, v)
	v.Update(keyMsg("G"))
	require.Equal(t, 3, v.Pagination().CurrentPage())

	for _, a := range v.Items()[12:] {
		require.NoError(t, b.DeleteAnimal(t.Context(), a.ID))
	}
	v.ForceRefresh()
	deliver(t, v)

	assert.Equal(t, 2, v.Pagination().TotalPages())
	assert.Equal(t, 1, v.Pagination().CurrentPage())
}

func TestListView_CursorFollowsRowAcrossRefresh(t *testing.T) {
	v, b, _, _ := newTestAnimals(t, 5)
	v.Enter(nil)
	deliver(t, v)

	v.Update(keyMsg("j"))
	v.Update(keyMsg("j"))
	target := v.Visible()[v.Cursor()]
	require.Equal(t, "T003", target.TagNumber)

	require.NoError(t, b.DeleteAnimal(t.Context(), v.Items()[0].ID))
	v.ForceRefresh()
	deliver(t, v)

	assert.Equal(t, 1, v.Cursor())
	assert.Equal(t, target.ID, v.Visible()[v.Cursor()].ID)
}

func TestListView_MenuIsExclusiveAndClosesWhenRowLeaves(t *testing.T) {
	v, b, _, _ := newTestAnimals(t, 3)
	v.Enter(nil)
	deliver(t, v)
	first, second := v.Items()[0], v.Items()[1]

	v.Update(keyMsg("m"))
	assert.True(t, v.Menu().IsOpen(first.ID))

	v.Update(keyMsg("esc"))
	_, open := v.Menu().OpenID()
	assert.False(t, open)

	v.Update(keyMsg("j"))
	v.Update(keyMsg("m"))
	assert.True(t, v.Menu().IsOpen(second.ID))
	assert.False(t, v.Menu().IsOpen(first.ID))

	require.NoError(t, b.DeleteAnimal(t.Context(), second.ID))
	v.ForceRefresh()
	deliver(t, v)
	_, open = v.Menu().OpenID()
	assert.False(t, open, "menu closed with its row")
}

func TestListView_MenuActionRunsMutation(t *testing.T) {
	v, b, _, _ := newTestAnimals(t, 2)
	v.Enter(nil)
	deliver(t, v)
	a := v.Items()[0]
	require.Equal(t, []string{actionEdit, actionSlaughter, actionLairage, actionReject, actionDelete}, animalActions(a))

	v.Update(keyMsg("m"))
	v.Update(keyMsg("j"))
	v.Update(keyMsg("j"))
	cmd, nav := v.Update(keyMsg("enter"))
	require.Nil(t, nav)
	require.NotNil(t, cmd)

	done, ok := cmd().(mutationDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	issued := v.Scheduler().Issued()
	v.Update(done)
	assert.Equal(t, issued+1, v.Scheduler().Issued())

	got, err := b.GetAnimal(t.Context(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusLairage, got.Status)
}

func TestListView_MenuSelectionSurvivesActionChanges(t *testing.T) {
	v, b, _, _ := newTestAnimals(t, 2)
	v.Enter(nil)
	deliver(t, v)
	a := v.Items()[0]

	v.Update(keyMsg("m"))
	v.Update(keyMsg("j"))
	_, err := b.SetAnimalStatus(t.Context(), a.ID, model.StatusRejected)
	require.NoError(t, err)
	v.ForceRefresh()
	deliver(t, v)

	require.True(t, v.Menu().IsOpen(a.ID))
	require.Equal(t, []string{actionEdit, actionDelete}, animalActions(v.Items()[0]))
	assert.Contains(t, v.View(80, 30), cursorGlyph+" "+actionEdit, "vanished action falls back to the first entry")

	_, nav := v.Update(keyMsg("enter"))
	require.NotNil(t, nav)
	assert.Equal(t, PageAnimalForm, nav.PageID)

	// Delete moves from index 4 to index 1 and stays highlighted.
	second := v.Items()[1]
	v.Update(keyMsg("j"))
	v.Update(keyMsg("m"))
	require.True(t, v.Menu().IsOpen(second.ID))
	for range 4 {
		v.Update(keyMsg("j"))
	}
	_, err = b.SetAnimalStatus(t.Context(), second.ID, model.StatusRejected)
	require.NoError(t, err)
	v.ForceRefresh()
	deliver(t, v)

	cmd, nav := v.Update(keyMsg("enter"))
	assert.Nil(t, nav)
	require.NotNil(t, cmd)
	push, ok := cmd().(PushModalMsg)
	require.True(t, ok)
	assert.Contains(t, push.Modal.View(80, 30), "Delete animal "+second.TagNumber+"?")
}

func TestListView_EditActionNavigatesToForm(t *testing.T) {
	v, _, _, _ := newTestAnimals(t, 1)
	v.Enter(nil)
	deliver(t, v)

	v.Update(keyMsg("m"))
	_, nav := v.Update(keyMsg("enter"))
	require.NotNil(t, nav)
	assert.Equal(t, PageAnimalForm, nav.PageID)
	assert.Equal(t, formParams{ID: v.Items()[0].ID, ReturnTo: PageAnimals}, nav.Params)
}

func TestListView_SearchAndStatusFilter(t *testing.T) {
	v, _, _, _ := newTestAnimals(t, 12)
	v.Enter(nil)
	deliver(t, v)
	v.Update(keyMsg("n"))

	v.Update(keyMsg("/"))
	require.True(t, v.CapturesInput())
	typeText(func(m tea.Msg) { v.Update(m) }, "T01")
	v.Update(keyMsg("enter"))

	assert.False(t, v.CapturesInput())
	assert.Equal(t, "T01", v.Query().Search)
	assert.Equal(t, 1, v.Pagination().CurrentPage())
	assert.Equal(t, 2, v.Scheduler().Issued())
	deliver(t, v)
	assert.Len(t, v.Items(), 3)

	v.Update(keyMsg("f"))
	assert.Equal(t, "received", v.Query().Status)
	v.Update(keyMsg("f"))
	assert.Equal(t, "lairage", v.Query().Status)

	v.Update(keyMsg("esc"))
	assert.True(t, v.Query().Empty())
}

func TestListView_FetchErrorKeepsPreviousRows(t *testing.T) {
	v, b, _, _ := newTestAnimals(t, 4)
	v.Enter(nil)
	deliver(t, v)

	b.Err = errors.New("connection refused")
	v.ForceRefresh()
	cmd := deliver(t, v)
	require.NotNil(t, cmd)

	msg, ok := cmd().(ToastMsg)
	require.True(t, ok)
	assert.Equal(t, ToastError, msg.Level)
	assert.Error(t, v.Err())
	assert.Len(t, v.Items(), 4)
}

func TestListView_DropsStaleResponses(t *testing.T) {
	v, _, _, _ := newTestAnimals(t, 3)
	v.Enter(nil)
	staleSeq := v.seq
	v.ForceRefresh()

	v.Update(listLoadedMsg[model.Animal]{view: PageAnimals, seq: staleSeq, items: nil})
	assert.True(t, v.Loading())
	assert.Empty(t, v.Items())

	deliver(t, v)
	assert.Len(t, v.Items(), 3)
}

func TestListView_ScrollAffordance(t *testing.T) {
	v, _, _, _ := newTestAnimals(t, 3)
	v.Update(tea.WindowSizeMsg{Width: 50, Height: 30})
	v.Enter(nil)
	deliver(t, v)

	tok := v.scroll.OnCollectionChanged()
	v.Update(remeasureMsg{view: PageAnimals, token: tok})
	assert.Equal(t, viewctl.Affordance{CanScrollRight: true}, v.ScrollTracker().Affordance())

	v.Update(keyMsg("l"))
	assert.True(t, v.ScrollTracker().Affordance().CanScrollLeft)

	for range 40 {
		v.Update(keyMsg("l"))
	}
	assert.Equal(t, viewctl.Affordance{CanScrollLeft: true}, v.ScrollTracker().Affordance())

	v.Leave()
	assert.False(t, v.ScrollTracker().Remeasure(tok, viewctl.Metrics{}))
}
