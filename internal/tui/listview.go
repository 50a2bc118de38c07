package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/viewctl"
)

const defaultFetchTimeout = 10 * time.Second

// ListConfig describes one list page.
type ListConfig[T any, K comparable] struct {
	ID      string
	Title   string
	Noun    string // plural, used in empty and count lines
	Columns []Column[T]
	Key     viewctl.KeySelector[T, K]
	Label   func(T) string
	Fetch   func(ctx context.Context, q model.ListQuery) ([]T, error)

	// Statuses are the values the status filter cycles through after "all".
	Statuses []string
	RowStyle func(T) lipgloss.Style

	// Actions lists the row menu entries for a row.
	Actions  func(T) []string
	OnAction func(v *ListView[T, K], action string, row T) (tea.Cmd, *PageNav)
	OnAdd    func(v *ListView[T, K]) (tea.Cmd, *PageNav)

	Interval     time.Duration
	PageSize     int
	FetchTimeout time.Duration
	Clock        viewctl.Clock
	Signals      *viewctl.Signals
	Keys         KeyMap
	Logger       zerolog.Logger
}

type listLoadedMsg[T any] struct {
	view  string
	seq   uint64
	items []T
	err   error
}

type refreshTickMsg struct {
	view string
	gen  uint64
}

type remeasureMsg struct {
	view  string
	token viewctl.RemeasureToken
}

type mutationDoneMsg struct {
	view string
	text string
	err  error
}

func (m listLoadedMsg[T]) target() string { return m.view }
func (m refreshTickMsg) target() string   { return m.view }
func (m remeasureMsg) target() string     { return m.view }
func (m mutationDoneMsg) target() string  { return m.view }

// ListView is a paginated, periodically refreshed table with per-row action
// menus. It owns one of each viewctl controller.
type ListView[T any, K comparable] struct {
	cfg ListConfig[T, K]

	items   []T
	loaded  bool
	loading bool
	lastErr error
	seq     uint64

	pager    *viewctl.Pagination
	sched    *viewctl.Scheduler[model.ListQuery]
	scroll   *viewctl.ScrollTracker
	menu     *viewctl.MenuCoordinator[K]
	returned viewctl.ReturnFlag

	tbl        table[T]
	cursor     int
	menuCursor int
	statusIdx  int

	searching bool
	search    textinput.Model
	indicator paginator.Model

	pending []tea.Cmd
	width   int
	height  int
}

// NewListView builds a list view. Nothing is fetched until the view is
// entered.
func NewListView[T any, K comparable](cfg ListConfig[T, K]) *ListView[T, K] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = model.DefaultPageSize
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = viewctl.SystemClock
	}
	if cfg.Label == nil {
		cfg.Label = func(row T) string { return fmt.Sprint(cfg.Key(row)) }
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"
	search.CharLimit = 64

	ind := paginator.New()
	ind.Type = paginator.Dots
	ind.ActiveDot = lipgloss.NewStyle().Foreground(ColorBlue).Render("•")
	ind.InactiveDot = lipgloss.NewStyle().Foreground(ColorGray).Render("•")

	v := &ListView[T, K]{
		cfg:       cfg,
		pager:     viewctl.NewPagination(cfg.PageSize),
		scroll:    viewctl.NewScrollTracker(),
		menu:      viewctl.NewMenuCoordinator[K](),
		tbl:       table[T]{columns: cfg.Columns},
		search:    search,
		indicator: ind,
		width:     80,
		height:    24,
	}
	v.sched = viewctl.NewScheduler[model.ListQuery](cfg.Interval, v.refresh, viewctl.WithClock(cfg.Clock))
	return v
}

func (v *ListView[T, K]) ID() string    { return v.cfg.ID }
func (v *ListView[T, K]) Title() string { return v.cfg.Title }
func (v *ListView[T, K]) Init() tea.Cmd { return nil }

// Loading reports whether a fetch is in flight.
func (v *ListView[T, K]) Loading() bool { return v.loading }

// CapturesInput reports whether keys should bypass global shortcuts.
func (v *ListView[T, K]) CapturesInput() bool { return v.searching }

// Items returns the full fetched collection.
func (v *ListView[T, K]) Items() []T { return v.items }

// Visible returns the rows of the current page.
func (v *ListView[T, K]) Visible() []T { return viewctl.VisibleSlice(v.pager, v.items) }

func (v *ListView[T, K]) Pagination() *viewctl.Pagination                { return v.pager }
func (v *ListView[T, K]) Scheduler() *viewctl.Scheduler[model.ListQuery] { return v.sched }
func (v *ListView[T, K]) ScrollTracker() *viewctl.ScrollTracker          { return v.scroll }
func (v *ListView[T, K]) Menu() *viewctl.MenuCoordinator[K]              { return v.menu }
func (v *ListView[T, K]) Query() model.ListQuery                         { return v.sched.Args() }
func (v *ListView[T, K]) ReturnFlag() *viewctl.ReturnFlag                { return &v.returned }
func (v *ListView[T, K]) Cursor() int                                    { return v.cursor }
func (v *ListView[T, K]) Err() error                                     { return v.lastErr }

// Enter mounts the scheduler. The first entry loads the collection; later
// entries refresh only when coming back from a flow that changed data.
func (v *ListView[T, K]) Enter(params interface{}) tea.Cmd {
	if rp, ok := params.(ReturnParams); ok && rp.Mutated {
		v.returned.Set()
	}
	v.scroll.Revive()
	gen := v.sched.Mount(v.cfg.Signals)
	if !v.loaded && !v.loading {
		v.returned.Consume()
		v.sched.Force()
	} else {
		v.sched.ConsumeReturn(&v.returned)
	}
	v.pending = append(v.pending, v.tickCmd(gen))
	return v.TakeCmds()
}

// Leave unmounts the scheduler and drops transient UI state.
func (v *ListView[T, K]) Leave() {
	v.sched.Unmount()
	v.scroll.Dispose()
	v.menu.Close()
	v.searching = false
	v.search.Blur()
}

// TakeCmds returns and clears the commands queued by the controllers.
func (v *ListView[T, K]) TakeCmds() tea.Cmd {
	if len(v.pending) == 0 {
		return nil
	}
	cmds := v.pending
	v.pending = nil
	return tea.Batch(cmds...)
}

// ForceRefresh re-fetches immediately, bypassing the due check.
func (v *ListView[T, K]) ForceRefresh() tea.Cmd {
	v.sched.Force()
	return v.TakeCmds()
}

func (v *ListView[T, K]) refresh(q model.ListQuery) {
	v.seq++
	seq, id, fetch, timeout := v.seq, v.cfg.ID, v.cfg.Fetch, v.cfg.FetchTimeout
	if !v.loading {
		v.pending = append(v.pending, spinnerTick())
	}
	v.loading = true
	v.pending = append(v.pending, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := fetch(ctx, q)
		return listLoadedMsg[T]{view: id, seq: seq, items: items, err: err}
	})
}

func (v *ListView[T, K]) tickCmd(gen uint64) tea.Cmd {
	id := v.cfg.ID
	return tea.Tick(v.sched.Interval(), func(time.Time) tea.Msg {
		return refreshTickMsg{view: id, gen: gen}
	})
}

// Mutate runs fn as a command. On success a toast with text is shown and the
// list re-fetches.
func (v *ListView[T, K]) Mutate(text string, fn func(ctx context.Context) error) tea.Cmd {
	id, timeout := v.cfg.ID, v.cfg.FetchTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return mutationDoneMsg{view: id, text: text, err: fn(ctx)}
	}
}

func (v *ListView[T, K]) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.tbl.clampOffset(v.clientWidth())
		v.scroll.OnScroll(v.metrics())

	case listLoadedMsg[T]:
		if msg.view != v.cfg.ID || msg.seq != v.seq {
			return nil, nil
		}
		v.loading = false
		if msg.err != nil {
			v.lastErr = msg.err
			v.cfg.Logger.Warn().Err(msg.err).Str("view", v.cfg.ID).Msg("list fetch failed")
			return errorToast(fmt.Errorf("load %s: %w", v.cfg.Noun, msg.err)), nil
		}
		v.lastErr = nil
		v.apply(msg.items)
		tok := v.scroll.OnCollectionChanged()
		id := v.cfg.ID
		return tea.Tick(viewctl.RemeasureDelay, func(time.Time) tea.Msg {
			return remeasureMsg{view: id, token: tok}
		}), nil

	case refreshTickMsg:
		if msg.view != v.cfg.ID {
			return nil, nil
		}
		v.sched.OnTick(msg.gen)
		if v.sched.TickAlive(msg.gen) {
			v.pending = append(v.pending, v.tickCmd(msg.gen))
		}

	case remeasureMsg:
		if msg.view == v.cfg.ID {
			v.tbl.clampOffset(v.clientWidth())
			v.scroll.Remeasure(msg.token, v.metrics())
		}

	case mutationDoneMsg:
		if msg.view != v.cfg.ID {
			return nil, nil
		}
		if msg.err != nil {
			v.cfg.Logger.Warn().Err(msg.err).Str("view", v.cfg.ID).Msg("mutation failed")
			return errorToast(msg.err), nil
		}
		v.sched.Force()
		v.pending = append(v.pending, toastCmd(ToastSuccess, msg.text))

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v.TakeCmds(), nil
}

// apply installs a freshly fetched collection, keeping the cursor on the
// same row when it is still on the current page.
func (v *ListView[T, K]) apply(items []T) {
	var cursorKey K
	hadCursor := false
	if row, ok := v.cursorRow(); ok {
		cursorKey, hadCursor = v.cfg.Key(row), true
	}
	selected, hadSelected := v.selectedAction()

	v.items = items
	v.loaded = true
	v.pager.OnCollectionSizeChanged(len(items))

	visible := v.Visible()
	v.menu.Retain(viewctl.Keys(visible, v.cfg.Key))
	v.restoreMenuCursor(selected, hadSelected)
	if hadCursor {
		if idx := viewctl.IndexOf(visible, cursorKey, v.cfg.Key); idx >= 0 {
			v.cursor = idx
			return
		}
	}
	v.clampCursor()
}

// selectedAction names the highlighted menu entry of the open row.
func (v *ListView[T, K]) selectedAction() (string, bool) {
	row, ok := v.openRow()
	if !ok {
		return "", false
	}
	actions := v.cfg.Actions(row)
	if v.menuCursor < 0 || v.menuCursor >= len(actions) {
		return "", false
	}
	return actions[v.menuCursor], true
}

// restoreMenuCursor keeps the highlight on the same action after the open
// row's action list changed, falling back to the first entry.
func (v *ListView[T, K]) restoreMenuCursor(selected string, ok bool) {
	v.menuCursor = 0
	row, open := v.openRow()
	if open && ok {
		if idx := slices.Index(v.cfg.Actions(row), selected); idx >= 0 {
			v.menuCursor = idx
		}
	}
}

func (v *ListView[T, K]) openRow() (T, bool) {
	var zero T
	openKey, open := v.menu.OpenID()
	if !open {
		return zero, false
	}
	idx := viewctl.IndexOf(v.items, openKey, v.cfg.Key)
	if idx < 0 {
		return zero, false
	}
	return v.items[idx], true
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}

func (v *ListView[T, K]) clampCursor() {
	v.cursor = max(0, min(v.cursor, len(v.Visible())-1))
}

func (v *ListView[T, K]) cursorRow() (T, bool) {
	visible := v.Visible()
	if v.cursor < 0 || v.cursor >= len(visible) {
		var zero T
		return zero, false
	}
	return visible[v.cursor], true
}

func (v *ListView[T, K]) afterPageChange() {
	v.cursor = 0
	v.menu.Retain(viewctl.Keys(v.Visible(), v.cfg.Key))
}

func (v *ListView[T, K]) clientWidth() int {
	return max(20, v.width-4)
}

func (v *ListView[T, K]) metrics() viewctl.Metrics {
	return viewctl.Metrics{
		ScrollLeft:  v.tbl.offset,
		ScrollWidth: v.tbl.contentWidth(),
		ClientWidth: v.clientWidth(),
	}
}

// setQuery replaces the filter and re-fetches from page 1.
func (v *ListView[T, K]) setQuery(q model.ListQuery) {
	if q == v.sched.Args() {
		return
	}
	v.sched.SetArgs(q)
	v.pager.FirstPage()
	v.cursor = 0
	v.menu.Close()
	v.sched.Force()
}

func (v *ListView[T, K]) statusFilter() string {
	if v.statusIdx == 0 || v.statusIdx > len(v.cfg.Statuses) {
		return ""
	}
	return v.cfg.Statuses[v.statusIdx-1]
}

func (v *ListView[T, K]) cyclePageSize(grow bool) {
	sizes := model.PageSizes
	idx := slices.Index(sizes, v.pager.PerPage())
	switch {
	case idx < 0:
		idx = slices.Index(sizes, model.DefaultPageSize)
	case grow:
		idx = min(idx+1, len(sizes)-1)
	default:
		idx = max(idx-1, 0)
	}
	if sizes[idx] == v.pager.PerPage() {
		return
	}
	v.pager.SetPerPage(sizes[idx])
	v.afterPageChange()
}

func (v *ListView[T, K]) handleKey(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	k := v.cfg.Keys

	if v.searching {
		return v.handleSearchKey(msg)
	}
	if openKey, open := v.menu.OpenID(); open {
		return v.handleMenuKey(msg, openKey)
	}

	switch {
	case key.Matches(msg, k.Up):
		v.cursor = max(0, v.cursor-1)
	case key.Matches(msg, k.Down):
		v.cursor = min(len(v.Visible())-1, v.cursor+1)
		v.cursor = max(0, v.cursor)
	case key.Matches(msg, k.NextListPg):
		if v.pager.NextPage() {
			v.afterPageChange()
		}
	case key.Matches(msg, k.PrevListPg):
		if v.pager.PrevPage() {
			v.afterPageChange()
		}
	case key.Matches(msg, k.FirstListPg):
		if v.pager.FirstPage() {
			v.afterPageChange()
		}
	case key.Matches(msg, k.LastListPg):
		if v.pager.LastPage() {
			v.afterPageChange()
		}
	case key.Matches(msg, k.PageSize):
		v.cyclePageSize(msg.String() == "+")
	case key.Matches(msg, k.ScrollLeft):
		v.tbl.scroll(-scrollStep, v.clientWidth())
		v.scroll.OnScroll(v.metrics())
	case key.Matches(msg, k.ScrollRight):
		v.tbl.scroll(scrollStep, v.clientWidth())
		v.scroll.OnScroll(v.metrics())
	case key.Matches(msg, k.Menu):
		if row, ok := v.cursorRow(); ok && v.cfg.Actions != nil && len(v.cfg.Actions(row)) > 0 {
			v.menu.Toggle(v.cfg.Key(row))
			v.menuCursor = 0
		}
	case key.Matches(msg, k.Add):
		if v.cfg.OnAdd != nil {
			return v.cfg.OnAdd(v)
		}
	case key.Matches(msg, k.Search):
		v.searching = true
		v.search.SetValue(v.sched.Args().Search)
		v.search.CursorEnd()
		return v.search.Focus(), nil
	case key.Matches(msg, k.Filter):
		if len(v.cfg.Statuses) > 0 {
			v.statusIdx = (v.statusIdx + 1) % (len(v.cfg.Statuses) + 1)
			q := v.sched.Args()
			q.Status = v.statusFilter()
			v.setQuery(q)
		}
	case key.Matches(msg, k.Escape):
		if !v.sched.Args().Empty() {
			v.statusIdx = 0
			v.setQuery(model.ListQuery{})
		}
	case key.Matches(msg, k.Refresh):
		v.sched.Force()
	}
	return v.TakeCmds(), nil
}

func (v *ListView[T, K]) handleSearchKey(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	switch msg.Type {
	case tea.KeyEnter:
		v.searching = false
		v.search.Blur()
		q := v.sched.Args()
		q.Search = strings.TrimSpace(v.search.Value())
		v.setQuery(q)
		return v.TakeCmds(), nil
	case tea.KeyEsc:
		v.searching = false
		v.search.Blur()
		return nil, nil
	}
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	return cmd, nil
}

func (v *ListView[T, K]) handleMenuKey(msg tea.KeyMsg, openKey K) (tea.Cmd, *PageNav) {
	k := v.cfg.Keys
	idx := viewctl.IndexOf(v.items, openKey, v.cfg.Key)
	if idx < 0 {
		v.menu.Close()
		return nil, nil
	}
	row := v.items[idx]
	actions := v.cfg.Actions(row)
	v.menuCursor = clampIndex(v.menuCursor, len(actions))

	switch {
	case key.Matches(msg, k.Enter):
		v.menu.Close()
		if v.menuCursor < len(actions) && v.cfg.OnAction != nil {
			return v.cfg.OnAction(v, actions[v.menuCursor], row)
		}
	case key.Matches(msg, k.Up):
		v.menuCursor = max(0, v.menuCursor-1)
	case key.Matches(msg, k.Down):
		v.menuCursor = min(len(actions)-1, v.menuCursor+1)
	case key.Matches(msg, k.Escape), key.Matches(msg, k.Menu):
		v.menu.Close()
	}
	return nil, nil
}

func (v *ListView[T, K]) View(width, height int) string {
	if width != v.width || height != v.height {
		v.width, v.height = width, height
		v.tbl.clampOffset(v.clientWidth())
	}

	if !v.loaded {
		if v.lastErr != nil {
			return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
				errorStyle.Render("Could not load "+v.cfg.Noun+": "+v.lastErr.Error()))
		}
		return renderLoadingPlaceholder(width, height)
	}

	sections := []string{v.renderTitle()}
	if v.searching {
		sections = append(sections, v.search.View())
	}

	visible := v.Visible()
	if len(visible) == 0 {
		sections = append(sections, helpStyle.Render("No "+v.cfg.Noun+" found"))
	} else {
		sections = append(sections, v.tbl.render(visible, v.cursor, v.clientWidth(), v.cfg.RowStyle))
		sections = append(sections, helpStyle.Render(viewctl.DescribeAffordance(v.scroll.Affordance())))
	}

	if openKey, open := v.menu.OpenID(); open {
		if idx := viewctl.IndexOf(v.items, openKey, v.cfg.Key); idx >= 0 {
			sections = append(sections, v.renderMenu(v.items[idx]))
		}
	}

	sections = append(sections, v.renderFooter())
	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (v *ListView[T, K]) renderTitle() string {
	parts := []string{titleStyle.Render(v.cfg.Title), helpStyle.Render(fmt.Sprintf("(%d)", v.pager.TotalItems()))}
	q := v.sched.Args()
	if q.Status != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(statusColor(q.Status)).Render("["+q.Status+"]"))
	}
	if q.Search != "" {
		parts = append(parts, helpStyle.Render(fmt.Sprintf("search %q", q.Search)))
	}
	if v.loading {
		parts = append(parts, helpStyle.Render(spinnerFrames[time.Now().UnixMilli()/spinnerInterval.Milliseconds()%int64(len(spinnerFrames))]))
	}
	return strings.Join(parts, " ")
}

func (v *ListView[T, K]) renderMenu(row T) string {
	actions := v.cfg.Actions(row)
	selected := clampIndex(v.menuCursor, len(actions))
	lines := []string{titleStyle.Render("Actions: " + v.cfg.Label(row))}
	for i, a := range actions {
		if i == selected {
			lines = append(lines, selectedRow.Render(cursorGlyph+" "+a))
		} else {
			lines = append(lines, "  "+a)
		}
	}
	return menuStyle.Render(strings.Join(lines, "\n"))
}

func (v *ListView[T, K]) renderFooter() string {
	st := v.pager.State()
	v.indicator.PerPage = st.PerPage
	v.indicator.SetTotalPages(st.TotalItems)
	v.indicator.Page = st.CurrentPage - 1
	v.indicator.Type = paginator.Dots
	if st.TotalPages > 12 {
		v.indicator.Type = paginator.Arabic
	}

	pageLine := fmt.Sprintf("page %d/%d · %d per page", st.CurrentPage, max(st.TotalPages, 1), st.PerPage)
	if st.TotalPages > 1 {
		pageLine += "  " + v.indicator.View()
	}

	status := "updated " + v.sched.LastRefreshAt().Format("15:04:05")
	if v.lastErr != nil {
		status += "  " + errorStyle.Render("last refresh failed: "+v.lastErr.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, helpStyle.Render(pageLine), statusBarStyle.Render(status))
}
