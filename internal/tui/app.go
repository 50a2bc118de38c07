package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/viewctl"
)

// Config configures the console.
type Config struct {
	Backend         model.Backend
	RefreshInterval time.Duration
	PageSize        int
	FetchTimeout    time.Duration
	Clock           viewctl.Clock
	Logger          zerolog.Logger
	// DataSource is shown in the header, e.g. "socket" or "http".
	DataSource string
}

// App is the top-level Bubble Tea model that routes between pages. It owns
// the signal hub the pages' refresh schedulers subscribe to and translates
// terminal events into it.
type App struct {
	pages      map[string]Page
	tabs       []string
	activePage string
	width      int
	height     int

	signals *viewctl.Signals
	modals  []Modal
	toasts  *Toasts
	keys    KeyMap
	logger  zerolog.Logger
	source  string
}

// NewApp builds the console with its pages. The overview is the first page.
func NewApp(cfg Config) *App {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = model.DefaultRefreshInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = viewctl.SystemClock
	}

	a := &App{
		pages:   make(map[string]Page),
		signals: viewctl.NewSignals(),
		toasts:  newToasts(),
		keys:    DefaultKeyMap(),
		logger:  cfg.Logger,
		source:  cfg.DataSource,
	}
	d := deps{
		backend:      cfg.Backend,
		keys:         a.keys,
		signals:      a.signals,
		clock:        cfg.Clock,
		interval:     cfg.RefreshInterval,
		pageSize:     cfg.PageSize,
		fetchTimeout: cfg.FetchTimeout,
		logger:       cfg.Logger,
	}

	a.addPage(newOverviewPage(d), true)
	a.addPage(newAnimalsPage(d), true)
	a.addPage(newSuppliersPage(d), true)
	a.addPage(newCarcassesPage(d), true)
	a.addPage(newAnimalFormPage(d), false)
	a.addPage(newSupplierFormPage(d), false)
	a.addPage(newSlaughterFormPage(d), false)
	a.activePage = a.tabs[0]
	return a
}

func (a *App) addPage(p Page, tab bool) {
	a.pages[p.ID()] = p
	if tab {
		a.tabs = append(a.tabs, p.ID())
	}
}

// Signals exposes the hub, mainly for tests.
func (a *App) Signals() *viewctl.Signals { return a.signals }

// ActivePage returns the id of the page being shown.
func (a *App) ActivePage() string { return a.activePage }

// Page returns a registered page by id.
func (a *App) Page(id string) Page { return a.pages[id] }

// TopModal returns the modal on top of the stack, or nil.
func (a *App) TopModal() Modal {
	if len(a.modals) == 0 {
		return nil
	}
	return a.modals[len(a.modals)-1]
}

func (a *App) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range a.pages {
		cmds = append(cmds, p.Init())
	}
	return tea.Batch(append(cmds, a.enter(a.activePage, nil))...)
}

// enter switches to page id, passing params, and announces it as visible.
func (a *App) enter(id string, params interface{}) tea.Cmd {
	p, ok := a.pages[id]
	if !ok {
		return nil
	}
	if cur, ok := a.pages[a.activePage]; ok && id != a.activePage {
		if l, ok := cur.(Leavable); ok {
			l.Leave()
		}
	}
	a.logger.Debug().Str("from", a.activePage).Str("to", id).Msg("navigate")
	a.activePage = id

	var cmds []tea.Cmd
	if e, ok := p.(Enterable); ok {
		cmds = append(cmds, e.Enter(params))
	}
	if a.width > 0 {
		_, _ = p.Update(tea.WindowSizeMsg{Width: a.width, Height: a.bodyHeight()})
	}
	cmds = append(cmds, a.emit(viewctl.SignalVisible))
	return tea.Batch(cmds...)
}

// emit delivers a signal into the hub and collects whatever the subscribed
// controllers queued in response.
func (a *App) emit(sig viewctl.Signal) tea.Cmd {
	a.signals.Emit(sig)
	if q, ok := a.pages[a.activePage].(cmdQueue); ok {
		return q.TakeCmds()
	}
	return nil
}

func (a *App) navigate(nav *PageNav) tea.Cmd {
	if nav == nil {
		return nil
	}
	if _, ok := a.pages[nav.PageID]; !ok {
		a.logger.Warn().Str("page", nav.PageID).Msg("unknown page")
		return nil
	}
	return a.enter(nav.PageID, nav.Params)
}

func (a *App) cycleTab(delta int) tea.Cmd {
	idx := 0
	for i, id := range a.tabs {
		if id == a.activePage {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(a.tabs)) % len(a.tabs)
	return a.enter(a.tabs[idx], nil)
}

// PushModal pushes m unless a modal with the same ID is already on top.
// The page underneath is hidden while any modal is open.
func (a *App) PushModal(m Modal) tea.Cmd {
	if top := a.TopModal(); top != nil && top.ID() == m.ID() {
		return nil
	}
	a.modals = append(a.modals, m)
	if len(a.modals) == 1 {
		return a.emit(viewctl.SignalHidden)
	}
	return nil
}

// PopModal removes the top modal. Closing the last one shows the page again.
func (a *App) PopModal() tea.Cmd {
	if len(a.modals) == 0 {
		return nil
	}
	a.modals = a.modals[:len(a.modals)-1]
	if len(a.modals) == 0 {
		return a.emit(viewctl.SignalVisible)
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		body := tea.WindowSizeMsg{Width: msg.Width, Height: a.bodyHeight()}
		for _, p := range a.pages {
			_, _ = p.Update(body)
		}
		return a, nil

	case tea.FocusMsg:
		return a, a.emit(viewctl.SignalFocus)

	case tea.BlurMsg:
		a.logger.Debug().Str("page", a.activePage).Msg("terminal lost focus")
		return a, nil

	case tea.ResumeMsg:
		return a, a.emit(viewctl.SignalVisible)

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case PushModalMsg:
		return a, a.PushModal(msg.Modal)

	case ToastMsg:
		if msg.Level == ToastError {
			a.logger.Warn().Str("toast", msg.Text).Msg("error shown")
		}
		return a, a.toasts.Push(msg.Level, msg.Text)

	case toastExpiredMsg:
		a.toasts.Expire(msg.id)
		return a, nil

	case SpinnerTickMsg:
		if l, ok := a.pages[a.activePage].(loader); ok && l.Loading() {
			return a, spinnerTick()
		}
		return a, nil
	}

	var cmds []tea.Cmd
	if top := a.TopModal(); top != nil {
		pop, cmd := top.Update(msg)
		cmds = append(cmds, cmd)
		if pop {
			cmds = append(cmds, a.PopModal())
		}
	}

	target := a.pages[a.activePage]
	if ad, ok := msg.(addressed); ok {
		target = a.pages[ad.target()]
	}
	if target != nil {
		cmd, nav := target.Update(msg)
		cmds = append(cmds, cmd)
		if target.ID() == a.activePage {
			cmds = append(cmds, a.navigate(nav))
		}
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, a.keys.ForceQuit) {
		return tea.Quit
	}

	if top := a.TopModal(); top != nil {
		pop, cmd := top.Update(msg)
		if pop {
			return tea.Batch(cmd, a.PopModal())
		}
		return cmd
	}

	p := a.pages[a.activePage]
	capturing := false
	if c, ok := p.(interface{ CapturesInput() bool }); ok {
		capturing = c.CapturesInput()
	}

	if !capturing {
		switch {
		case key.Matches(msg, a.keys.Quit):
			return tea.Quit
		case key.Matches(msg, a.keys.Help):
			return a.PushModal(NewHelpModal(a.keys))
		case key.Matches(msg, a.keys.NextPage):
			return a.cycleTab(1)
		case key.Matches(msg, a.keys.PrevPage):
			return a.cycleTab(-1)
		case msg.String() == "ctrl+z":
			return tea.Batch(a.emit(viewctl.SignalHidden), tea.Suspend)
		}
	}

	cmd, nav := p.Update(msg)
	return tea.Batch(cmd, a.navigate(nav))
}

const (
	headerHeight = 2
	footerHeight = 1
)

func (a *App) bodyHeight() int {
	return max(5, a.height-headerHeight-footerHeight)
}

func (a *App) View() string {
	if a.width == 0 {
		return renderLoadingPlaceholder(40, 5)
	}
	if top := a.TopModal(); top != nil {
		return top.View(a.width, a.height)
	}

	header := a.renderHeader()
	toasts := a.toasts.View(a.width)
	bodyHeight := a.bodyHeight() - lipgloss.Height(toasts)
	if toasts == "" {
		bodyHeight = a.bodyHeight()
	}

	body := "No active page"
	if p, ok := a.pages[a.activePage]; ok {
		body = p.View(a.width, bodyHeight)
	}
	body = lipgloss.NewStyle().MaxHeight(bodyHeight).Height(bodyHeight).Render(body)

	parts := []string{header, body}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, a.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderHeader() string {
	tabs := make([]string, 0, len(a.tabs))
	for _, id := range a.tabs {
		title := a.pages[id].Title()
		if id == a.activePage {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, tabStyle.Render(title))
		}
	}
	if !a.isTab(a.activePage) {
		tabs = append(tabs, activeTabStyle.Render(a.pages[a.activePage].Title()))
	}

	left := titleStyle.Render("yardline") + "  " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	right := helpStyle.Render(a.source)
	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right))
	line := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return lipgloss.JoinVertical(lipgloss.Left, line, helpStyle.Render(strings.Repeat("─", max(0, a.width))))
}

func (a *App) isTab(id string) bool {
	for _, t := range a.tabs {
		if t == id {
			return true
		}
	}
	return false
}

func (a *App) renderFooter() string {
	return statusBarStyle.Render("tab screens · j/k rows · n/p pages · m actions · a add · / search · f filter · r refresh · ? help · q quit")
}
