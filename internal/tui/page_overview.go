package tui

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/viewctl"
)

// Day windows cycled with [ and ].
var overviewWindows = []int{7, model.DefaultThroughputDays, 30}

var speciesColors = []lipgloss.Color{"39", "208", "42", "201", "220", "244"}

type overviewLoadedMsg struct {
	seq        uint64
	days       int
	throughput []model.DailyThroughput
	counts     map[string]int64
	err        error
}

func (overviewLoadedMsg) target() string { return PageOverview }

type overviewTickMsg struct {
	gen uint64
}

func (overviewTickMsg) target() string { return PageOverview }

// OverviewPage shows daily slaughter throughput and table sizes.
type OverviewPage struct {
	backend model.Backend
	keys    KeyMap
	signals *viewctl.Signals
	timeout time.Duration

	sched   *viewctl.Scheduler[int]
	seq     uint64
	loading bool
	loaded  bool
	err     error

	throughput []model.DailyThroughput
	counts     map[string]int64
	pending    []tea.Cmd
}

func newOverviewPage(d deps) *OverviewPage {
	p := &OverviewPage{
		backend: d.backend,
		keys:    d.keys,
		signals: d.signals,
		timeout: d.fetchTimeout,
	}
	if p.timeout <= 0 {
		p.timeout = defaultFetchTimeout
	}
	p.sched = viewctl.NewScheduler[int](d.interval, p.refresh, viewctl.WithClock(d.clock))
	p.sched.SetArgs(model.DefaultThroughputDays)
	return p
}

func (p *OverviewPage) ID() string    { return PageOverview }
func (p *OverviewPage) Title() string { return "Overview" }
func (p *OverviewPage) Init() tea.Cmd { return nil }
func (p *OverviewPage) Loading() bool { return p.loading }

func (p *OverviewPage) Enter(interface{}) tea.Cmd {
	gen := p.sched.Mount(p.signals)
	if !p.loaded && !p.loading {
		p.sched.Force()
	}
	p.pending = append(p.pending, p.tickCmd(gen))
	return p.TakeCmds()
}

func (p *OverviewPage) Leave() { p.sched.Unmount() }

func (p *OverviewPage) TakeCmds() tea.Cmd {
	cmds := p.pending
	p.pending = nil
	return tea.Batch(cmds...)
}

func (p *OverviewPage) tickCmd(gen uint64) tea.Cmd {
	return tea.Tick(p.sched.Interval(), func(time.Time) tea.Msg { return overviewTickMsg{gen: gen} })
}

func (p *OverviewPage) refresh(days int) {
	p.seq++
	seq, b, timeout := p.seq, p.backend, p.timeout
	if !p.loading {
		p.pending = append(p.pending, spinnerTick())
	}
	p.loading = true
	p.pending = append(p.pending, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msg := overviewLoadedMsg{seq: seq, days: days}
		msg.throughput, msg.err = b.DailyThroughput(ctx, days)
		if msg.err != nil {
			return msg
		}
		msg.counts, msg.err = b.RowCounts(ctx)
		return msg
	})
}

func (p *OverviewPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		if msg.seq != p.seq {
			return nil, nil
		}
		p.loading = false
		if msg.err != nil {
			p.err = msg.err
			return errorToast(fmt.Errorf("load overview: %w", msg.err)), nil
		}
		p.err = nil
		p.loaded = true
		p.throughput = msg.throughput
		p.counts = msg.counts

	case overviewTickMsg:
		p.sched.OnTick(msg.gen)
		if p.sched.TickAlive(msg.gen) {
			p.pending = append(p.pending, p.tickCmd(msg.gen))
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Refresh):
			p.sched.Force()
		case msg.String() == "[" || msg.String() == "]":
			p.shiftWindow(msg.String() == "]")
		}
	}
	return p.TakeCmds(), nil
}

func (p *OverviewPage) shiftWindow(wider bool) {
	idx := slices.Index(overviewWindows, p.sched.Args())
	if wider {
		idx = min(idx+1, len(overviewWindows)-1)
	} else {
		idx = max(idx-1, 0)
	}
	if overviewWindows[idx] == p.sched.Args() {
		return
	}
	p.sched.SetArgs(overviewWindows[idx])
	p.sched.Force()
}

// dayTotals folds throughput rows into per-day, per-species head counts for
// every day of the window ending today, oldest first.
func dayTotals(rows []model.DailyThroughput, days int, today time.Time) ([]time.Time, []string, map[time.Time]map[string]int64) {
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, days)
	for i := range dates {
		dates[i] = end.AddDate(0, 0, i-days+1)
	}

	bySpecies := make(map[string]bool)
	totals := make(map[time.Time]map[string]int64, days)
	for _, r := range rows {
		d := time.Date(r.Day.Year(), r.Day.Month(), r.Day.Day(), 0, 0, 0, 0, time.UTC)
		if totals[d] == nil {
			totals[d] = make(map[string]int64)
		}
		totals[d][r.Species] += r.Head
		bySpecies[r.Species] = true
	}

	species := make([]string, 0, len(bySpecies))
	for s := range bySpecies {
		species = append(species, s)
	}
	sort.Strings(species)
	return dates, species, totals
}

func (p *OverviewPage) View(width, height int) string {
	if !p.loaded {
		if p.err != nil {
			return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
				errorStyle.Render("Could not load overview: "+p.err.Error()))
		}
		return renderLoadingPlaceholder(width, height)
	}

	chartWidth := max(30, width-4)
	header := titleStyle.Render(fmt.Sprintf("Throughput, last %d days", p.sched.Args()))
	chart := p.renderChart(chartWidth-24, 10)
	counts := p.renderCounts()
	status := statusBarStyle.Render(fmt.Sprintf("updated %s · [/] window · r refresh",
		p.sched.LastRefreshAt().Format("15:04:05")))

	return lipgloss.NewStyle().Padding(0, 1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			activeSectionStyle.Width(chartWidth).Render(chart),
			counts,
			status,
		))
}

func (p *OverviewPage) renderChart(width, height int) string {
	days := p.sched.Args()
	dates, species, totals := dayTotals(p.throughput, days, time.Now().UTC())
	if len(species) == 0 {
		return helpStyle.Render("No carcasses recorded in this window")
	}

	styles := make(map[string]lipgloss.Style, len(species))
	for i, s := range species {
		c := speciesColors[i%len(speciesColors)]
		styles[s] = lipgloss.NewStyle().Foreground(c).Background(c)
	}

	width = max(width, 20)
	barWidth := max(1, (width/len(dates))-1)
	bc := barchart.New(width, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(barWidth),
		barchart.WithNoAxis(),
	)
	var peak int64
	for _, d := range dates {
		var values []barchart.BarValue
		var dayTotal int64
		for _, s := range species {
			n := totals[d][s]
			dayTotal += n
			if n > 0 {
				values = append(values, barchart.BarValue{Name: s, Value: float64(n), Style: styles[s]})
			}
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "none", Value: 0, Style: helpStyle}}
		}
		peak = max(peak, dayTotal)
		bc.Push(barchart.BarData{Label: "", Values: values})
	}
	bc.Draw()

	legend := make([]string, 0, len(species)+2)
	for _, s := range species {
		var sum int64
		for _, d := range dates {
			sum += totals[d][s]
		}
		legend = append(legend, lipgloss.NewStyle().Foreground(styles[s].GetForeground()).Render(fmt.Sprintf("%-10s%6d", s, sum)))
	}
	legend = append(legend, helpStyle.Render(strings.Repeat("─", 16)), fmt.Sprintf("%-10s%6d", "peak/day", peak))

	axis := helpStyle.Render(fmt.Sprintf("%s%s%s",
		dates[0].Format("02 Jan"),
		strings.Repeat(" ", max(1, width-12)),
		dates[len(dates)-1].Format("02 Jan")))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, bc.View(), axis),
		"  ",
		strings.Join(legend, "\n"))
}

func (p *OverviewPage) renderCounts() string {
	names := []string{"suppliers", "animals", "carcasses"}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s %s", titleStyle.Render(fmt.Sprint(p.counts[n])), helpStyle.Render(n)))
	}
	return strings.Join(parts, "   ")
}
