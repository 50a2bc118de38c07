package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/yardline/yardline/internal/model"
)

// formParams opens a record form. A zero ID creates a new record.
type formParams struct {
	ID       int64
	ReturnTo string
}

type fieldSpec struct {
	label       string
	placeholder string
	limit       int
}

type formField struct {
	label string
	input textinput.Model
}

// form is a vertical list of text inputs with one focused field.
type form struct {
	fields []formField
	focus  int
	keys   KeyMap
}

func newForm(keys KeyMap, specs ...fieldSpec) *form {
	f := &form{keys: keys}
	for _, s := range specs {
		in := textinput.New()
		in.Placeholder = s.placeholder
		in.Prompt = ""
		in.CharLimit = s.limit
		if in.CharLimit == 0 {
			in.CharLimit = 64
		}
		in.Width = 32
		f.fields = append(f.fields, formField{label: s.label, input: in})
	}
	return f
}

func (f *form) value(i int) string { return strings.TrimSpace(f.fields[i].input.Value()) }

func (f *form) set(i int, v string) { f.fields[i].input.SetValue(v) }

// reset clears every field and focuses the first.
func (f *form) reset() tea.Cmd {
	for i := range f.fields {
		f.fields[i].input.SetValue("")
		f.fields[i].input.Blur()
	}
	f.focus = 0
	return f.fields[0].input.Focus()
}

func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

// update routes a key. submit is true when the user asked to save, either
// with the save key or enter on the last field.
func (f *form) update(msg tea.KeyMsg) (cmd tea.Cmd, submit bool) {
	switch {
	case key.Matches(msg, f.keys.Save):
		return nil, true
	case msg.Type == tea.KeyEnter:
		if f.focus == len(f.fields)-1 {
			return nil, true
		}
		return f.move(1), false
	case key.Matches(msg, f.keys.NextField):
		return f.move(1), false
	case key.Matches(msg, f.keys.PrevField):
		return f.move(-1), false
	}
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd, false
}

func (f *form) view() string {
	labelWidth := 0
	for _, fl := range f.fields {
		labelWidth = max(labelWidth, len(fl.label))
	}
	lines := make([]string, 0, len(f.fields))
	for i, fl := range f.fields {
		label := fmt.Sprintf("%-*s", labelWidth, fl.label)
		if i == f.focus {
			label = titleStyle.Render(label)
		} else {
			label = helpStyle.Render(label)
		}
		lines = append(lines, label+"  "+fl.input.View())
	}
	return strings.Join(lines, "\n")
}

type formLoadedMsg[T any] struct {
	page  string
	seq   uint64
	value T
	err   error
}

func (m formLoadedMsg[T]) target() string { return m.page }

type formSavedMsg struct {
	page string
	text string
	err  error
}

func (m formSavedMsg) target() string { return m.page }

// formPage carries the lifecycle shared by the record forms: optional
// preload, save as a command, and navigation back to the calling list.
type formPage struct {
	id       string
	title    string
	heading  string
	form     *form
	keys     KeyMap
	timeout  time.Duration
	returnTo string
	seq      uint64
	loading  bool
	saving   bool
	err      string
}

func (p *formPage) ID() string          { return p.id }
func (p *formPage) Title() string       { return p.title }
func (p *formPage) Init() tea.Cmd       { return nil }
func (p *formPage) Loading() bool       { return p.loading || p.saving }
func (p *formPage) CapturesInput() bool { return true }

func (p *formPage) begin(returnTo, heading string) tea.Cmd {
	p.seq++
	p.returnTo = returnTo
	p.heading = heading
	p.loading = false
	p.saving = false
	p.err = ""
	return p.form.reset()
}

func (p *formPage) back(mutated bool) *PageNav {
	return &PageNav{PageID: p.returnTo, Params: ReturnParams{Mutated: mutated}}
}

func (p *formPage) run(fn func(ctx context.Context) error, text string) tea.Cmd {
	p.saving = true
	p.err = ""
	id, timeout := p.id, p.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return formSavedMsg{page: id, text: text, err: fn(ctx)}
	}
}

// handle covers the messages every form treats the same and reports whether
// the user asked to save.
func (p *formPage) handle(msg tea.Msg) (cmd tea.Cmd, nav *PageNav, submit bool) {
	switch msg := msg.(type) {
	case formSavedMsg:
		if msg.page != p.id {
			return nil, nil, false
		}
		p.saving = false
		if msg.err != nil {
			p.err = msg.err.Error()
			return nil, nil, false
		}
		return toastCmd(ToastSuccess, msg.text), p.back(true), false

	case tea.KeyMsg:
		if key.Matches(msg, p.keys.Escape) {
			return nil, p.back(false), false
		}
		if p.loading || p.saving {
			return nil, nil, false
		}
		cmd, submit := p.form.update(msg)
		return cmd, nil, submit
	}
	return nil, nil, false
}

func (p *formPage) View(width, height int) string {
	var status string
	switch {
	case p.loading:
		status = helpStyle.Render("Loading...")
	case p.saving:
		status = helpStyle.Render("Saving...")
	case p.err != "":
		status = errorStyle.Render(p.err)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(p.heading),
		"",
		p.form.view(),
		"",
		status,
		helpStyle.Render("tab/↓ next · shift+tab/↑ prev · enter on last field or ctrl+s save · esc cancel"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		sectionStyle.Render(body))
}

func parsePositiveDecimal(label, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be a positive number", model.ErrInvalid, label)
	}
	return d, nil
}
