package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	maxToasts = 3
	toastTTL  = 4 * time.Second
)

// ToastLevel selects the toast color.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

// ToastMsg asks the app to show a toast.
type ToastMsg struct {
	Level ToastLevel
	Text  string
}

type toastExpiredMsg struct {
	id uint64
}

type toast struct {
	id    uint64
	level ToastLevel
	text  string
}

// Toasts is a bounded queue of auto-dismissing notifications. The oldest
// toast is dropped when a new one would exceed the limit.
type Toasts struct {
	nextID uint64
	items  []toast
	ttl    time.Duration
}

func newToasts() *Toasts {
	return &Toasts{ttl: toastTTL}
}

// Push adds a toast and returns the command that expires it.
func (t *Toasts) Push(level ToastLevel, text string) tea.Cmd {
	t.nextID++
	id := t.nextID
	t.items = append(t.items, toast{id: id, level: level, text: text})
	if len(t.items) > maxToasts {
		t.items = t.items[len(t.items)-maxToasts:]
	}
	return tea.Tick(t.ttl, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

// Expire removes the toast with the given id, if still shown.
func (t *Toasts) Expire(id uint64) {
	for i, it := range t.items {
		if it.id == id {
			t.items = append(t.items[:i:i], t.items[i+1:]...)
			return
		}
	}
}

func (t *Toasts) Len() int { return len(t.items) }

// Texts returns the visible toast texts, oldest first.
func (t *Toasts) Texts() []string {
	out := make([]string, len(t.items))
	for i, it := range t.items {
		out[i] = it.text
	}
	return out
}

func (t *Toasts) View(width int) string {
	if len(t.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.items))
	for _, it := range t.items {
		color := ColorBlue
		switch it.level {
		case ToastSuccess:
			color = ColorGreen
		case ToastError:
			color = ColorRed
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Foreground(color).
			Padding(0, 1).
			MaxWidth(max(20, width/2)).
			Render(it.text)
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, box))
	}
	return strings.Join(lines, "\n")
}

func toastCmd(level ToastLevel, text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Level: level, Text: text} }
}

func errorToast(err error) tea.Cmd {
	return toastCmd(ToastError, err.Error())
}
