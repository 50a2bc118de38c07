package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const (
	columnGap   = 2
	scrollStep  = 8
	cursorGlyph = "›"
)

// Column is one fixed-width table column.
type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// table renders rows as fixed-width columns inside a horizontally
// scrollable window.
type table[T any] struct {
	columns []Column[T]
	offset  int
}

// contentWidth is the full width of a rendered line, cursor gutter included.
func (t *table[T]) contentWidth() int {
	w := runewidth.StringWidth(cursorGlyph) + 1
	for i, c := range t.columns {
		if i > 0 {
			w += columnGap
		}
		w += c.Width
	}
	return w
}

func (t *table[T]) clampOffset(clientWidth int) {
	t.offset = max(0, min(t.offset, t.contentWidth()-clientWidth))
}

// scroll moves the window by delta columns and reports whether it moved.
func (t *table[T]) scroll(delta, clientWidth int) bool {
	before := t.offset
	t.offset += delta
	t.clampOffset(clientWidth)
	return t.offset != before
}

func cell(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func (t *table[T]) line(values []string, cursor bool) string {
	var b strings.Builder
	if cursor {
		b.WriteString(cursorGlyph + " ")
	} else {
		b.WriteString(strings.Repeat(" ", runewidth.StringWidth(cursorGlyph)+1))
	}
	for i, c := range t.columns {
		if i > 0 {
			b.WriteString(strings.Repeat(" ", columnGap))
		}
		b.WriteString(cell(values[i], c.Width))
	}
	return b.String()
}

// window cuts the visible part of a plain line and pads it to clientWidth.
func (t *table[T]) window(plain string, clientWidth int) string {
	seg := ansi.Cut(plain, t.offset, t.offset+clientWidth)
	if w := ansi.StringWidth(seg); w < clientWidth {
		seg += strings.Repeat(" ", clientWidth-w)
	}
	return seg
}

// render draws the header and rows. rowStyle may be nil.
func (t *table[T]) render(rows []T, cursor, clientWidth int, rowStyle func(T) lipgloss.Style) string {
	titles := make([]string, len(t.columns))
	for i, c := range t.columns {
		titles[i] = c.Title
	}
	lines := []string{headerCellStyle.Render(t.window(t.line(titles, false), clientWidth))}

	values := make([]string, len(t.columns))
	for i, row := range rows {
		for j, c := range t.columns {
			values[j] = c.Value(row)
		}
		text := t.window(t.line(values, i == cursor), clientWidth)
		switch {
		case i == cursor:
			text = selectedRow.Render(text)
		case rowStyle != nil:
			text = rowStyle(row).Render(text)
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, "\n")
}
