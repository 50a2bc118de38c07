package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

type pair struct{ a, b string }

func testTable() table[pair] {
	return table[pair]{columns: []Column[pair]{
		{Title: "A", Width: 4, Value: func(p pair) string { return p.a }},
		{Title: "B", Width: 6, Value: func(p pair) string { return p.b }},
	}}
}

func TestTable_ContentWidth(t *testing.T) {
	tb := testTable()
	assert.Equal(t, 2+4+columnGap+6, tb.contentWidth())
}

func TestTable_ScrollClamps(t *testing.T) {
	tb := testTable()
	assert.False(t, tb.scroll(-5, 8))
	assert.True(t, tb.scroll(100, 8))
	assert.Equal(t, tb.contentWidth()-8, tb.offset)

	tb.offset = 0
	assert.False(t, tb.scroll(1, 40), "content fits")
	assert.Zero(t, tb.offset)
}

func TestTable_CellTruncatesAndPads(t *testing.T) {
	assert.Equal(t, "ab  ", cell("ab", 4))
	assert.Equal(t, "abc…", cell("abcdef", 4))
	assert.Equal(t, "a b ", cell("a\nb", 4))
}

func TestTable_RenderWindow(t *testing.T) {
	tb := testTable()
	rows := []pair{{"x", "yy"}, {"long-value", "z"}}

	out := ansi.Strip(tb.render(rows, 1, 40, nil))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], cursorGlyph+" "))
	assert.Contains(t, lines[2], "lon…")

	tb.offset = 8
	out = ansi.Strip(tb.render(rows, -1, 6, nil))
	for _, l := range strings.Split(out, "\n") {
		assert.Equal(t, 6, ansi.StringWidth(l))
	}
}
