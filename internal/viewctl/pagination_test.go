package viewctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPagination_TotalPagesAndBounds(t *testing.T) {
	t.Parallel()

	for _, perPage := range []int{1, 3, 10, 25} {
		for items := 0; items <= 60; items++ {
			p := NewPagination(perPage)
			p.OnCollectionSizeChanged(items)

			want := (items + perPage - 1) / perPage
			require.Equal(t, want, p.TotalPages(), "items=%d perPage=%d", items, perPage)

			cur := p.CurrentPage()
			assert.GreaterOrEqual(t, cur, 1)
			assert.LessOrEqual(t, cur, max(p.TotalPages(), 1))
		}
	}
}

func TestPagination_DefaultsForInvalidPerPage(t *testing.T) {
	t.Parallel()

	p := NewPagination(0)
	assert.Equal(t, DefaultPerPage, p.PerPage())
	assert.Equal(t, 1, p.CurrentPage())
	assert.Equal(t, 0, p.TotalPages())
}

func TestPagination_SetPerPageResetsToFirstPage(t *testing.T) {
	t.Parallel()

	p := NewPagination(10)
	p.OnCollectionSizeChanged(95)
	require.True(t, p.SetPage(7))

	p.SetPerPage(20)
	assert.Equal(t, 1, p.CurrentPage())
	assert.Equal(t, 5, p.TotalPages())

	require.True(t, p.SetPage(3))
	p.SetPerPage(20)
	assert.Equal(t, 1, p.CurrentPage(), "same size still resets")

	p.SetPerPage(0)
	p.SetPerPage(-4)
	assert.Equal(t, 20, p.PerPage(), "non-positive sizes are ignored")
}

func TestPagination_SetPageRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	p := NewPagination(10)
	p.OnCollectionSizeChanged(23)
	require.Equal(t, 3, p.TotalPages())

	assert.False(t, p.SetPage(0))
	assert.False(t, p.SetPage(4))
	assert.False(t, p.SetPage(-1))
	assert.Equal(t, 1, p.CurrentPage())

	assert.True(t, p.SetPage(3))
	assert.False(t, p.SetPage(3), "same page is not a change")
	assert.False(t, p.NextPage())
	assert.Equal(t, 3, p.CurrentPage())

	assert.True(t, p.PrevPage())
	assert.True(t, p.FirstPage())
	assert.False(t, p.PrevPage())
	assert.True(t, p.LastPage())
	assert.Equal(t, 3, p.CurrentPage())
}

func TestPagination_SetPageOnEmptyCollection(t *testing.T) {
	t.Parallel()

	p := NewPagination(10)
	p.OnCollectionSizeChanged(0)
	assert.False(t, p.SetPage(1), "no pages exist")
	assert.Equal(t, 1, p.CurrentPage())
	assert.Empty(t, VisibleSlice(p, []int{}))
}

func TestPagination_ShrinkAfterDeletion(t *testing.T) {
	t.Parallel()

	p := NewPagination(10)
	p.OnCollectionSizeChanged(23)
	require.True(t, p.SetPage(3))

	// Removing one of the three rows on page 3 keeps the page.
	p.OnCollectionSizeChanged(22)
	assert.Equal(t, 3, p.TotalPages())
	assert.Equal(t, 3, p.CurrentPage())

	// Page 3 disappears entirely: back to the first page.
	p.OnCollectionSizeChanged(20)
	assert.Equal(t, 2, p.TotalPages())
	assert.Equal(t, 1, p.CurrentPage())
}

func TestPagination_ShrinkToEmpty(t *testing.T) {
	t.Parallel()

	p := NewPagination(5)
	p.OnCollectionSizeChanged(12)
	require.True(t, p.SetPage(3))

	p.OnCollectionSizeChanged(0)
	assert.Equal(t, 0, p.TotalPages())
	assert.Equal(t, 1, p.CurrentPage())

	p.OnCollectionSizeChanged(-3)
	assert.Equal(t, 0, p.TotalItems())
}

func TestPagination_GrowKeepsPage(t *testing.T) {
	t.Parallel()

	p := NewPagination(10)
	p.OnCollectionSizeChanged(30)
	require.True(t, p.SetPage(2))

	p.OnCollectionSizeChanged(45)
	assert.Equal(t, 2, p.CurrentPage())
	assert.Equal(t, 5, p.TotalPages())
}

func TestVisibleSlice_Lengths(t *testing.T) {
	t.Parallel()

	items := seq(23)
	p := NewPagination(10)
	p.OnCollectionSizeChanged(len(items))

	for page := 1; page <= p.TotalPages(); page++ {
		p.SetPage(page)
		got := VisibleSlice(p, items)
		if page < p.TotalPages() {
			assert.Len(t, got, 10)
		} else {
			assert.Len(t, got, len(items)-(p.TotalPages()-1)*10)
		}
		assert.Equal(t, (page-1)*10, got[0])
	}
}

func TestVisibleSlice_DoesNotAliasOnAppend(t *testing.T) {
	t.Parallel()

	items := seq(10)
	p := NewPagination(4)
	p.OnCollectionSizeChanged(len(items))

	page := VisibleSlice(p, items)
	_ = append(page, 99)
	assert.Equal(t, 4, items[4])
}

func TestVisibleSlice_StaleStateIsBounded(t *testing.T) {
	t.Parallel()

	p := NewPagination(10)
	p.OnCollectionSizeChanged(40)
	require.True(t, p.SetPage(4))

	// The host passes a shorter collection before reporting the new size.
	assert.Empty(t, VisibleSlice(p, seq(12)))
	assert.Len(t, VisibleSlice(p, seq(35)), 5)
}
