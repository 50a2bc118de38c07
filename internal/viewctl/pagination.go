// Package viewctl holds the state and timing logic behind list views:
// pagination, refresh scheduling, scroll affordance and the row menu slot.
package viewctl

// DefaultPerPage is used when a pagination is created with a non-positive page size.
const DefaultPerPage = 10

// PaginationState is a snapshot of the pagination bookkeeping.
// TotalPages is always ceil(TotalItems/PerPage) and CurrentPage stays within
// [1, max(TotalPages, 1)].
type PaginationState struct {
	CurrentPage int
	PerPage     int
	TotalItems  int
	TotalPages  int
}

// Pagination slices an in-memory collection into pages. It never errors:
// out-of-range requests are ignored.
//
// When the collection shrinks so that the current page no longer exists
// (typically after deleting the last rows of the last page), the view
// returns to page 1. The same landing page is used by SetPerPage, so every
// transition that invalidates the current offset ends on page 1.
type Pagination struct {
	state PaginationState
}

// NewPagination creates an empty pagination with the given page size.
func NewPagination(perPage int) *Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Pagination{state: PaginationState{CurrentPage: 1, PerPage: perPage}}
}

func pageCount(items, perPage int) int {
	if items <= 0 {
		return 0
	}
	return (items + perPage - 1) / perPage
}

// State returns a copy of the current state.
func (p *Pagination) State() PaginationState { return p.state }

func (p *Pagination) CurrentPage() int { return p.state.CurrentPage }
func (p *Pagination) PerPage() int     { return p.state.PerPage }
func (p *Pagination) TotalItems() int  { return p.state.TotalItems }
func (p *Pagination) TotalPages() int  { return p.state.TotalPages }

// SetPerPage changes the page size and resets to the first page.
// Non-positive sizes are ignored.
func (p *Pagination) SetPerPage(n int) {
	if n <= 0 {
		return
	}
	p.state.PerPage = n
	p.state.TotalPages = pageCount(p.state.TotalItems, n)
	p.state.CurrentPage = 1
}

// SetPage moves to page pg if 1 <= pg <= TotalPages. It reports whether the
// current page changed; requests outside that range are dropped.
func (p *Pagination) SetPage(pg int) bool {
	if pg < 1 || pg > p.state.TotalPages {
		return false
	}
	changed := pg != p.state.CurrentPage
	p.state.CurrentPage = pg
	return changed
}

func (p *Pagination) NextPage() bool  { return p.SetPage(p.state.CurrentPage + 1) }
func (p *Pagination) PrevPage() bool  { return p.SetPage(p.state.CurrentPage - 1) }
func (p *Pagination) FirstPage() bool { return p.SetPage(1) }
func (p *Pagination) LastPage() bool  { return p.SetPage(p.state.TotalPages) }

// OnCollectionSizeChanged recomputes the page count for a collection of n
// items. If the current page fell off the end it resets to page 1.
func (p *Pagination) OnCollectionSizeChanged(n int) {
	if n < 0 {
		n = 0
	}
	p.state.TotalItems = n
	p.state.TotalPages = pageCount(n, p.state.PerPage)
	if p.state.CurrentPage > max(p.state.TotalPages, 1) {
		p.state.CurrentPage = 1
	}
}

// Bounds returns the [start, end) offsets of the current page within a
// collection of n items. Both offsets are clamped to [0, n].
func (p *Pagination) Bounds(n int) (start, end int) {
	if n <= 0 {
		return 0, 0
	}
	start = min((p.state.CurrentPage-1)*p.state.PerPage, n)
	end = min(start+p.state.PerPage, n)
	return start, end
}

// VisibleSlice returns the rows of the current page. The result shares the
// backing array with items but its capacity is capped, so appends never
// write into the caller's collection.
func VisibleSlice[T any](p *Pagination, items []T) []T {
	start, end := p.Bounds(len(items))
	return items[start:end:end]
}
