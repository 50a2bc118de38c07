package viewctl

import "time"

const (
	// ScrollEpsilon absorbs rounding at the right edge of a viewport.
	ScrollEpsilon = 1
	// RemeasureDelay is how long after a collection change the host should
	// deliver the re-measurement, so the new content width is known.
	RemeasureDelay = 50 * time.Millisecond
)

// Metrics are the three viewport measurements the tracker reads.
type Metrics struct {
	ScrollLeft  int // current horizontal offset
	ScrollWidth int // full content width
	ClientWidth int // visible width
}

// Affordance tells the renderer which directions can still be scrolled.
type Affordance struct {
	CanScrollLeft  bool
	CanScrollRight bool
}

// ComputeAffordance derives the affordance from viewport metrics.
func ComputeAffordance(m Metrics) Affordance {
	return Affordance{
		CanScrollLeft:  m.ScrollLeft > 0,
		CanScrollRight: m.ScrollLeft < m.ScrollWidth-m.ClientWidth-ScrollEpsilon,
	}
}

// RemeasureToken identifies one scheduled re-measurement. The zero token is
// never issued.
type RemeasureToken uint64

// ScrollTracker keeps the horizontal scroll affordance of a wide table.
type ScrollTracker struct {
	aff      Affordance
	seq      uint64
	pending  RemeasureToken
	disposed bool
}

// NewScrollTracker returns a tracker with no affordance in either direction.
func NewScrollTracker() *ScrollTracker {
	return &ScrollTracker{}
}

// Affordance returns the last computed affordance.
func (t *ScrollTracker) Affordance() Affordance { return t.aff }

// Disposed reports whether Dispose was called.
func (t *ScrollTracker) Disposed() bool { return t.disposed }

// OnScroll recomputes the affordance from fresh metrics.
func (t *ScrollTracker) OnScroll(m Metrics) Affordance {
	if t.disposed {
		return t.aff
	}
	t.aff = ComputeAffordance(m)
	return t.aff
}

// OnCollectionChanged schedules one re-measurement and returns its token.
// A newer call supersedes any measurement still pending. After Dispose it
// returns the zero token.
func (t *ScrollTracker) OnCollectionChanged() RemeasureToken {
	if t.disposed {
		return 0
	}
	t.seq++
	t.pending = RemeasureToken(t.seq)
	return t.pending
}

// Remeasure applies the measurement scheduled under tok. Superseded tokens
// and deliveries after Dispose are ignored and report false.
func (t *ScrollTracker) Remeasure(tok RemeasureToken, m Metrics) bool {
	if t.disposed || tok == 0 || tok != t.pending {
		return false
	}
	t.pending = 0
	t.aff = ComputeAffordance(m)
	return true
}

// Pending reports whether a re-measurement is outstanding.
func (t *ScrollTracker) Pending() bool { return t.pending != 0 }

// Dispose detaches the tracker; pending re-measurements become no-ops.
func (t *ScrollTracker) Dispose() {
	t.disposed = true
	t.pending = 0
}

// Revive re-attaches a disposed tracker, e.g. when its view is shown again.
func (t *ScrollTracker) Revive() {
	t.disposed = false
}

// Hint texts returned by DescribeAffordance.
const (
	HintBoth  = "← scroll for more columns →"
	HintLeft  = "← more columns to the left"
	HintRight = "more columns to the right →"
	HintNone  = "all columns visible"
)

// DescribeAffordance maps an affordance to a user-facing hint.
func DescribeAffordance(a Affordance) string {
	switch {
	case a.CanScrollLeft && a.CanScrollRight:
		return HintBoth
	case a.CanScrollLeft:
		return HintLeft
	case a.CanScrollRight:
		return HintRight
	default:
		return HintNone
	}
}
