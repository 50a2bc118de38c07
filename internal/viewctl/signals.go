package viewctl

// Signal identifies an environment event a view can subscribe to.
type Signal int

const (
	SignalVisible Signal = iota // view became visible again
	SignalHidden                // view was covered or suspended
	SignalFocus                 // host window regained input focus
)

func (s Signal) String() string {
	switch s {
	case SignalVisible:
		return "visible"
	case SignalHidden:
		return "hidden"
	case SignalFocus:
		return "focus"
	default:
		return "unknown"
	}
}

type subscription struct {
	id uint64
	fn func()
}

// Signals is the host-side event hub. The host emits environment events into
// it and views subscribe for the span of their lifetime.
//
// Signals is not safe for concurrent use; it is driven from the host's event
// loop like everything else in this package.
type Signals struct {
	nextID uint64
	subs   map[Signal][]subscription
}

// NewSignals creates an empty hub.
func NewSignals() *Signals {
	return &Signals{subs: make(map[Signal][]subscription)}
}

// Subscribe registers fn for kind and returns a function that removes it.
// The returned function is idempotent.
func (h *Signals) Subscribe(kind Signal, fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	h.nextID++
	id := h.nextID
	h.subs[kind] = append(h.subs[kind], subscription{id: id, fn: fn})

	return func() {
		list := h.subs[kind]
		for i, s := range list {
			if s.id == id {
				h.subs[kind] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every handler subscribed to kind, in subscription order.
// Handlers may subscribe or unsubscribe while being called; the set of
// handlers invoked is the one registered when Emit started.
func (h *Signals) Emit(kind Signal) {
	list := append([]subscription(nil), h.subs[kind]...)
	for _, s := range list {
		s.fn()
	}
}

// Len reports how many handlers are subscribed to kind.
func (h *Signals) Len(kind Signal) int {
	return len(h.subs[kind])
}

// ReturnFlag is a one-shot marker that the user came back from a flow that
// may have changed the data (an edit form, a detail screen).
type ReturnFlag struct {
	set bool
}

// Set arms the flag.
func (f *ReturnFlag) Set() { f.set = true }

// Pending reports whether the flag is armed without clearing it.
func (f *ReturnFlag) Pending() bool { return f.set }

// Consume reports whether the flag was armed and clears it.
func (f *ReturnFlag) Consume() bool {
	was := f.set
	f.set = false
	return was
}
