package viewctl

import "time"

// DefaultRefreshInterval is used when a scheduler is created without a
// positive interval.
const DefaultRefreshInterval = 30 * time.Second

// RefreshFunc re-fetches a view's collection with the given arguments.
// Its errors belong to the caller; the scheduler never sees them.
type RefreshFunc[A any] func(args A)

// RefreshSchedule is the time-based gate shared by the focus and visibility
// triggers.
type RefreshSchedule struct {
	LastRefreshAt time.Time
	Interval      time.Duration
}

// Due reports whether more than Interval has elapsed since the last refresh.
func (r RefreshSchedule) Due(now time.Time) bool {
	return now.Sub(r.LastRefreshAt) > r.Interval
}

type schedulerConfig struct {
	clock   Clock
	visible bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*schedulerConfig)

// WithClock sets the time source.
func WithClock(c Clock) SchedulerOption {
	return func(cfg *schedulerConfig) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithInitialVisibility sets whether the view starts out visible (default true).
func WithInitialVisibility(visible bool) SchedulerOption {
	return func(cfg *schedulerConfig) { cfg.visible = visible }
}

// Scheduler decides when a view's collection should be silently re-fetched.
// Four triggers funnel into one issue path:
//
//   - visibility regained: refresh if due
//   - focus regained: refresh if due
//   - navigation return: refresh unconditionally, once per armed ReturnFlag
//   - interval tick: refresh if the view is currently visible
//
// Subscriptions and the timer generation live between Mount and Unmount.
// Anything delivered outside that window is dropped.
type Scheduler[A any] struct {
	clock    Clock
	schedule RefreshSchedule
	refresh  RefreshFunc[A]
	args     A

	visible bool
	mounted bool
	gen     uint64
	unsubs  []func()
	issued  int
}

// NewScheduler creates a scheduler whose LastRefreshAt starts at now.
func NewScheduler[A any](interval time.Duration, refresh RefreshFunc[A], opts ...SchedulerOption) *Scheduler[A] {
	cfg := schedulerConfig{clock: SystemClock, visible: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Scheduler[A]{
		clock:    cfg.clock,
		schedule: RefreshSchedule{LastRefreshAt: cfg.clock.Now(), Interval: interval},
		refresh:  refresh,
		visible:  cfg.visible,
	}
}

// SetRefresh replaces the refresh callback. Subscriptions resolve the
// callback at call time, so no re-subscription is needed.
func (s *Scheduler[A]) SetRefresh(fn RefreshFunc[A]) { s.refresh = fn }

// SetArgs replaces the argument list passed to the refresh callback.
func (s *Scheduler[A]) SetArgs(args A) { s.args = args }

func (s *Scheduler[A]) Args() A { return s.args }

// SetInterval changes the due window and the tick period.
func (s *Scheduler[A]) SetInterval(d time.Duration) {
	if d > 0 {
		s.schedule.Interval = d
	}
}

func (s *Scheduler[A]) Interval() time.Duration   { return s.schedule.Interval }
func (s *Scheduler[A]) LastRefreshAt() time.Time  { return s.schedule.LastRefreshAt }
func (s *Scheduler[A]) Schedule() RefreshSchedule { return s.schedule }
func (s *Scheduler[A]) Mounted() bool             { return s.mounted }
func (s *Scheduler[A]) Visible() bool             { return s.visible }
func (s *Scheduler[A]) Generation() uint64        { return s.gen }
func (s *Scheduler[A]) Issued() int               { return s.issued }
func (s *Scheduler[A]) Due() bool                 { return s.schedule.Due(s.clock.Now()) }

// Mount subscribes to the hub and starts a new timer generation, which the
// host threads through its tick messages. Mounting an already mounted
// scheduler releases the previous subscriptions first.
func (s *Scheduler[A]) Mount(hub *Signals) uint64 {
	s.Unmount()
	s.mounted = true
	s.gen++
	if hub != nil {
		s.unsubs = append(s.unsubs,
			hub.Subscribe(SignalVisible, s.onVisible),
			hub.Subscribe(SignalHidden, s.onHidden),
			hub.Subscribe(SignalFocus, s.onFocus),
		)
	}
	return s.gen
}

// Unmount releases every subscription and invalidates the timer generation.
func (s *Scheduler[A]) Unmount() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	if s.mounted {
		s.gen++
	}
	s.mounted = false
}

func (s *Scheduler[A]) onVisible() {
	s.visible = true
	s.issueIfDue()
}

func (s *Scheduler[A]) onHidden() {
	s.visible = false
}

func (s *Scheduler[A]) onFocus() {
	s.issueIfDue()
}

// OnVisibilityChange feeds a visibility transition directly, for hosts that
// do not route through a Signals hub.
func (s *Scheduler[A]) OnVisibilityChange(visible bool) bool {
	if !s.mounted {
		return false
	}
	if !visible {
		s.onHidden()
		return false
	}
	s.visible = true
	return s.issueIfDue()
}

// OnFocus feeds a focus-regained event directly.
func (s *Scheduler[A]) OnFocus() bool {
	if !s.mounted {
		return false
	}
	return s.issueIfDue()
}

// ConsumeReturn fires one refresh if flag is armed, bypassing the due check,
// and clears the flag. An unmounted scheduler leaves the flag armed for the
// next mount.
func (s *Scheduler[A]) ConsumeReturn(flag *ReturnFlag) bool {
	if flag == nil || !s.mounted || !flag.Consume() {
		return false
	}
	s.issue()
	return true
}

// OnTick handles an interval tick from timer generation gen. Ticks from a
// previous mount, or while the view is hidden, do nothing.
func (s *Scheduler[A]) OnTick(gen uint64) bool {
	if !s.mounted || gen != s.gen || !s.visible {
		return false
	}
	s.issue()
	return true
}

// TickAlive reports whether a tick chain of generation gen should keep
// re-arming itself.
func (s *Scheduler[A]) TickAlive(gen uint64) bool {
	return s.mounted && gen == s.gen
}

// Force issues a refresh now regardless of the schedule. Used for the
// initial load and explicit user requests.
func (s *Scheduler[A]) Force() {
	s.issue()
}

func (s *Scheduler[A]) issueIfDue() bool {
	if !s.Due() {
		return false
	}
	s.issue()
	return true
}

func (s *Scheduler[A]) issue() {
	s.schedule.LastRefreshAt = s.clock.Now()
	s.issued++
	if s.refresh != nil {
		s.refresh(s.args)
	}
}
