package logic

import "time"

// DefaultDebounce is the settle time used when none is configured.
const DefaultDebounce = 50 * time.Millisecond

// DebounceFilter turns a bouncing raw level into a stable one.
// The stable level only moves after the raw level has held for the window.
type DebounceFilter struct {
	window    time.Duration
	activeLow bool
	edge      Edge

	// Whether the first sample has been seen
	baselined bool
	// Last committed raw level
	stable bool
	// Raw level seen on the previous poll
	observed bool
	// Time the observed level was first seen
	pendingSince time.Time
}

// NewDebounceFilter creates a filter. With activeLow a low raw level means
// pressed, which is the pull-up wiring convention.
func NewDebounceFilter(window time.Duration, activeLow bool, edge Edge) *DebounceFilter {
	if edge == "" {
		edge = EdgePress
	}
	return &DebounceFilter{
		window:    window,
		activeLow: activeLow,
		edge:      edge,
	}
}

// sample feeds one raw reading and reports whether the active edge was committed.
func (f *DebounceFilter) sample(raw bool, now time.Time) bool {
	// The first reading is the baseline, whatever the wiring holds at boot.
	if !f.baselined {
		f.baselined = true
		f.stable = raw
		f.observed = raw
		f.pendingSince = now
		return false
	}

	if raw != f.observed {
		f.observed = raw
		f.pendingSince = now
	}

	if f.observed == f.stable || now.Sub(f.pendingSince) < f.window {
		return false
	}

	from := f.stable
	f.stable = f.observed
	return f.isActiveEdge(from, f.stable)
}

func (f *DebounceFilter) pressed(raw bool) bool {
	if f.activeLow {
		return !raw
	}
	return raw
}

func (f *DebounceFilter) isActiveEdge(from, to bool) bool {
	if f.edge == EdgeRelease {
		return f.pressed(from) && !f.pressed(to)
	}
	return !f.pressed(from) && f.pressed(to)
}

// EdgeCounter counts debounced press edges of a single button.
type EdgeCounter struct {
	filter *DebounceFilter
	count  int
}

// NewEdgeCounter creates a counter fed through the given filter.
func NewEdgeCounter(filter *DebounceFilter) *EdgeCounter {
	return &EdgeCounter{filter: filter}
}

// Poll samples the raw level at now. It returns true when this sample
// committed an active edge, in which case the count went up by exactly one.
// Timestamps must be monotonic.
func (c *EdgeCounter) Poll(raw bool, now time.Time) bool {
	if !c.filter.sample(raw, now) {
		return false
	}
	c.count++
	return true
}

// Count returns the current edge count.
func (c *EdgeCounter) Count() int {
	return c.count
}

// ResetCount sets the count to zero. Debounce state is untouched.
func (c *EdgeCounter) ResetCount() {
	c.count = 0
}

// wrap reduces the count modulo n, keeping the presses beyond the last full cycle.
func (c *EdgeCounter) wrap(n int) {
	if c.count%n == 0 {
		c.ResetCount()
		return
	}
	c.count %= n
}

// Baselined reports whether the first sample has been taken.
func (c *EdgeCounter) Baselined() bool {
	return c.filter.baselined
}

// Pressed reports whether the debounced button is currently held.
func (c *EdgeCounter) Pressed() bool {
	return c.filter.baselined && c.filter.pressed(c.filter.stable)
}
