package logic

import "time"

// Settings configures the input side of a Controller.
type Settings struct {
	Debounce  time.Duration
	ActiveLow bool
	Edge      Edge
}

// Controller owns the whole per-iteration pipeline: debounce, count, and the
// speed machine. It is not safe for concurrent use.
type Controller struct {
	counter       *EdgeCounter
	machine       *SpeedMachine
	startTime     time.Time
	counts        Counts
	applied       SpeedLevel
	appliedSet    bool
	lastHeartbeat time.Time
}

// NewController creates a controller with the given input settings and table.
// The startTime is used for calculating uptime in heartbeat events.
func NewController(s Settings, levels Levels, startTime time.Time) *Controller {
	return &Controller{
		counter:       NewEdgeCounter(NewDebounceFilter(s.Debounce, s.ActiveLow, s.Edge)),
		machine:       NewSpeedMachine(levels),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Step polls the button with one sample then ticks the speed machine.
// It returns the event to apply, or nil when the speed did not change.
// The event only counts once the caller reports it with Applied.
func (c *Controller) Step(input Input) *Event {
	if c.counter.Poll(input.Raw, input.Time) {
		c.counts.Presses++
	}

	level, changed := c.machine.Tick(c.counter)
	if !changed {
		return nil
	}

	event := &Event{
		Timestamp: input.Time,
		Type:      EventSpeedChange,
		Level:     level,
		Presses:   c.counts.Presses,
	}
	if c.appliedSet {
		event.Previous = c.applied.Label
	}
	return event
}

// Applied records that the output now runs at the event's level. Rewriting
// the level already applied is not a change.
func (c *Controller) Applied(e Event) {
	if !c.appliedSet || c.applied.Index != e.Level.Index {
		c.counts.Changes++
	}
	c.applied = e.Level
	c.appliedSet = true
}

// Forget makes the next Step re-apply the machine's level. Call it when the
// output could not be driven so the write is retried; the last applied level
// stays current.
func (c *Controller) Forget() {
	c.machine.Forget()
}

// IsBaselined returns whether the button baseline has been taken.
func (c *Controller) IsBaselined() bool {
	return c.counter.Baselined()
}

// Pressed reports whether the debounced button is held.
func (c *Controller) Pressed() bool {
	return c.counter.Pressed()
}

// CurrentLevel returns the last level the output was driven to, or false
// before the first successful write.
func (c *Controller) CurrentLevel() (SpeedLevel, bool) {
	return c.applied, c.appliedSet
}

// CountsSnapshot returns a copy of the activity counts.
func (c *Controller) CountsSnapshot() Counts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if !c.IsBaselined() {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}
