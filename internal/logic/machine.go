package logic

// Unset is the machine's index before the first level has been applied.
const Unset = -1

// SpeedMachine maps the press count onto the speed table and reports a level
// only when it differs from the one last applied.
type SpeedMachine struct {
	levels  Levels
	current int
}

// NewSpeedMachine creates a machine in the Unset state.
func NewSpeedMachine(levels Levels) *SpeedMachine {
	return &SpeedMachine{
		levels:  levels,
		current: Unset,
	}
}

// Tick evaluates the counter once. It returns the level to apply and true on a
// change, or false when the computed index equals the current one.
// A count that has gone past the table size is wrapped back into range so the
// counter never grows without bound. It keeps the remainder rather than
// resetting to zero: with one press per tick both are the same, and when
// several presses land between ticks the extra ones still move the speed.
func (m *SpeedMachine) Tick(c *EdgeCounter) (SpeedLevel, bool) {
	n := m.levels.Len()
	raw := c.Count()
	index := raw % n
	if raw >= n {
		c.wrap(n)
	}

	if index == m.current {
		return SpeedLevel{}, false
	}

	level := m.levels.At(index)
	m.current = index
	return level, true
}

// Current returns the last applied index, or Unset.
func (m *SpeedMachine) Current() int {
	return m.current
}

// Forget drops the applied index so the next Tick reports the level again.
func (m *SpeedMachine) Forget() {
	m.current = Unset
}

// Levels returns the speed table.
func (m *SpeedMachine) Levels() Levels {
	return m.levels
}
