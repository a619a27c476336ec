package logic

import (
	"errors"
	"fmt"
)

// MaxDuty is the duty value that keeps the output high for the whole period.
const MaxDuty = 255

// SpeedLevel is one entry of the speed table.
type SpeedLevel struct {
	Index int
	Duty  uint8
	Label string
}

// DutyPercent returns the duty cycle rounded to a whole percent.
func (l SpeedLevel) DutyPercent() int {
	return (int(l.Duty)*100 + MaxDuty/2) / MaxDuty
}

// Levels is an immutable ordered speed table.
type Levels struct {
	entries []SpeedLevel
}

// NewLevels builds a table from the given entries in order. Index fields are
// assigned from position. The table must be non-empty and every label set.
func NewLevels(entries []SpeedLevel) (Levels, error) {
	if len(entries) == 0 {
		return Levels{}, errors.New("speed table is empty")
	}
	out := make([]SpeedLevel, len(entries))
	for i, e := range entries {
		if e.Label == "" {
			return Levels{}, fmt.Errorf("speed level %d: empty label", i)
		}
		e.Index = i
		out[i] = e
	}
	return Levels{entries: out}, nil
}

// DefaultLevels returns the four-step OFF/LOW/MEDIUM/HIGH table.
func DefaultLevels() Levels {
	l, _ := NewLevels([]SpeedLevel{
		{Duty: 0, Label: "OFF"},
		{Duty: 85, Label: "LOW"},
		{Duty: 170, Label: "MEDIUM"},
		{Duty: MaxDuty, Label: "HIGH"},
	})
	return l
}

// Len returns the number of levels.
func (l Levels) Len() int {
	return len(l.entries)
}

// At returns level i. It panics if i is out of range; callers reduce their
// index modulo Len first so this cannot happen in a running controller.
func (l Levels) At(i int) SpeedLevel {
	if i < 0 || i >= len(l.entries) {
		panic(fmt.Sprintf("logic: speed level %d out of range [0,%d)", i, len(l.entries)))
	}
	return l.entries[i]
}

// All returns a copy of the table.
func (l Levels) All() []SpeedLevel {
	out := make([]SpeedLevel, len(l.entries))
	copy(out, l.entries)
	return out
}
