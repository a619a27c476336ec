// Package logic contains the pure control logic for the motor speed selector.
// This package has NO external dependencies (no GPIO, PWM, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// EventType represents a published state transition.
type EventType string

const (
	EventSpeedChange EventType = "SPEED_CHANGE"
)

// Edge selects which debounced transition counts as one press.
type Edge string

const (
	// EdgePress counts released -> pressed transitions.
	EdgePress Edge = "press"
	// EdgeRelease counts pressed -> released transitions.
	EdgeRelease Edge = "release"
)

// Input represents a single sample of the raw button pin.
type Input struct {
	Raw  bool // raw pin level, true = high
	Time time.Time
}

// Event represents a speed change to be applied and published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Level     SpeedLevel
	// Previous is the label of the last applied level, empty on the first change.
	Previous string
	// Presses is the number of counted presses since startup.
	Presses int
}

// Counts tracks activity since startup.
type Counts struct {
	Presses int
	Changes int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
