// Package pwm drives the motor driver's PWM input.
// The real implementation uses gobot's Linux sysfs PWM pin.
// The fake implementation allows testing without hardware.
package pwm

import (
	"errors"
	"time"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("pwm: driver closed")

// Driver sets the duty cycle of one PWM channel.
type Driver interface {
	// SetDuty sets the duty cycle on the [0,255] scale, 255 = always high.
	SetDuty(duty uint8) error

	// Close stops the output and releases the channel.
	Close() error
}

// Defaults for a Raspberry Pi hardware PWM channel.
const (
	DefaultSysfsRoot = "/sys/class/pwm"
	DefaultChip      = 0
	DefaultChannel   = 0
	DefaultPeriod    = 50 * time.Microsecond // 20 kHz, above audible range
)

// dutyNanos scales an 8-bit duty onto the period.
func dutyNanos(period time.Duration, duty uint8) uint32 {
	return uint32(period.Nanoseconds() * int64(duty) / 255)
}
