// Package gpio provides button input and static output lines with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake and simulated implementations allow running without hardware.
package gpio

// Reader reads the raw button level.
type Reader interface {
	// Read returns the raw level of the button pin, true = high.
	// No inversion is applied; polarity is the controller's concern.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultChip         = "gpiochip0"
	DefaultPinButton    = 17 // pushbutton to ground, pull-up enabled
	DefaultPinDirection = 27 // motor driver direction/enable
)
