package pwm

import (
	"log"
	"sync/atomic"
)

// SimDriver stands in for the PWM channel when running without hardware.
// It logs each write and remembers the last duty.
type SimDriver struct {
	duty   atomic.Uint32
	closed atomic.Bool
}

// NewSimDriver returns a driver at duty 0.
func NewSimDriver() *SimDriver {
	return &SimDriver{}
}

// SetDuty records the duty.
func (d *SimDriver) SetDuty(duty uint8) error {
	if d.closed.Load() {
		return ErrClosed
	}
	d.duty.Store(uint32(duty))
	log.Printf("pwm: sim duty=%d", duty)
	return nil
}

// Duty returns the last duty written.
func (d *SimDriver) Duty() uint8 {
	return uint8(d.duty.Load())
}

// Close drops the duty to zero.
func (d *SimDriver) Close() error {
	d.duty.Store(0)
	d.closed.Store(true)
	return nil
}
