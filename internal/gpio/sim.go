package gpio

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by reads from a closed simulated button.
var ErrClosed = errors.New("gpio: button closed")

// SimButton is a virtual button wired with the configured polarity: an
// active-low button reads low while held, an active-high one reads high.
// It is safe to press from one goroutine while the control loop reads it
// from another.
type SimButton struct {
	activeLow bool
	held      atomic.Bool
	closed    atomic.Bool
}

// NewSimButton returns a released button.
func NewSimButton(activeLow bool) *SimButton {
	return &SimButton{activeLow: activeLow}
}

// Press holds the button down.
func (b *SimButton) Press() {
	b.held.Store(true)
}

// Release lets the button go.
func (b *SimButton) Release() {
	b.held.Store(false)
}

// Tap holds the button for d then releases it. It blocks for d.
func (b *SimButton) Tap(d time.Duration) {
	b.Press()
	time.Sleep(d)
	b.Release()
}

// Held reports whether the button is currently held.
func (b *SimButton) Held() bool {
	return b.held.Load()
}

// Read returns the raw level for the button's polarity.
func (b *SimButton) Read() (bool, error) {
	if b.closed.Load() {
		return false, ErrClosed
	}
	return b.held.Load() != b.activeLow, nil
}

// Close marks the button closed; later reads fail.
func (b *SimButton) Close() error {
	b.closed.Store(true)
	return nil
}
