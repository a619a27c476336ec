package pwm

// FakeDriver records duty writes for test assertions.
type FakeDriver struct {
	// Duties contains every duty that was written, in order.
	Duties []uint8

	// SetError, if set, will be returned by SetDuty and nothing is recorded.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// SetDuty records the duty.
func (f *FakeDriver) SetDuty(duty uint8) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Duties = append(f.Duties, duty)
	return nil
}

// Close marks the driver closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent duty, or false if none was written.
func (f *FakeDriver) Last() (uint8, bool) {
	if len(f.Duties) == 0 {
		return 0, false
	}
	return f.Duties[len(f.Duties)-1], true
}
