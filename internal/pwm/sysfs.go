package pwm

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"time"

	"gobot.io/x/gobot/sysfs"
)

// SysfsDriver drives a channel exported through /sys/class/pwm.
type SysfsDriver struct {
	pin     *sysfs.PWMPin
	channel int
	period  time.Duration
}

// NewSysfsDriver exports channel on pwmchip<chip> under root, sets the
// period, and enables the output at duty 0.
func NewSysfsDriver(root string, chip, channel int, period time.Duration) (*SysfsDriver, error) {
	if period <= 0 || period.Nanoseconds() > math.MaxUint32 {
		return nil, fmt.Errorf("pwm: invalid period %v", period)
	}

	pin := sysfs.NewPWMPin(channel)
	pin.Path = filepath.Join(root, "pwmchip"+strconv.Itoa(chip))

	if err := pin.Export(); err != nil {
		return nil, fmt.Errorf("export pwm channel %d on chip %d: %w", channel, chip, err)
	}

	d := &SysfsDriver{pin: pin, channel: channel, period: period}

	// Duty must not exceed the period at any point, so zero it first.
	if err := pin.SetDutyCycle(0); err != nil {
		return nil, fmt.Errorf("write pwm duty_cycle: %w", err)
	}
	if err := pin.SetPeriod(uint32(period.Nanoseconds())); err != nil {
		return nil, fmt.Errorf("write pwm period: %w", err)
	}
	if err := pin.Enable(true); err != nil {
		return nil, fmt.Errorf("write pwm enable: %w", err)
	}
	return d, nil
}

// SetDuty writes the scaled duty cycle.
func (d *SysfsDriver) SetDuty(duty uint8) error {
	if err := d.pin.SetDutyCycle(dutyNanos(d.period, duty)); err != nil {
		return fmt.Errorf("write pwm duty_cycle: %w", err)
	}
	return nil
}

// Close sets duty 0, disables and unexports the channel.
func (d *SysfsDriver) Close() error {
	var errs []error
	if err := d.pin.SetDutyCycle(0); err != nil {
		errs = append(errs, err)
	}
	if err := d.pin.Enable(false); err != nil {
		errs = append(errs, err)
	}
	if err := d.pin.Unexport(); err != nil {
		errs = append(errs, fmt.Errorf("unexport pwm channel %d: %w", d.channel, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
