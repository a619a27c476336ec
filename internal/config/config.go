// Package config loads daemon settings from defaults, an optional YAML file
// and MOTOR_* environment variables, and validates the speed table.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/semver"
	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v2"

	"github.com/sweeney/motor-speed/internal/gpio"
	"github.com/sweeney/motor-speed/internal/logic"
	"github.com/sweeney/motor-speed/internal/pwm"
)

// SchemaConstraint is the range of config file versions this build reads.
const SchemaConstraint = "^1"

var (
	ErrVersion   = errors.New("unsupported config version")
	ErrTiming    = errors.New("invalid timing")
	ErrEdge      = errors.New("invalid edge")
	ErrNoLevels  = errors.New("no speed levels")
	ErrDutyRange = errors.New("duty out of range")
	ErrLabel     = errors.New("invalid label")
	ErrPWM       = errors.New("invalid pwm settings")
)

// Level is one speed table entry as written in the config file.
// Duty is on the [0,255] scale.
type Level struct {
	Duty  int    `yaml:"duty"`
	Label string `yaml:"label"`
}

// Config holds every static setting of the daemon.
type Config struct {
	Version string `yaml:"version"`

	Poll      time.Duration `yaml:"poll" env:"MOTOR_POLL"`
	Debounce  time.Duration `yaml:"debounce" env:"MOTOR_DEBOUNCE"`
	Heartbeat time.Duration `yaml:"heartbeat" env:"MOTOR_HEARTBEAT"`
	Broker    string        `yaml:"broker" env:"MOTOR_BROKER"`
	HTTPAddr  string        `yaml:"http" env:"MOTOR_HTTP"`

	Chip         string `yaml:"chip" env:"MOTOR_GPIO_CHIP"`
	ButtonPin    int    `yaml:"button_pin" env:"MOTOR_BUTTON_PIN"`
	DirectionPin int    `yaml:"direction_pin" env:"MOTOR_DIRECTION_PIN"`
	ActiveLow    bool   `yaml:"active_low" env:"MOTOR_ACTIVE_LOW"`
	Edge         string `yaml:"edge" env:"MOTOR_EDGE"`

	PWMRoot    string        `yaml:"pwm_root" env:"MOTOR_PWM_ROOT"`
	PWMChip    int           `yaml:"pwm_chip" env:"MOTOR_PWM_CHIP"`
	PWMChannel int           `yaml:"pwm_channel" env:"MOTOR_PWM_CHANNEL"`
	PWMPeriod  time.Duration `yaml:"pwm_period" env:"MOTOR_PWM_PERIOD"`

	Levels []Level `yaml:"levels"`
}

// Default returns the built-in configuration: the four-step table,
// 50ms debounce, and the standard pin assignments.
func Default() Config {
	var levels []Level
	for _, l := range logic.DefaultLevels().All() {
		levels = append(levels, Level{Duty: int(l.Duty), Label: l.Label})
	}
	return Config{
		Version:      "1.0.0",
		Poll:         10 * time.Millisecond,
		Debounce:     logic.DefaultDebounce,
		Heartbeat:    15 * time.Minute,
		Broker:       "tcp://192.168.1.200:1883",
		HTTPAddr:     ":80",
		Chip:         gpio.DefaultChip,
		ButtonPin:    gpio.DefaultPinButton,
		DirectionPin: gpio.DefaultPinDirection,
		ActiveLow:    true,
		Edge:         string(logic.EdgePress),
		PWMRoot:      pwm.DefaultSysfsRoot,
		PWMChip:      pwm.DefaultChip,
		PWMChannel:   pwm.DefaultChannel,
		PWMPeriod:    pwm.DefaultPeriod,
		Levels:       levels,
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment. It does not validate: callers
// layer their own overrides first and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML over cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return checkVersion(cfg.Version)
}

// ApplyEnv overrides cfg with any MOTOR_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: missing version", ErrVersion)
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrVersion, v, err)
	}
	c, err := semver.NewConstraint(SchemaConstraint)
	if err != nil {
		return fmt.Errorf("constraint %q: %w", SchemaConstraint, err)
	}
	if !c.Check(ver) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrVersion, v, SchemaConstraint)
	}
	return nil
}

// Validate checks cross-field constraints. A valid config always yields a
// usable speed table.
func (c Config) Validate() error {
	if c.Poll <= 0 {
		return fmt.Errorf("%w: poll must be positive, got %v", ErrTiming, c.Poll)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("%w: debounce must be positive, got %v", ErrTiming, c.Debounce)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("%w: heartbeat must not be negative, got %v", ErrTiming, c.Heartbeat)
	}

	switch logic.Edge(c.Edge) {
	case logic.EdgePress, logic.EdgeRelease:
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrEdge, c.Edge, logic.EdgePress, logic.EdgeRelease)
	}

	if c.PWMPeriod <= 0 {
		return fmt.Errorf("%w: period must be positive, got %v", ErrPWM, c.PWMPeriod)
	}
	if c.PWMChip < 0 || c.PWMChannel < 0 {
		return fmt.Errorf("%w: chip %d channel %d", ErrPWM, c.PWMChip, c.PWMChannel)
	}

	if len(c.Levels) == 0 {
		return ErrNoLevels
	}
	seen := make(map[string]bool, len(c.Levels))
	for i, l := range c.Levels {
		if l.Duty < 0 || l.Duty > logic.MaxDuty {
			return fmt.Errorf("%w: level %d duty %d not in [0,%d]", ErrDutyRange, i, l.Duty, logic.MaxDuty)
		}
		if l.Label == "" {
			return fmt.Errorf("%w: level %d has no label", ErrLabel, i)
		}
		if seen[l.Label] {
			return fmt.Errorf("%w: level %d label %q repeated", ErrLabel, i, l.Label)
		}
		seen[l.Label] = true
	}
	return nil
}

// SpeedLevels converts the table for the controller.
func (c Config) SpeedLevels() (logic.Levels, error) {
	entries := make([]logic.SpeedLevel, 0, len(c.Levels))
	for _, l := range c.Levels {
		if l.Duty < 0 || l.Duty > logic.MaxDuty {
			return logic.Levels{}, fmt.Errorf("%w: %s duty %d", ErrDutyRange, l.Label, l.Duty)
		}
		entries = append(entries, logic.SpeedLevel{Duty: uint8(l.Duty), Label: l.Label})
	}
	return logic.NewLevels(entries)
}

// Settings returns the controller input settings.
func (c Config) Settings() logic.Settings {
	return logic.Settings{
		Debounce:  c.Debounce,
		ActiveLow: c.ActiveLow,
		Edge:      logic.Edge(c.Edge),
	}
}
