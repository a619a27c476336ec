// Command motor-speed cycles a DC motor through a table of PWM speed levels,
// one step per debounced button press, and publishes every change to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/motor-speed/internal/config"
	"github.com/sweeney/motor-speed/internal/gpio"
	"github.com/sweeney/motor-speed/internal/logic"
	"github.com/sweeney/motor-speed/internal/mqtt"
	"github.com/sweeney/motor-speed/internal/pwm"
	"github.com/sweeney/motor-speed/internal/status"
	"github.com/sweeney/motor-speed/internal/web"
)

func main() {
	fs := flag.CommandLine
	configPath := fs.String("config", "", "YAML config file (optional)")
	printState := fs.Bool("print-state", false, "Print the button state and exit")
	sim := fs.Bool("sim", false, "Run without hardware, driving a virtual button from a shell")
	overrides := registerFlags(fs, config.Default())

	flag.Parse()

	cfg, err := loadConfig(*configPath, fs, overrides)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printState, *sim); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// loadConfig layers the file, the environment and the flags set on the
// command line, and validates the result once at the end.
func loadConfig(path string, fs *flag.FlagSet, overrides *cliFlags) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	overrides.apply(fs, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// cliFlags holds the flag values that override file and environment settings.
type cliFlags struct {
	poll         *time.Duration
	debounce     *time.Duration
	heartbeat    *time.Duration
	broker       *string
	httpAddr     *string
	chip         *string
	pinButton    *int
	pinDirection *int
	activeLow    *bool
	edge         *string
	pwmChip      *int
	pwmChannel   *int
	pwmPeriod    *time.Duration
}

func registerFlags(fs *flag.FlagSet, def config.Config) *cliFlags {
	return &cliFlags{
		poll:         fs.Duration("poll", def.Poll, "Button polling interval"),
		debounce:     fs.Duration("debounce", def.Debounce, "Debounce duration"),
		heartbeat:    fs.Duration("heartbeat", def.Heartbeat, "Heartbeat interval (0 to disable)"),
		broker:       fs.String("broker", def.Broker, "MQTT broker address"),
		httpAddr:     fs.String("http", def.HTTPAddr, "HTTP status address (empty to disable)"),
		chip:         fs.String("chip", def.Chip, "GPIO chip name"),
		pinButton:    fs.Int("pin-button", def.ButtonPin, "BCM pin number for the speed button"),
		pinDirection: fs.Int("pin-direction", def.DirectionPin, "BCM pin number for the driver direction line"),
		activeLow:    fs.Bool("active-low", def.ActiveLow, "Button reads low when pressed"),
		edge:         fs.String("edge", def.Edge, `Edge that counts as a press ("press" or "release")`),
		pwmChip:      fs.Int("pwm-chip", def.PWMChip, "sysfs PWM chip number"),
		pwmChannel:   fs.Int("pwm-channel", def.PWMChannel, "sysfs PWM channel number"),
		pwmPeriod:    fs.Duration("pwm-period", def.PWMPeriod, "PWM period"),
	}
}

// apply copies only the flags given on the command line, so unset flags do
// not clobber values from the file or environment.
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "poll":
			cfg.Poll = *f.poll
		case "debounce":
			cfg.Debounce = *f.debounce
		case "heartbeat":
			cfg.Heartbeat = *f.heartbeat
		case "broker":
			cfg.Broker = *f.broker
		case "http":
			cfg.HTTPAddr = *f.httpAddr
		case "chip":
			cfg.Chip = *f.chip
		case "pin-button":
			cfg.ButtonPin = *f.pinButton
		case "pin-direction":
			cfg.DirectionPin = *f.pinDirection
		case "active-low":
			cfg.ActiveLow = *f.activeLow
		case "edge":
			cfg.Edge = *f.edge
		case "pwm-chip":
			cfg.PWMChip = *f.pwmChip
		case "pwm-channel":
			cfg.PWMChannel = *f.pwmChannel
		case "pwm-period":
			cfg.PWMPeriod = *f.pwmPeriod
		}
	})
}

func run(cfg config.Config, printState, sim bool) error {
	levels, err := cfg.SpeedLevels()
	if err != nil {
		return fmt.Errorf("speed table: %w", err)
	}

	// Initialize button input
	var (
		reader gpio.Reader
		button *gpio.SimButton
	)
	if sim {
		button = gpio.NewSimButton(cfg.ActiveLow)
		reader = button
	} else {
		r, err := gpio.NewRealReader(cfg.Chip, cfg.ButtonPin)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		reader = r
	}
	defer reader.Close()

	// Print state mode
	if printState {
		raw, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Println(buttonStateLine(raw, cfg.ActiveLow))
		return nil
	}

	// Initialize motor outputs. The direction line is held for the process
	// lifetime; the PWM channel is closed first so the motor stops before
	// the driver is released.
	var driver pwm.Driver
	if sim {
		driver = pwm.NewSimDriver()
	} else {
		dir, err := gpio.NewRealOutput(cfg.Chip, cfg.DirectionPin, true)
		if err != nil {
			return fmt.Errorf("init direction line: %w", err)
		}
		defer dir.Close()

		d, err := pwm.NewSysfsDriver(cfg.PWMRoot, cfg.PWMChip, cfg.PWMChannel, cfg.PWMPeriod)
		if err != nil {
			return fmt.Errorf("init pwm: %w", err)
		}
		driver = d
	}
	defer func() {
		if err := driver.Close(); err != nil {
			log.Printf("pwm close error: %v", err)
		}
	}()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), statusConfig(cfg), levels)
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: poll=%v debounce=%v edge=%s levels=%d broker=%s heartbeat=%v sim=%v",
		cfg.Poll, cfg.Debounce, cfg.Edge, levels.Len(), cfg.Broker, cfg.Heartbeat, sim)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if sim {
		shell := newShell(button, tracker)
		go func() {
			shell.Run()
			// Leaving the shell stops the daemon as if interrupted.
			select {
			case sigCh <- syscall.SIGINT:
			default:
			}
		}()
	}

	ctrl := logic.NewController(cfg.Settings(), levels, time.Now())
	return runLoop(reader, driver, publisher, publisher, tracker, ctrl, cfg.Heartbeat, time.Now, ticker.C, sigCh, os.Stdout)
}

func runLoop(reader gpio.Reader, driver pwm.Driver, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, ctrl *logic.Controller, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, out io.Writer) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			raw, err := reader.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}

			if event := ctrl.Step(logic.Input{Raw: raw, Time: t}); event != nil {
				applySpeed(*event, driver, publisher, ctrl, out)
			}

			if hbData := ctrl.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v presses=%d changes=%d",
					hbData.Uptime, hbData.Counts.Presses, hbData.Counts.Changes)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					updateTracker(tracker, ctrl)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP/websocket consumers
			if tracker != nil {
				updateTracker(tracker, ctrl)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// applySpeed drives the PWM output to the event's level and announces it.
// If the write fails nothing is announced and the controller is told to
// re-apply on the next tick.
func applySpeed(event logic.Event, driver pwm.Driver, publisher mqtt.Publisher, ctrl *logic.Controller, out io.Writer) {
	if err := driver.SetDuty(event.Level.Duty); err != nil {
		log.Printf("pwm write error: %v (retrying %s)", err, event.Level.Label)
		ctrl.Forget()
		return
	}
	ctrl.Applied(event)

	fmt.Fprintln(out, event.Level.Label)
	log.Printf("speed: %s (index=%d duty=%d)", event.Level.Label, event.Level.Index, event.Level.Duty)
	if err := publisher.Publish(event); err != nil {
		log.Printf("publish error: %v", err)
		// Don't crash on publish failure
	}
}

func updateTracker(tracker *status.Tracker, ctrl *logic.Controller) {
	level, set := ctrl.CurrentLevel()
	tracker.Update(level, set, ctrl.Pressed(), ctrl.IsBaselined(), ctrl.CountsSnapshot())
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		ActiveLow:   cfg.ActiveLow,
		Edge:        cfg.Edge,
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType    = "NETWORK_TYPE"
	envNetworkIP      = "NETWORK_IP"
	envNetworkStatus  = "NETWORK_STATUS"
	envNetworkGateway = "NETWORK_GATEWAY"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:    os.Getenv(envNetworkType),
		IP:      os.Getenv(envNetworkIP),
		Status:  s,
		Gateway: os.Getenv(envNetworkGateway),
	}
}

func buttonStateLine(raw, activeLow bool) string {
	level := "low"
	if raw {
		level = "high"
	}
	state := "released"
	if raw != activeLow {
		state = "pressed"
	}
	return fmt.Sprintf("button: %s (raw=%s)", state, level)
}
