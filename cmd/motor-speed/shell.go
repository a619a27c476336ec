package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/sweeney/motor-speed/internal/gpio"
	"github.com/sweeney/motor-speed/internal/status"
)

// defaultTap is long enough to clear the default 50ms debounce with room to spare.
const defaultTap = 200 * time.Millisecond

var errTapArgs = errors.New("usage: tap [ms]")

// newShell builds the simulation shell. It only drives the virtual button
// and reads the tracker; the control loop stays the sole owner of speed state.
func newShell(button *gpio.SimButton, tracker *status.Tracker) *ishell.Shell {
	shell := ishell.New()
	shell.Println("motor-speed simulation shell")
	shell.ShowPrompt(true)

	shell.AddCmd(&ishell.Cmd{
		Name: "press",
		Help: "press: hold the button down",
		Func: func(c *ishell.Context) {
			button.Press()
			c.Println("button held")
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "release",
		Help: "release: let the button go",
		Func: func(c *ishell.Context) {
			button.Release()
			c.Println("button released")
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "tap",
		Help: "tap [ms]: press and release, holding for ms (default 200)",
		Func: func(c *ishell.Context) {
			d, err := parseTap(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			button.Tap(d)
			c.Printf("tapped for %v\n", d)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "state",
		Help: "state: show the applied speed and counters",
		Func: func(c *ishell.Context) {
			c.Print(formatState(tracker.Snapshot(), button.Held()))
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "levels",
		Help: "levels: list the speed table",
		Func: func(c *ishell.Context) {
			c.Print(formatLevels(tracker.Snapshot()))
		},
	})

	return shell
}

func parseTap(args []string) (time.Duration, error) {
	switch len(args) {
	case 0:
		return defaultTap, nil
	case 1:
		ms, err := strconv.Atoi(args[0])
		if err != nil || ms <= 0 {
			return 0, errTapArgs
		}
		return time.Duration(ms) * time.Millisecond, nil
	default:
		return 0, errTapArgs
	}
}

func formatState(snap status.Snapshot, held bool) string {
	var b strings.Builder
	if snap.LevelSet {
		fmt.Fprintf(&b, "speed:   %s (index=%d duty=%d %d%%)\n",
			snap.Level.Label, snap.Level.Index, snap.Level.Duty, snap.Level.DutyPercent())
	} else {
		fmt.Fprintf(&b, "speed:   UNSET\n")
	}
	fmt.Fprintf(&b, "button:  %s (debounced %s)\n", heldString(held), heldString(snap.Pressed))
	fmt.Fprintf(&b, "presses: %d\n", snap.Counts.Presses)
	fmt.Fprintf(&b, "changes: %d\n", snap.Counts.Changes)
	fmt.Fprintf(&b, "mqtt:    %s\n", connectedString(snap.MQTTConnected))
	return b.String()
}

func formatLevels(snap status.Snapshot) string {
	var b strings.Builder
	for _, l := range snap.Levels {
		marker := " "
		if snap.LevelSet && l.Index == snap.Level.Index {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d %-8s duty=%3d (%d%%)\n", marker, l.Index, l.Label, l.Duty, l.DutyPercent())
	}
	return b.String()
}

func heldString(held bool) string {
	if held {
		return "pressed"
	}
	return "released"
}

func connectedString(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}
