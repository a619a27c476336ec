package main

import (
	"strings"
	"testing"
	"time"

	"github.com/sweeney/motor-speed/internal/gpio"
	"github.com/sweeney/motor-speed/internal/logic"
	"github.com/sweeney/motor-speed/internal/status"
)

func TestParseTap(t *testing.T) {
	tests := []struct {
		args    []string
		want    time.Duration
		wantErr bool
	}{
		{nil, defaultTap, false},
		{[]string{"120"}, 120 * time.Millisecond, false},
		{[]string{"0"}, 0, true},
		{[]string{"-5"}, 0, true},
		{[]string{"fast"}, 0, true},
		{[]string{"1", "2"}, 0, true},
	}
	for _, tt := range tests {
		got, err := parseTap(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTap(%v): err = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTap(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestFormatStateUnset(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{}, logic.DefaultLevels())

	got := formatState(tr.Snapshot(), false)
	if !strings.Contains(got, "speed:   UNSET") {
		t.Errorf("expected UNSET, got:\n%s", got)
	}
	if !strings.Contains(got, "mqtt:    disconnected") {
		t.Errorf("expected disconnected, got:\n%s", got)
	}
}

func TestFormatState(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{}, logic.DefaultLevels())
	tr.Update(logic.DefaultLevels().At(2), true, true, true, logic.Counts{Presses: 2, Changes: 3})

	got := formatState(tr.Snapshot(), true)
	for _, want := range []string{
		"speed:   MEDIUM (index=2 duty=170 67%)",
		"button:  pressed (debounced pressed)",
		"presses: 2",
		"changes: 3",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatLevelsMarksCurrent(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{}, logic.DefaultLevels())
	tr.Update(logic.DefaultLevels().At(1), true, false, true, logic.Counts{Presses: 1, Changes: 2})

	lines := strings.Split(strings.TrimSpace(formatLevels(tr.Snapshot())), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%v", len(lines), lines)
	}
	if !strings.HasPrefix(lines[1], "* 1 LOW") {
		t.Errorf("current level not marked: %q", lines[1])
	}
	for _, i := range []int{0, 2, 3} {
		if strings.HasPrefix(lines[i], "*") {
			t.Errorf("line %d should not be marked: %q", i, lines[i])
		}
	}
}

func TestNewShellRegistersCommands(t *testing.T) {
	button := gpio.NewSimButton(true)
	tr := status.NewTracker(time.Now(), status.Config{}, logic.DefaultLevels())
	shell := newShell(button, tr)

	if err := shell.Process("press"); err != nil {
		t.Fatalf("press: %v", err)
	}
	if !button.Held() {
		t.Error("expected button held after press")
	}
	if err := shell.Process("release"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if button.Held() {
		t.Error("expected button released")
	}
	if err := shell.Process("tap", "10"); err != nil {
		t.Fatalf("tap: %v", err)
	}
	if button.Held() {
		t.Error("expected button released after tap")
	}
}
