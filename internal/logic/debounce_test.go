package logic

import (
	"math/rand"
	"testing"
	"time"
)

const (
	released = true  // raw high with pull-up
	pressedL = false // raw low with pull-up
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Time {
	return t0.Add(time.Duration(n) * time.Millisecond)
}

func newTestCounter() *EdgeCounter {
	return NewEdgeCounter(NewDebounceFilter(50*time.Millisecond, true, EdgePress))
}

func TestFirstPollIsBaseline(t *testing.T) {
	for _, raw := range []bool{released, pressedL} {
		c := newTestCounter()
		if c.Baselined() {
			t.Fatal("should not be baselined before first poll")
		}
		if c.Poll(raw, ms(0)) {
			t.Errorf("raw=%v: first poll must not count an edge", raw)
		}
		if c.Count() != 0 {
			t.Errorf("raw=%v: expected count 0, got %d", raw, c.Count())
		}
		if !c.Baselined() {
			t.Errorf("raw=%v: should be baselined after first poll", raw)
		}
		if c.Pressed() != !raw {
			t.Errorf("raw=%v: Pressed()=%v", raw, c.Pressed())
		}
	}
}

func TestHeldAtBootNotCounted(t *testing.T) {
	c := newTestCounter()

	// Button held through boot, then released and pressed once
	c.Poll(pressedL, ms(0))
	c.Poll(pressedL, ms(100))
	c.Poll(released, ms(200))
	c.Poll(released, ms(250))
	if c.Count() != 0 {
		t.Fatalf("release must not count, got %d", c.Count())
	}

	c.Poll(pressedL, ms(300))
	if !c.Poll(pressedL, ms(350)) {
		t.Error("expected press edge at 350ms")
	}
	if c.Count() != 1 {
		t.Errorf("expected count 1, got %d", c.Count())
	}
}

func TestPressCountedAfterWindow(t *testing.T) {
	c := newTestCounter()
	c.Poll(released, ms(0))

	if c.Poll(pressedL, ms(100)) {
		t.Error("edge must not commit on the first low sample")
	}
	if c.Poll(pressedL, ms(149)) {
		t.Error("edge must not commit before the window")
	}
	if !c.Poll(pressedL, ms(150)) {
		t.Error("edge should commit exactly at the window")
	}
	if c.Count() != 1 {
		t.Errorf("expected count 1, got %d", c.Count())
	}

	// Holding does not count again
	for i := 1; i <= 10; i++ {
		if c.Poll(pressedL, ms(150+i*10)) {
			t.Errorf("poll %d: held button counted again", i)
		}
	}
	if c.Count() != 1 {
		t.Errorf("expected count 1 while held, got %d", c.Count())
	}
}

func TestGlitchShorterThanWindowIgnored(t *testing.T) {
	c := newTestCounter()
	c.Poll(released, ms(0))

	c.Poll(pressedL, ms(10))
	c.Poll(released, ms(30))
	c.Poll(released, ms(100))
	c.Poll(released, ms(500))

	if c.Count() != 0 {
		t.Errorf("glitch counted: got %d", c.Count())
	}
	if c.Pressed() {
		t.Error("glitch changed the stable level")
	}
}

func TestBounceThenSettleCountsOnce(t *testing.T) {
	c := newTestCounter()
	c.Poll(released, ms(0))

	// Contact bounce on press, every flip inside one window
	c.Poll(pressedL, ms(100))
	c.Poll(released, ms(110))
	c.Poll(pressedL, ms(120))
	c.Poll(released, ms(130))
	c.Poll(pressedL, ms(140))

	// Window is measured from the last flip at 140ms
	if c.Poll(pressedL, ms(189)) {
		t.Error("committed before the window after the last flip")
	}
	if !c.Poll(pressedL, ms(190)) {
		t.Error("expected commit at 190ms")
	}
	c.Poll(pressedL, ms(200))
	c.Poll(pressedL, ms(300))

	if c.Count() != 1 {
		t.Errorf("expected count 1, got %d", c.Count())
	}
}

func TestDebounceIdempotenceRandomFlips(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	window := 50 * time.Millisecond

	for trial := 0; trial < 200; trial++ {
		c := NewEdgeCounter(NewDebounceFilter(window, true, EdgePress))
		c.Poll(released, t0)
		startPressed := c.Pressed()

		// Flips spread over less than one window
		now := t0.Add(time.Second)
		raw := released
		changes := 0
		lastPressed := startPressed
		for i := 0; i < 8; i++ {
			now = now.Add(time.Duration(rng.Intn(6)) * time.Millisecond)
			if rng.Intn(2) == 0 {
				raw = !raw
			}
			c.Poll(raw, now)
			if c.Pressed() != lastPressed {
				changes++
				lastPressed = c.Pressed()
			}
		}
		// Let the final level settle
		c.Poll(raw, now.Add(window))
		if c.Pressed() != lastPressed {
			changes++
		}

		if changes > 1 {
			t.Fatalf("trial %d: stable level changed %d times", trial, changes)
		}
		if c.Count() > 1 {
			t.Fatalf("trial %d: count %d after one window of flips", trial, c.Count())
		}
	}
}

func TestReleaseNotCounted(t *testing.T) {
	c := newTestCounter()
	c.Poll(released, ms(0))
	c.Poll(pressedL, ms(100))
	c.Poll(pressedL, ms(150))

	c.Poll(released, ms(200))
	if c.Poll(released, ms(250)) {
		t.Error("release edge should not count with EdgePress")
	}
	if c.Count() != 1 {
		t.Errorf("expected count 1, got %d", c.Count())
	}
	if c.Pressed() {
		t.Error("expected released after debounce")
	}
}

func TestEdgeReleaseCountsOnRelease(t *testing.T) {
	c := NewEdgeCounter(NewDebounceFilter(50*time.Millisecond, true, EdgeRelease))
	c.Poll(released, ms(0))

	c.Poll(pressedL, ms(100))
	if c.Poll(pressedL, ms(150)) {
		t.Error("press should not count with EdgeRelease")
	}

	c.Poll(released, ms(200))
	if !c.Poll(released, ms(250)) {
		t.Error("release should count with EdgeRelease")
	}
	if c.Count() != 1 {
		t.Errorf("expected count 1, got %d", c.Count())
	}
}

func TestActiveHighPolarity(t *testing.T) {
	c := NewEdgeCounter(NewDebounceFilter(50*time.Millisecond, false, EdgePress))
	c.Poll(false, ms(0))
	if c.Pressed() {
		t.Error("low should be released when active high")
	}

	c.Poll(true, ms(100))
	if !c.Poll(true, ms(150)) {
		t.Error("high should be a press when active high")
	}
}

func TestDefaultEdgeIsPress(t *testing.T) {
	f := NewDebounceFilter(time.Millisecond, true, "")
	if f.edge != EdgePress {
		t.Errorf("expected default edge %q, got %q", EdgePress, f.edge)
	}
}

func TestResetCountKeepsDebounceState(t *testing.T) {
	c := newTestCounter()
	c.Poll(released, ms(0))
	c.Poll(pressedL, ms(100))
	c.Poll(pressedL, ms(150))

	c.ResetCount()
	if c.Count() != 0 {
		t.Fatalf("expected count 0 after reset, got %d", c.Count())
	}
	if !c.Pressed() {
		t.Error("reset must not change the stable level")
	}

	// Still held: no re-arm
	if c.Poll(pressedL, ms(300)) {
		t.Error("held button counted after reset")
	}

	c.Poll(released, ms(400))
	c.Poll(released, ms(450))
	c.Poll(pressedL, ms(500))
	c.Poll(pressedL, ms(550))
	if c.Count() != 1 {
		t.Errorf("expected count 1, got %d", c.Count())
	}
}

func TestWrapKeepsRemainder(t *testing.T) {
	tests := []struct {
		count int
		n     int
		want  int
	}{
		{4, 4, 0},
		{5, 4, 1},
		{8, 4, 0},
		{7, 4, 3},
		{3, 1, 0},
	}

	for _, tt := range tests {
		c := newTestCounter()
		c.count = tt.count
		c.wrap(tt.n)
		if c.Count() != tt.want {
			t.Errorf("wrap(%d) of %d: got %d, want %d", tt.n, tt.count, c.Count(), tt.want)
		}
	}
}
