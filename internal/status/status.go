// Package status provides a thread-safe status tracker for the motor-speed daemon.
// It is read by the HTTP handlers and the websocket feed.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/motor-speed/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type    string
	IP      string
	Status  string
	Gateway string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	ActiveLow   bool
	Edge        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Level         logic.SpeedLevel
	LevelSet      bool // false until the first level has been applied
	Pressed       bool
	Baselined     bool
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
	Levels        []logic.SpeedLevel
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// subscriberBuffer is how many snapshots a slow subscriber may lag behind
// before updates to it are dropped.
const subscriberBuffer = 4

// Tracker holds mutable daemon state behind an RWMutex and fans changes out
// to subscribers.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan Snapshot
}

// NewTracker creates a Tracker with the given start time, config and speed table.
func NewTracker(startTime time.Time, cfg Config, levels logic.Levels) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Levels:    levels.All(),
		},
		subs: make(map[int]chan Snapshot),
	}
}

// Update sets the applied level, button state and counts. Called from
// runLoop on every tick. Subscribers are notified only when something they
// display changed.
func (t *Tracker) Update(level logic.SpeedLevel, levelSet, pressed, baselined bool, counts logic.Counts) {
	t.mu.Lock()
	changed := t.snap.Level != level ||
		t.snap.LevelSet != levelSet ||
		t.snap.Pressed != pressed ||
		t.snap.Baselined != baselined ||
		t.snap.Counts != counts
	t.snap.Level = level
	t.snap.LevelSet = levelSet
	t.snap.Pressed = pressed
	t.snap.Baselined = baselined
	t.snap.Counts = counts
	t.mu.Unlock()

	if changed {
		t.notify()
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	changed := t.snap.MQTTConnected != connected
	t.snap.MQTTConnected = connected
	t.mu.Unlock()

	if changed {
		t.notify()
	}
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// Subscribe returns a channel receiving a snapshot after every change, and a
// cancel func that unregisters and closes it. A subscriber that falls behind
// misses updates rather than blocking the tracker.
func (t *Tracker) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, subscriberBuffer)

	t.subMu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = ch
	t.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.subMu.Lock()
			delete(t.subs, id)
			t.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of registered subscribers.
func (t *Tracker) Subscribers() int {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	return len(t.subs)
}

func (t *Tracker) notify() {
	snap := t.Snapshot()

	t.subMu.Lock()
	defer t.subMu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
