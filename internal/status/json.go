package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Speed         SpeedJSON    `json:"speed"`
	Pressed       bool         `json:"pressed"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// SpeedJSON is the currently applied speed level.
type SpeedJSON struct {
	Index       int    `json:"index"`
	Label       string `json:"label"`
	Duty        int    `json:"duty"`
	DutyPercent int    `json:"duty_percent"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of activity counts.
type CountsJSON struct {
	Presses int `json:"presses"`
	Changes int `json:"changes"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type    string `json:"type"`
	IP      string `json:"ip"`
	Status  string `json:"status"`
	Gateway string `json:"gateway"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	ActiveLow   bool   `json:"active_low"`
	Edge        string `json:"edge"`
}

// LevelJSON is one row of the speed table.
type LevelJSON struct {
	Index       int    `json:"index"`
	Label       string `json:"label"`
	Duty        int    `json:"duty"`
	DutyPercent int    `json:"duty_percent"`
}

// LevelsJSON is the envelope for the speed table.
type LevelsJSON struct {
	Levels []LevelJSON `json:"levels"`
}

// Build returns the status document for snap without event fields.
func Build(snap Snapshot) StatusJSON {
	speed := SpeedJSON{Index: -1, Label: "UNSET"}
	if snap.LevelSet {
		speed = SpeedJSON{
			Index:       snap.Level.Index,
			Label:       snap.Level.Label,
			Duty:        int(snap.Level.Duty),
			DutyPercent: snap.Level.DutyPercent(),
		}
	}

	inner := StatusInner{
		Speed:         speed,
		Pressed:       snap.Pressed,
		Ready:         snap.Baselined,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Presses: snap.Counts.Presses,
			Changes: snap.Counts.Changes,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			ActiveLow:   snap.Config.ActiveLow,
			Edge:        snap.Config.Edge,
		},
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:    snap.Network.Type,
			IP:      snap.Network.IP,
			Status:  snap.Network.Status,
			Gateway: snap.Network.Gateway,
		}
	}
	return StatusJSON{Status: inner}
}

// BuildLevels returns the speed table document for snap.
func BuildLevels(snap Snapshot) LevelsJSON {
	out := LevelsJSON{Levels: make([]LevelJSON, len(snap.Levels))}
	for i, l := range snap.Levels {
		out.Levels[i] = LevelJSON{
			Index:       l.Index,
			Label:       l.Label,
			Duty:        int(l.Duty),
			DutyPercent: l.DutyPercent(),
		}
	}
	return out
}

// FormatJSON returns the compact JSON status used by the websocket feed.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.Marshal(Build(snap))
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	doc := Build(snap)
	doc.Status.Event = event
	doc.Status.Reason = reason

	data, _ := json.Marshal(doc)
	return data
}
