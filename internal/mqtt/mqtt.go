// Package mqtt publishes speed changes and lifecycle events, with an
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/motor-speed/internal/logic"
)

// Topic is the MQTT topic for speed change events.
const Topic = "motor/speed/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "motor/speed/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a speed change to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Speed SpeedPayload `json:"speed"`
}

// SpeedPayload contains the speed change details.
type SpeedPayload struct {
	Timestamp   string `json:"timestamp"`
	Event       string `json:"event"`
	Index       int    `json:"index"`
	Label       string `json:"label"`
	Previous    string `json:"previous,omitempty"`
	Duty        int    `json:"duty"`
	DutyPercent int    `json:"duty_percent"`
	Presses     int    `json:"presses"`
}

// FormatPayload creates the JSON payload for a speed change.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Speed: SpeedPayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			Event:       string(event.Type),
			Index:       event.Level.Index,
			Label:       event.Level.Label,
			Previous:    event.Previous,
			Duty:        int(event.Level.Duty),
			DutyPercent: event.Level.DutyPercent(),
			Presses:     event.Presses,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Event:  event.Event,
			Reason: event.Reason,
		},
	}
	if !event.Timestamp.IsZero() {
		payload.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(payload)
}

// WillPayload is the last-will message the broker publishes if the daemon
// drops off without a clean shutdown. It is registered at connect time, so
// it carries no timestamp.
func WillPayload() []byte {
	payload, _ := FormatSystemPayload(SystemEvent{
		Event:  "SHUTDOWN",
		Reason: "MQTT_DISCONNECT",
	})
	return payload
}
