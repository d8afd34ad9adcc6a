// Package mqtt provides MQTT telemetry publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/servo-bridge/internal/logic"
	"github.com/sweeney/servo-bridge/internal/protocol"
)

// Topics are the MQTT topics the bridge publishes to.
type Topics struct {
	State  string // bank state after every handled command
	Events string // debounced input transitions
	System string // lifecycle events
}

// NewTopics derives the topic set from a prefix such as "servo-bridge".
func NewTopics(prefix string) Topics {
	return Topics{
		State:  prefix + "/state",
		Events: prefix + "/events",
		System: prefix + "/system",
	}
}

// Publisher publishes telemetry to MQTT.
type Publisher interface {
	// PublishState sends the bank state produced by a handled command.
	// Returns error if publishing fails (should not crash the process).
	PublishState(event StateEvent) error

	// Publish sends an input transition event.
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// StateEvent is the bank state after one command.
type StateEvent struct {
	Timestamp time.Time
	Command   protocol.Frame
	State     protocol.Snapshot
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// StatePayload is the MQTT payload for a StateEvent.
type StatePayload struct {
	State StatePayloadInner `json:"state"`
}

// StatePayloadInner contains the state details.
type StatePayloadInner struct {
	Timestamp string `json:"timestamp"`
	Command   []int  `json:"command"`
	Servos    []int  `json:"servos"`
	Outputs   []int  `json:"outputs"`
	Inputs    []int  `json:"inputs"`
}

// FormatStatePayload creates the JSON payload for a state event.
func FormatStatePayload(event StateEvent) ([]byte, error) {
	s := event.State
	payload := StatePayload{
		State: StatePayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Command:   append([]int(nil), event.Command[:]...),
			Servos:    append([]int(nil), s.Angles[:]...),
			Outputs:   levels(s.Outputs[:]),
			Inputs:    levels(s.Inputs[:]),
		},
	}
	return json.Marshal(payload)
}

// Payload represents the MQTT payload of an input transition.
type Payload struct {
	Input InputPayload `json:"input"`
}

// InputPayload contains the input event details.
type InputPayload struct {
	Timestamp string   `json:"timestamp"`
	Event     string   `json:"event"`
	Channel   int      `json:"channel"`
	States    []string `json:"states"`
}

// FormatPayload creates the JSON payload for an input transition.
func FormatPayload(event logic.Event) ([]byte, error) {
	states := make([]string, len(event.States))
	for i, s := range event.States {
		states[i] = string(s)
	}
	payload := Payload{
		Input: InputPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Channel:   event.Channel,
			States:    states,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
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
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

func levels(bs []bool) []int {
	out := make([]int, len(bs))
	for i, b := range bs {
		if b {
			out[i] = 1
		}
	}
	return out
}

// NopPublisher discards everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishState(StateEvent) error   { return nil }
func (NopPublisher) Publish(logic.Event) error       { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }
func (NopPublisher) Close() error                    { return nil }
func (NopPublisher) IsConnected() bool               { return false }
