// Package logic contains pure state tracking for the bridge: the heartbeat
// timer and the debounced input transition detector.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the logical state of a binary input.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// EventType represents a state transition event.
type EventType string

const (
	EventInputOn  EventType = "IN_ON"
	EventInputOff EventType = "IN_OFF"
)

// Event represents a debounced input transition to be published.
type Event struct {
	Timestamp time.Time
	Channel   int
	Type      EventType
	States    []State // stable state of every channel after the transition
}

// ChannelState tracks debounce state for a single channel.
type ChannelState struct {
	// Current stable (debounced) state
	Stable State
	// Pending state during debounce
	Pending State
	// Time when pending state was first observed
	PendingSince time.Time
	// Whether we have established a baseline
	Baselined bool
}

// Input represents a single sample of all input levels.
type Input struct {
	Levels []bool // true = ON, indexed by channel
	Time   time.Time
}

// ChannelCounts tracks transitions of one channel since startup.
type ChannelCounts struct {
	On  int
	Off int
}

// EventCounts tracks the number of transitions per channel since startup.
type EventCounts []ChannelCounts

// Total returns the sum of all transitions.
func (c EventCounts) Total() int {
	n := 0
	for _, cc := range c {
		n += cc.On + cc.Off
	}
	return n
}
