package logic

import "time"

// Detector tracks input state and detects debounced transitions.
type Detector struct {
	debounceDuration time.Duration
	channels         []ChannelState
	baselined        bool
	eventCounts      EventCounts
}

// NewDetector creates a transition detector for n channels with the given
// debounce duration.
func NewDetector(n int, debounceDuration time.Duration) *Detector {
	return &Detector{
		debounceDuration: debounceDuration,
		channels:         make([]ChannelState, n),
		eventCounts:      make(EventCounts, n),
	}
}

// Process takes a new input sample and returns any events that should be emitted.
// Events are only returned after baseline is established and on state transitions.
// Levels beyond the detector's channel count are ignored; missing levels read as OFF.
func (d *Detector) Process(input Input) []Event {
	var transitions []int
	for i := range d.channels {
		level := i < len(input.Levels) && input.Levels[i]
		if d.processChannel(&d.channels[i], boolToState(level), input.Time) {
			transitions = append(transitions, i)
		}
	}

	// Check if we've established baseline
	if !d.baselined {
		for i := range d.channels {
			if !d.channels[i].Baselined {
				return nil
			}
		}
		d.baselined = true
		return nil // No events until baseline established
	}

	// Emit events in channel order when several change simultaneously
	var events []Event
	for _, i := range transitions {
		e := Event{
			Timestamp: input.Time,
			Channel:   i,
			Type:      eventTypeFor(d.channels[i].Stable),
			States:    d.stableStates(),
		}
		if e.Type == EventInputOn {
			d.eventCounts[i].On++
		} else {
			d.eventCounts[i].Off++
		}
		events = append(events, e)
	}

	return events
}

// processChannel handles debounce logic for a single channel.
// Returns true if a stable transition occurred after baseline.
func (d *Detector) processChannel(ch *ChannelState, newState State, now time.Time) bool {
	// First time seeing this channel
	if !ch.Baselined {
		if ch.Pending == "" {
			// Start observing
			ch.Pending = newState
			ch.PendingSince = now
			return false
		}

		if ch.Pending != newState {
			// State changed during baseline, restart
			ch.Pending = newState
			ch.PendingSince = now
			return false
		}

		// Check if debounce period has passed
		if now.Sub(ch.PendingSince) >= d.debounceDuration {
			ch.Stable = newState
			ch.Baselined = true
			ch.Pending = ""
		}
		return false
	}

	// Already baselined - detect transitions
	if newState == ch.Stable {
		// No change from stable state, clear any pending
		ch.Pending = ""
		return false
	}

	// State differs from stable
	if ch.Pending != newState {
		// New pending state
		ch.Pending = newState
		ch.PendingSince = now
		return false
	}

	// Same pending state, check debounce
	if now.Sub(ch.PendingSince) >= d.debounceDuration {
		ch.Stable = newState
		ch.Pending = ""
		return true
	}

	return false
}

func (d *Detector) stableStates() []State {
	out := make([]State, len(d.channels))
	for i := range d.channels {
		out[i] = d.channels[i].Stable
	}
	return out
}

func boolToState(b bool) State {
	if b {
		return StateOn
	}
	return StateOff
}

func eventTypeFor(to State) EventType {
	if to == StateOn {
		return EventInputOn
	}
	return EventInputOff
}

// IsBaselined returns whether the detector has established a baseline.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}

// CurrentState returns the current stable state of every channel.
// Channels without a baseline report "".
func (d *Detector) CurrentState() []State {
	return d.stableStates()
}

// EventCountsSnapshot returns a copy of the per-channel transition counts.
func (d *Detector) EventCountsSnapshot() EventCounts {
	out := make(EventCounts, len(d.eventCounts))
	copy(out, d.eventCounts)
	return out
}
