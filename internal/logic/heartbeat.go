package logic

import "time"

// Heartbeat is a periodic toggler driven by an injected monotonic clock.
// It holds a single boolean and the time of the last toggle.
type Heartbeat struct {
	interval time.Duration
	last     time.Time
	state    bool
}

// NewHeartbeat creates a heartbeat that first fires interval after start.
// An interval <= 0 disables it.
func NewHeartbeat(interval time.Duration, start time.Time) *Heartbeat {
	return &Heartbeat{interval: interval, last: start}
}

// Due reports whether at least one interval has elapsed since the last
// toggle. When it has, the state flips and the toggle time becomes now.
// Missed intervals are not caught up: the next one is measured from now.
func (h *Heartbeat) Due(now time.Time) bool {
	if h.interval <= 0 {
		return false
	}
	if now.Sub(h.last) < h.interval {
		return false
	}
	h.state = !h.state
	h.last = now
	return true
}

// State returns the current toggle state.
func (h *Heartbeat) State() bool {
	return h.state
}

// Interval returns the configured interval.
func (h *Heartbeat) Interval() time.Duration {
	return h.interval
}
