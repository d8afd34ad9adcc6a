// Package status provides a thread-safe status tracker for the servo-bridge daemon.
// It is written by the poll loop and read by HTTP handlers and MQTT reports.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/servo-bridge/internal/logic"
	"github.com/sweeney/servo-bridge/internal/protocol"
)

// Config contains daemon configuration for display.
type Config struct {
	Port        string
	Baud        int
	Sim         bool
	PollMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	ReportMs    int64
	Broker      string
	HTTPAddr    string
}

// Counters tracks handled lines since startup.
type Counters struct {
	Frames  int // well-formed frames answered with state
	Invalid int // lines answered with the error response
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	// State is the bank state from the last well-formed frame.
	State       protocol.Snapshot
	HasState    bool
	LastCommand string
	LastFrameAt time.Time
	Counters    Counters

	Indicator bool

	Inputs    []logic.State
	Baselined bool
	Counts    logic.EventCounts

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordFrame records the outcome of one handled line.
func (t *Tracker) RecordFrame(line string, res protocol.Result, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if res.Err != nil {
		t.snap.Counters.Invalid++
		return
	}
	t.snap.Counters.Frames++
	t.snap.State = res.Snapshot
	t.snap.HasState = true
	t.snap.LastCommand = line
	t.snap.LastFrameAt = at
}

// SetState records a bank state read outside of command handling
// (e.g. right after initialization).
func (t *Tracker) SetState(s protocol.Snapshot) {
	t.mu.Lock()
	t.snap.State = s
	t.snap.HasState = true
	t.mu.Unlock()
}

// SetIndicator records the heartbeat indicator level.
func (t *Tracker) SetIndicator(on bool) {
	t.mu.Lock()
	t.snap.Indicator = on
	t.mu.Unlock()
}

// UpdateInputs sets debounced input states, baseline status, and event counts.
// Called from the poll loop on every tick.
func (t *Tracker) UpdateInputs(states []logic.State, baselined bool, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Inputs = states
	t.snap.Baselined = baselined
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Inputs = append([]logic.State(nil), t.snap.Inputs...)
	s.Counts = append(logic.EventCounts(nil), t.snap.Counts...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
