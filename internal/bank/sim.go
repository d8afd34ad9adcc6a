package bank

import "sync"

// WriteKind identifies which primitive a recorded write went through.
type WriteKind string

const (
	WriteAngle     WriteKind = "ANGLE"
	WriteOutput    WriteKind = "OUTPUT"
	WriteIndicator WriteKind = "INDICATOR"
)

// Write is one recorded mutation of a SimBank.
type Write struct {
	Kind    WriteKind
	Channel int
	Value   int // angle, or 1/0 for outputs and the indicator
}

// SimBank is an in-memory bank. It backs the daemon's -sim mode and is the
// test double for everything that drives a Bank.
//
// The HTTP server never touches the bank, but SetInputs may be called from a
// test goroutine while the loop reads, so access is serialized.
type SimBank struct {
	mu        sync.Mutex
	angles    [NumServos]int
	outputs   [NumOutputs]bool
	inputs    [NumInputs]bool
	indicator bool

	// Writes records every mutation in order.
	Writes []Write

	// Closed tracks if Close was called.
	Closed bool
}

// NewSimBank creates a SimBank with all channels zeroed.
func NewSimBank() *SimBank {
	return &SimBank{}
}

// SetAngle records the angle. Out-of-range channels are ignored.
func (s *SimBank) SetAngle(ch, angle int) {
	if ch < 0 || ch >= NumServos {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.angles[ch] = angle
	s.Writes = append(s.Writes, Write{Kind: WriteAngle, Channel: ch, Value: angle})
}

// Angle returns the last angle written to servo ch.
func (s *SimBank) Angle(ch int) int {
	if ch < 0 || ch >= NumServos {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angles[ch]
}

// SetOutput records the output state.
func (s *SimBank) SetOutput(ch int, on bool) {
	if ch < 0 || ch >= NumOutputs {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[ch] = on
	s.Writes = append(s.Writes, Write{Kind: WriteOutput, Channel: ch, Value: boolToInt(on)})
}

// Output returns the driven state of output ch.
func (s *SimBank) Output(ch int) bool {
	if ch < 0 || ch >= NumOutputs {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputs[ch]
}

// Input returns the simulated state of input ch.
func (s *SimBank) Input(ch int) bool {
	if ch < 0 || ch >= NumInputs {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs[ch]
}

// SetInputs sets the simulated input levels.
func (s *SimBank) SetInputs(in [NumInputs]bool) {
	s.mu.Lock()
	s.inputs = in
	s.mu.Unlock()
}

// SetIndicator records the indicator state.
func (s *SimBank) SetIndicator(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indicator = on
	s.Writes = append(s.Writes, Write{Kind: WriteIndicator, Value: boolToInt(on)})
}

// Indicator returns the current indicator state.
func (s *SimBank) Indicator() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indicator
}

// Close marks the bank as closed.
func (s *SimBank) Close() error {
	s.mu.Lock()
	s.Closed = true
	s.mu.Unlock()
	return nil
}

// ResetWrites clears the write log.
func (s *SimBank) ResetWrites() {
	s.mu.Lock()
	s.Writes = nil
	s.mu.Unlock()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
