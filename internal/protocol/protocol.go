// Package protocol implements the framed text command protocol spoken over
// the serial line.
//
// A request frame carries nine comma-separated integers between an 'S' and an
// 'E' marker: six servo angles followed by three binary output states. Every
// well-formed request is answered with the live state of the bank in the same
// framed format, extended by the three binary inputs:
//
//	-> S90,90,90,90,90,90,1,0,1E
//	<- S90,90,90,90,90,90,1,0,1,0,1,1E
//
// The protocol is best-effort. Unparsable numeric tokens decode as 0,
// missing trailing fields stay 0 and out-of-range angles are skipped per
// field. The only reportable error is a frame whose markers are wrong, which
// is answered with ErrorResponse.
package protocol

import "errors"

// Frame markers and field delimiter.
const (
	StartMarker = 'S'
	EndMarker   = 'E'
	Delimiter   = ','
)

// Field layout.
const (
	ServoCount  = 6
	OutputCount = 3
	InputCount  = 3
	FieldCount  = ServoCount + OutputCount
	StateCount  = ServoCount + OutputCount + InputCount
)

// Angle range accepted by the dispatcher, inclusive.
const (
	MinAngle = 0
	MaxAngle = 180
)

// ErrorResponse is written back for a frame with bad markers.
const ErrorResponse = "ERR:Invalid protocol format"

// Banner is written once when the device comes up.
const Banner = "Arduino Ready"

var (
	// ErrInvalidFrame reports a line that is not enclosed in start/end markers.
	ErrInvalidFrame = errors.New("invalid protocol format")

	// ErrFieldCount reports a state response without exactly StateCount fields.
	ErrFieldCount = errors.New("unexpected field count")
)

// Frame is one decoded command: fields 0-5 are servo angles, 6-8 are output
// states (zero = off, anything else = on).
type Frame [FieldCount]int

// Angle returns the commanded angle of servo ch.
func (f Frame) Angle(ch int) int {
	return f[ch]
}

// Output returns the commanded state of output ch.
func (f Frame) Output(ch int) bool {
	return f[ServoCount+ch] != 0
}

// Snapshot is the live state of the bank read at response time.
type Snapshot struct {
	Angles  [ServoCount]int
	Outputs [OutputCount]bool
	Inputs  [InputCount]bool
}

// Actuators is the write side of the bank.
type Actuators interface {
	SetAngle(ch, angle int)
	SetOutput(ch int, on bool)
}

// StateReader is the read side of the bank.
type StateReader interface {
	Angle(ch int) int
	Output(ch int) bool
	Input(ch int) bool
}

// Device is everything the controller needs from the bank.
type Device interface {
	Actuators
	StateReader
}
