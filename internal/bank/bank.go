// Package bank provides the actuator/sensor bank with hardware abstraction.
// The real implementation uses the Linux GPIO character device (or the
// RP2040 peripherals when built with TinyGo).
// The simulated implementation allows running and testing without hardware.
package bank

import (
	"errors"
	"fmt"
)

// Channel group sizes. These match the command frame field layout.
const (
	NumServos  = 6
	NumOutputs = 3
	NumInputs  = 3
)

// Servo angle limits and the position servos are driven to at startup.
const (
	MinAngle     = 0
	MaxAngle     = 180
	InitialAngle = 90
)

// Bank exposes write/read primitives per channel.
type Bank interface {
	// SetAngle drives servo ch to angle.
	SetAngle(ch, angle int)

	// Angle returns the last angle written to servo ch.
	Angle(ch int) int

	// SetOutput drives binary output ch high (on) or low.
	SetOutput(ch int, on bool)

	// Output returns the driven state of binary output ch.
	Output(ch int) bool

	// Input returns the sensed state of binary input ch.
	// Hardware read errors are logged and the last known value is returned.
	Input(ch int) bool

	// SetIndicator drives the heartbeat indicator.
	SetIndicator(on bool)

	// Close releases hardware resources.
	Close() error
}

// Table maps logical channel indices to physical pin numbers.
type Table struct {
	Servos    [NumServos]int
	Outputs   [NumOutputs]int
	Inputs    [NumInputs]int
	Indicator int
}

// DefaultTable is the Arduino Uno pin map the protocol was defined against.
var DefaultTable = Table{
	Servos:    [NumServos]int{3, 5, 6, 9, 10, 11},
	Outputs:   [NumOutputs]int{8, 12, 13},
	Inputs:    [NumInputs]int{2, 4, 7},
	Indicator: 14, // A0
}

// ErrPinConflict is returned by Validate when a pin is assigned twice.
var ErrPinConflict = errors.New("bank: pin assigned to more than one channel")

// Validate checks that every pin is non-negative and used at most once.
func (t Table) Validate() error {
	seen := make(map[int]string)
	check := func(group string, idx, pin int) error {
		name := fmt.Sprintf("%s[%d]", group, idx)
		if pin < 0 {
			return fmt.Errorf("%s: negative pin %d", name, pin)
		}
		if prev, ok := seen[pin]; ok {
			return fmt.Errorf("%w: pin %d used by %s and %s", ErrPinConflict, pin, prev, name)
		}
		seen[pin] = name
		return nil
	}
	for i, p := range t.Servos {
		if err := check("servo", i, p); err != nil {
			return err
		}
	}
	for i, p := range t.Outputs {
		if err := check("output", i, p); err != nil {
			return err
		}
	}
	for i, p := range t.Inputs {
		if err := check("input", i, p); err != nil {
			return err
		}
	}
	return check("indicator", 0, t.Indicator)
}

// Initialize puts the bank in its power-on state: outputs low,
// servos at InitialAngle, indicator low.
func Initialize(b Bank) {
	for i := 0; i < NumOutputs; i++ {
		b.SetOutput(i, false)
	}
	b.SetIndicator(false)
	for i := 0; i < NumServos; i++ {
		b.SetAngle(i, InitialAngle)
	}
}
