//go:build rp2040

package bank

import (
	"fmt"
	"machine"

	"tinygo.org/x/drivers/servo"
)

// Pulse widths of a standard hobby servo at 0 and 180 degrees.
const (
	minPulseUs = 544
	maxPulseUs = 2400
)

// PicoBank drives RP2040 peripherals directly: servos on the PWM slice of
// their pin, outputs/inputs/indicator as plain GPIO.
type PicoBank struct {
	servos    [NumServos]servo.Servo
	angles    [NumServos]int
	outputs   [NumOutputs]machine.Pin
	inputs    [NumInputs]machine.Pin
	indicator machine.Pin
}

// pwmBySlice returns the PWM controller for slice (0..7).
func pwmBySlice(slice uint8) servo.PWM {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// NewPicoBank configures every pin of table.
func NewPicoBank(table Table) (*PicoBank, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("pin table: %w", err)
	}
	b := &PicoBank{}

	for i, n := range table.Outputs {
		p := machine.Pin(n)
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
		b.outputs[i] = p
	}
	for i, n := range table.Inputs {
		p := machine.Pin(n)
		p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
		b.inputs[i] = p
	}
	b.indicator = machine.Pin(table.Indicator)
	b.indicator.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.indicator.Low()

	for i, n := range table.Servos {
		pin := machine.Pin(n)
		slice, err := machine.PWMPeripheral(pin)
		if err != nil {
			return nil, fmt.Errorf("servo %d pin %d: no pwm: %w", i, n, err)
		}
		s, err := servo.New(pwmBySlice(slice), pin)
		if err != nil {
			return nil, fmt.Errorf("servo %d pin %d: %w", i, n, err)
		}
		b.servos[i] = s
	}
	return b, nil
}

// SetAngle moves servo ch to angle.
func (b *PicoBank) SetAngle(ch, angle int) {
	if ch < 0 || ch >= NumServos {
		return
	}
	us := minPulseUs + angle*(maxPulseUs-minPulseUs)/MaxAngle
	b.servos[ch].SetMicroseconds(int16(us))
	b.angles[ch] = angle
}

// Angle returns the last angle written to servo ch.
func (b *PicoBank) Angle(ch int) int {
	if ch < 0 || ch >= NumServos {
		return 0
	}
	return b.angles[ch]
}

func (b *PicoBank) SetOutput(ch int, on bool) {
	if ch < 0 || ch >= NumOutputs {
		return
	}
	b.outputs[ch].Set(on)
}

func (b *PicoBank) Output(ch int) bool {
	if ch < 0 || ch >= NumOutputs {
		return false
	}
	return b.outputs[ch].Get()
}

func (b *PicoBank) Input(ch int) bool {
	if ch < 0 || ch >= NumInputs {
		return false
	}
	return b.inputs[ch].Get()
}

func (b *PicoBank) SetIndicator(on bool) {
	b.indicator.Set(on)
}

// Close is a no-op; pins stay configured until reset.
func (b *PicoBank) Close() error {
	return nil
}
