//go:build linux && !tinygo

package bank

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/warthog618/go-gpiocdev"
)

// RealBank drives actual hardware using the Linux GPIO character device.
//
// The character device has no PWM support, so servo positions are held as
// commanded angles and read back from memory, the same way a hobby servo
// library reports the last written angle.
type RealBank struct {
	chip      *gpiocdev.Chip
	outputs   [NumOutputs]*gpiocdev.Line
	inputs    [NumInputs]*gpiocdev.Line
	indicator *gpiocdev.Line

	angles    [NumServos]int
	outState  [NumOutputs]bool
	lastInput [NumInputs]bool
}

// NewRealBank requests the output, input and indicator lines of table on
// the named chip (e.g. "gpiochip0").
func NewRealBank(chipName string, table Table) (*RealBank, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("pin table: %w", err)
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	b := &RealBank{chip: chip}

	for i, pin := range table.Outputs {
		l, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request output %d pin %d: %w", i, pin, err)
		}
		b.outputs[i] = l
	}

	// Inputs use pull-down to match Pi boot defaults.
	for i, pin := range table.Inputs {
		l, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request input %d pin %d: %w", i, pin, err)
		}
		b.inputs[i] = l
	}

	l, err := chip.RequestLine(table.Indicator, gpiocdev.AsOutput(0))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request indicator pin %d: %w", table.Indicator, err)
	}
	b.indicator = l

	return b, nil
}

// SetAngle records the commanded angle for servo ch. Character devices
// carry no PWM, so the servo pins are not driven; the angle is only echoed
// back in responses and status.
func (b *RealBank) SetAngle(ch, angle int) {
	if ch < 0 || ch >= NumServos {
		return
	}
	b.angles[ch] = angle
}

// Angle returns the last commanded angle of servo ch.
func (b *RealBank) Angle(ch int) int {
	if ch < 0 || ch >= NumServos {
		return 0
	}
	return b.angles[ch]
}

// SetOutput drives output ch.
func (b *RealBank) SetOutput(ch int, on bool) {
	if ch < 0 || ch >= NumOutputs {
		return
	}
	if err := b.outputs[ch].SetValue(boolToInt(on)); err != nil {
		glog.Warningf("set output %d: %v", ch, err)
		return
	}
	b.outState[ch] = on
}

// Output returns the driven level of output ch.
func (b *RealBank) Output(ch int) bool {
	if ch < 0 || ch >= NumOutputs {
		return false
	}
	v, err := b.outputs[ch].Value()
	if err != nil {
		glog.Warningf("read output %d: %v", ch, err)
		return b.outState[ch]
	}
	return v != 0
}

// Input returns the level of input ch, or the last good reading on error.
func (b *RealBank) Input(ch int) bool {
	if ch < 0 || ch >= NumInputs {
		return false
	}
	v, err := b.inputs[ch].Value()
	if err != nil {
		glog.Warningf("read input %d: %v", ch, err)
		return b.lastInput[ch]
	}
	b.lastInput[ch] = v != 0
	return b.lastInput[ch]
}

// SetIndicator drives the heartbeat indicator.
func (b *RealBank) SetIndicator(on bool) {
	if err := b.indicator.SetValue(boolToInt(on)); err != nil {
		glog.Warningf("set indicator: %v", err)
	}
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-down (matching Pi boot defaults)
// before closing so outputs do not stay driven after exit.
func (b *RealBank) Close() error {
	var errs []error

	release := func(name string, l *gpiocdev.Line) {
		if l == nil {
			return
		}
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s: %w", name, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	for i, l := range b.outputs {
		release(fmt.Sprintf("output %d", i), l)
	}
	for i, l := range b.inputs {
		release(fmt.Sprintf("input %d", i), l)
	}
	release("indicator", b.indicator)

	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
