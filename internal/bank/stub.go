//go:build !linux && !tinygo

package bank

import "errors"

// RealBank is not available on non-Linux platforms.
type RealBank struct{}

// NewRealBank returns an error on non-Linux platforms.
func NewRealBank(chipName string, table Table) (*RealBank, error) {
	return nil, errors.New("bank: gpio not supported on this platform (requires Linux)")
}

func (b *RealBank) SetAngle(ch, angle int)    {}
func (b *RealBank) Angle(ch int) int          { return 0 }
func (b *RealBank) SetOutput(ch int, on bool) {}
func (b *RealBank) Output(ch int) bool        { return false }
func (b *RealBank) Input(ch int) bool         { return false }
func (b *RealBank) SetIndicator(on bool)      {}

// Close is a no-op on non-Linux platforms.
func (b *RealBank) Close() error {
	return nil
}
