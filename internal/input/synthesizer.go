package input

import "github.com/go-vgo/robotgo"

// Synthesizer emits low-level key events. The production implementation
// drives the OS input queue; tests substitute a recording fake.
type Synthesizer interface {
	Press(key string) error
	Release(key string) error
}

type robotgoSynthesizer struct{}

// NewSystemSynthesizer returns the synthesizer backed by the operating
// system's input injection facility.
func NewSystemSynthesizer() Synthesizer {
	return robotgoSynthesizer{}
}

func (robotgoSynthesizer) Press(key string) error {
	return robotgo.KeyToggle(key, "down")
}

func (robotgoSynthesizer) Release(key string) error {
	return robotgo.KeyToggle(key, "up")
}
