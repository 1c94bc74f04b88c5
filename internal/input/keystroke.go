package input

import (
	"fmt"
	"time"
)

// KeystrokeTyper types text one character at a time: a press event, a
// release event, then a fixed pause before the next character. Total wall
// time is roughly len(text) * interval.
type KeystrokeTyper struct {
	synth    Synthesizer
	interval time.Duration
}

func NewKeystrokeTyper(synth Synthesizer, interval time.Duration) *KeystrokeTyper {
	return &KeystrokeTyper{synth: synth, interval: interval}
}

func (k *KeystrokeTyper) Typewrite(text string) error {
	for _, r := range text {
		key := string(r)
		if err := k.synth.Press(key); err != nil {
			return fmt.Errorf("press %q: %w", key, err)
		}
		if err := k.synth.Release(key); err != nil {
			return fmt.Errorf("release %q: %w", key, err)
		}
		time.Sleep(k.interval)
	}
	return nil
}
