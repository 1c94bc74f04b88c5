package input

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

// backend is one of the interchangeable insertion strategies.
type backend interface {
	Typewrite(text string) error
}

// Simulator dispatches text insertion to the backend selected at
// construction. The method never changes for the lifetime of a
// Simulator; at most one backend-owned resource (the streaming helper)
// exists per instance. Typewrite and Cleanup serialize on an internal
// mutex: no backend supports concurrent insertions, and the streaming
// helper's wire protocol corrupts under interleaved writers.
type Simulator struct {
	method  Method
	backend backend
	closer  func() error
	once    sync.Once

	mu sync.Mutex
}

// NewSimulator wires the configured backend against the real system
// primitives.
func NewSimulator(cfg Config) (*Simulator, error) {
	return newSimulator(cfg, NewSystemSynthesizer(), systemClipboard{})
}

func newSimulator(cfg Config, synth Synthesizer, clip Clipboard) (*Simulator, error) {
	s := &Simulator{method: cfg.Method}

	switch cfg.Method {
	case MethodKeystroke:
		s.backend = NewKeystrokeTyper(synth, cfg.KeyPressDelay)
	case MethodClipboard:
		typer := NewKeystrokeTyper(synth, cfg.KeyPressDelay)
		s.backend = NewClipboardPaster(clip, NewPasteChain(synth), typer, cfg.PasteDelay, cfg.RestoreClipboard)
	case MethodExternalProcess:
		s.backend = NewExternalProcessTyper(cfg.ExternalTool, cfg.KeyPressDelay)
	case MethodStreamingProcess:
		streaming, err := NewStreamingProcessTyper(cfg.StreamingTool, cfg.KeyPressDelay)
		if err != nil {
			return nil, err
		}
		s.backend = streaming
		s.closer = streaming.Cleanup
	default:
		return nil, fmt.Errorf("unknown input method %q", cfg.Method)
	}

	return s, nil
}

// Typewrite blocks until the text has been handed to the backend; the
// side effect is the text appearing at the current input focus.
// Concurrent callers are serialized, one full insertion at a time.
func (s *Simulator) Typewrite(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("Input: inserting via %s: %s", s.method, preview(text))
	return s.backend.Typewrite(text)
}

// Cleanup releases backend resources. Safe to call more than once; only
// the first call has an effect. An insertion in flight finishes before
// the backend is released.
func (s *Simulator) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	s.once.Do(func() {
		if s.closer != nil {
			err = s.closer()
		}
	})
	return err
}

const previewLimit = 120

func preview(text string) string {
	p := strings.ReplaceAll(text, "\n", "\\n")
	if runes := []rune(p); len(runes) > previewLimit {
		p = string(runes[:previewLimit]) + "…"
	}
	return p
}
