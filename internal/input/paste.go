package input

import "runtime"

// PasteCapability triggers the focused application's paste action. Paste
// reports whether the capability handled the attempt; an unhandled
// attempt falls through to the next capability in the chain.
type PasteCapability interface {
	Name() string
	Paste() (handled bool, err error)
}

// NewPasteChain builds the ordered paste strategy chain for this
// platform: the native message path where the OS supports one, then the
// hotkey chord, which always handles.
func NewPasteChain(synth Synthesizer) []PasteCapability {
	var chain []PasteCapability
	if native := newNativeMessagePaste(); native != nil {
		chain = append(chain, native)
	}
	return append(chain, NewHotkeyPaste(synth))
}

// HotkeyPaste synthesizes the platform paste chord: hold the modifier,
// press and release the letter v, release the modifier.
type HotkeyPaste struct {
	synth    Synthesizer
	modifier string
}

func NewHotkeyPaste(synth Synthesizer) *HotkeyPaste {
	modifier := "ctrl"
	if runtime.GOOS == "darwin" {
		modifier = "cmd"
	}
	return &HotkeyPaste{synth: synth, modifier: modifier}
}

func (h *HotkeyPaste) Name() string { return "hotkey" }

func (h *HotkeyPaste) Paste() (bool, error) {
	if err := h.synth.Press(h.modifier); err != nil {
		return true, err
	}
	err := h.synth.Press("v")
	if err == nil {
		err = h.synth.Release("v")
	}
	// The modifier is released even when the v press fails so no key is
	// left held down.
	if relErr := h.synth.Release(h.modifier); err == nil {
		err = relErr
	}
	return true, err
}
