//go:build !windows

package input

// Message-based paste needs the Windows window/message primitives; on
// every other platform the chain starts at the hotkey chord.
func newNativeMessagePaste() PasteCapability { return nil }
