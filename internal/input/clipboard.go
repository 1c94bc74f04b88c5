package input

import (
	"log"
	"time"

	"github.com/atotto/clipboard"
)

// Clipboard abstracts the system clipboard so paste behavior can be
// exercised without touching the real one.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// ClipboardPaster inserts text by writing it to the clipboard and
// triggering the focused application's paste action through an ordered
// capability chain. A failed clipboard write degrades to full keystroke
// typing; prior clipboard content is optionally captured and restored.
type ClipboardPaster struct {
	clip       Clipboard
	chain      []PasteCapability
	typer      *KeystrokeTyper
	pasteDelay time.Duration
	restore    bool
}

func NewClipboardPaster(clip Clipboard, chain []PasteCapability, typer *KeystrokeTyper, pasteDelay time.Duration, restore bool) *ClipboardPaster {
	return &ClipboardPaster{
		clip:       clip,
		chain:      chain,
		typer:      typer,
		pasteDelay: pasteDelay,
		restore:    restore,
	}
}

func (c *ClipboardPaster) Typewrite(text string) error {
	var snapshot string
	haveSnapshot := false
	if c.restore {
		// Snapshot capture is best effort: a failure here means there is
		// simply nothing to restore.
		if prev, err := c.clip.ReadAll(); err == nil {
			snapshot, haveSnapshot = prev, true
		}
	}

	if err := c.clip.WriteAll(text); err != nil {
		log.Printf("Input: clipboard write failed: %v, falling back to keystroke typing", err)
		return c.typer.Typewrite(text)
	}

	if err := c.paste(); err != nil {
		return err
	}

	if c.restore && haveSnapshot {
		time.Sleep(c.pasteDelay)
		if err := c.clip.WriteAll(snapshot); err != nil {
			log.Printf("Input: clipboard restore failed: %v", err)
		}
	}
	return nil
}

func (c *ClipboardPaster) paste() error {
	var lastErr error
	for _, strategy := range c.chain {
		handled, err := strategy.Paste()
		if err != nil {
			log.Printf("Input: %s paste failed: %v", strategy.Name(), err)
			lastErr = err
			continue
		}
		if handled {
			log.Printf("Input: pasted via %s", strategy.Name())
			return nil
		}
	}
	return lastErr
}
