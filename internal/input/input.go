// Package input delivers a block of text into whatever application
// currently holds keyboard focus. It offers several interchangeable
// insertion strategies: per-character keystroke synthesis, a one-shot
// external typing tool, a persistent helper process driven over a
// line-oriented protocol, and clipboard paste with fallback.
package input

import (
	"strconv"
	"strings"
	"time"
)

// Method selects one of the insertion backends. It is fixed for the
// lifetime of a Simulator.
type Method string

const (
	MethodKeystroke        Method = "keystroke"
	MethodClipboard        Method = "clipboard"
	MethodStreamingProcess Method = "streaming-process"
	MethodExternalProcess  Method = "external-process"
)

// Config carries fully resolved insertion parameters. Default resolution
// happens during configuration validation; nothing here is re-defaulted
// at use-site.
type Config struct {
	Method           Method
	KeyPressDelay    time.Duration // delay between synthesized keystrokes
	PasteDelay       time.Duration // wait before restoring the clipboard
	RestoreClipboard bool
	ExternalTool     string // one-shot typing tool, e.g. "ydotool"
	StreamingTool    string // persistent helper, e.g. "dotool"
}

// formatMillis renders a delay in milliseconds the way the typing tools
// expect it on the wire: fractional part preserved, integral values with
// an explicit ".0".
func formatMillis(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	s := strconv.FormatFloat(ms, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
