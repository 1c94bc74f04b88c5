package input

import (
	"fmt"
	"os/exec"
	"time"
)

// ExternalProcessTyper invokes a one-shot typing tool per call. The tool
// receives the inter-key delay in milliseconds and the literal text:
//
//	<tool> type --key-delay <ms> -- <text>
//
// A non-zero exit is returned to the caller as an error; it is the
// caller's decision whether that is fatal.
type ExternalProcessTyper struct {
	tool  string
	delay time.Duration
}

func NewExternalProcessTyper(tool string, delay time.Duration) *ExternalProcessTyper {
	return &ExternalProcessTyper{tool: tool, delay: delay}
}

func (e *ExternalProcessTyper) Typewrite(text string) error {
	cmd := exec.Command(e.tool, "type", "--key-delay", formatMillis(e.delay), "--", text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", e.tool, err)
	}
	return nil
}
