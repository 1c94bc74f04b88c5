package input

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// StreamingProcessTyper owns a persistent helper process and drives it
// over newline-delimited commands on its stdin: a delay directive
// followed by a type directive per call. The protocol is not reentrant;
// callers must serialize Typewrite calls.
type StreamingProcessTyper struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	delay time.Duration
}

// NewStreamingProcessTyper spawns the helper and retains a handle to its
// input stream. The process lives until Cleanup.
func NewStreamingProcessTyper(tool string, delay time.Duration) (*StreamingProcessTyper, error) {
	cmd := exec.Command(tool)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open %s stdin: %w", tool, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", tool, err)
	}
	return &StreamingProcessTyper{cmd: cmd, stdin: stdin, delay: delay}, nil
}

func (s *StreamingProcessTyper) Typewrite(text string) error {
	if s.stdin == nil {
		return fmt.Errorf("typing helper already terminated")
	}
	if _, err := fmt.Fprintf(s.stdin, "typedelay %s\n", formatMillis(s.delay)); err != nil {
		return fmt.Errorf("write typedelay: %w", err)
	}
	if _, err := fmt.Fprintf(s.stdin, "type %s\n", text); err != nil {
		return fmt.Errorf("write type: %w", err)
	}
	return nil
}

// Cleanup interrupts the helper process and clears the handle. A second
// call observes no handle and does nothing.
func (s *StreamingProcessTyper) Cleanup() error {
	if s.cmd == nil {
		return nil
	}
	cmd := s.cmd
	stdin := s.stdin
	s.cmd = nil
	s.stdin = nil

	stdin.Close()
	err := cmd.Process.Signal(os.Interrupt)
	cmd.Wait()
	if err != nil {
		return fmt.Errorf("interrupt typing helper: %w", err)
	}
	return nil
}
