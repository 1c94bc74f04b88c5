package daemon

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diogovalada/whisper-writer/internal/pipeline"
)

// setupTestConfig points XDG_CONFIG_HOME at a temp directory holding a
// minimal valid config. The keystroke method keeps simulator creation
// free of helper processes.
func setupTestConfig(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()
	originalConfigDir := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", tempDir)
	t.Cleanup(func() {
		if originalConfigDir == "" {
			os.Unsetenv("XDG_CONFIG_HOME")
		} else {
			os.Setenv("XDG_CONFIG_HOME", originalConfigDir)
		}
	})

	configPath := filepath.Join(tempDir, "whisper-writer", "config.toml")
	os.MkdirAll(filepath.Dir(configPath), 0755)
	configContent := `[input]
input_method = "keystroke"
writing_key_press_delay = 0.005

[recording]
sample_rate = 16000
channels = 1
buffer_size = 1024
max_duration = "5m"

[transcription]
api_key = "test-key"
model = "whisper-1"

[notifications]
enabled = true
type = "log"`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNew(t *testing.T) {
	setupTestConfig(t)

	daemon, err := New()
	if err != nil {
		t.Errorf("New() error = %v", err)
		return
	}

	if daemon == nil {
		t.Errorf("New() returned nil")
		return
	}

	// Test that daemon has required components
	if daemon.notifier == nil {
		t.Errorf("Daemon notifier is nil")
	}

	if daemon.configMgr == nil {
		t.Errorf("Daemon config manager is nil")
	}

	if daemon.simulator == nil {
		t.Errorf("Daemon input simulator is nil")
	}
}

func TestDaemon_Status(t *testing.T) {
	setupTestConfig(t)

	daemon, err := New()
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}

	// Test initial status (should be idle with no pipeline)
	status := daemon.status()
	if status != "idle" {
		t.Errorf("Initial status = %s, want idle", status)
	}
}

func TestDaemon_Toggle(t *testing.T) {
	setupTestConfig(t)

	daemon, err := New()
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}

	// Test toggle from idle to recording
	daemon.toggle()
	status := daemon.status()
	t.Logf("Status after first toggle = %s", status)

	// Test toggle from recording to idle (abort)
	daemon.toggle()
	status = daemon.status()
	t.Logf("Status after second toggle = %s", status)
}

func TestDaemon_Handle(t *testing.T) {
	setupTestConfig(t)

	daemon, err := New()
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}

	// Test status command (simpler test without goroutines)
	t.Run("status_command", func(t *testing.T) {
		mockConn := &MockConn{
			readData:  []byte("s\n"),
			writeData: []byte{},
		}

		// Initialize WaitGroup to avoid panic
		daemon.wg.Add(1)

		// Handle the command
		daemon.handle(mockConn)

		// Check response
		response := string(mockConn.writeData)
		if response != "STATUS status=idle\n" {
			t.Errorf("handle() response = %q, want %q", response, "STATUS status=idle\n")
		}
	})
}

// MockConn implements net.Conn for testing
type MockConn struct {
	readData  []byte
	writeData []byte
	readPos   int
}

func (m *MockConn) Read(b []byte) (n int, err error) {
	if m.readPos >= len(m.readData) {
		return 0, io.EOF
	}
	n = copy(b, m.readData[m.readPos:])
	m.readPos += n
	return n, nil
}

func (m *MockConn) Write(b []byte) (n int, err error) {
	m.writeData = append(m.writeData, b...)
	return len(b), nil
}

func (m *MockConn) Close() error                       { return nil }
func (m *MockConn) LocalAddr() net.Addr                { return nil }
func (m *MockConn) RemoteAddr() net.Addr               { return nil }
func (m *MockConn) SetDeadline(t time.Time) error      { return nil }
func (m *MockConn) SetReadDeadline(t time.Time) error  { return nil }
func (m *MockConn) SetWriteDeadline(t time.Time) error { return nil }

func TestDaemon_OnConfigReload(t *testing.T) {
	setupTestConfig(t)

	daemon, err := New()
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}

	// Test onConfigReload method
	daemon.onConfigReload()

	// The simulator must survive a reload
	if daemon.getSimulator() == nil {
		t.Errorf("Simulator is nil after config reload")
	}
}

func TestDaemon_StopPipeline(t *testing.T) {
	setupTestConfig(t)

	daemon, err := New()
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}

	// Test stopPipeline with nil pipeline
	daemon.stopPipeline()

	// Test stopPipeline with a mock pipeline
	daemon.mu.Lock()
	daemon.pipeline = &MockPipeline{}
	daemon.mu.Unlock()

	daemon.stopPipeline()

	// Verify pipeline is set to nil
	daemon.mu.RLock()
	if daemon.pipeline != nil {
		t.Errorf("Pipeline should be nil after stopPipeline")
	}
	daemon.mu.RUnlock()
}

func TestDaemon_Handle_Commands(t *testing.T) {
	setupTestConfig(t)

	daemon, err := New()
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}

	tests := []struct {
		name     string
		command  string
		expected string
	}{
		{"toggle_command", "t\n", "OK toggled\n"},
		{"quit_command", "q\n", "OK quitting\n"},
		{"empty_insert_command", "i", "ERR empty\n"},
		{"unknown_command", "x\n", "ERR unknown="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockConn := &MockConn{
				readData:  []byte(tt.command),
				writeData: []byte{},
			}

			// Initialize WaitGroup to avoid panic
			daemon.wg.Add(1)

			// Handle the command
			daemon.handle(mockConn)

			// Check response
			response := string(mockConn.writeData)
			if tt.name == "unknown_command" {
				if len(response) < 12 || response[:12] != "ERR unknown=" {
					t.Errorf("handle() response = %q, want prefix %q", response, "ERR unknown=")
				}
			} else if response != tt.expected {
				t.Errorf("handle() response = %q, want %q", response, tt.expected)
			}
		})
	}
}

// MockPipeline implements pipeline.Pipeline for testing
type MockPipeline struct{}

func (m *MockPipeline) Run(ctx context.Context) {}
func (m *MockPipeline) Stop()                   {}
func (m *MockPipeline) Status() pipeline.Status { return pipeline.Idle }
func (m *MockPipeline) GetErrorCh() <-chan pipeline.PipelineError {
	return make(chan pipeline.PipelineError)
}
func (m *MockPipeline) GetActionCh() chan<- pipeline.Action { return make(chan pipeline.Action) }
