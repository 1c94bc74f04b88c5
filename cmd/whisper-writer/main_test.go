package main

import (
	"os"
	"testing"
	"time"

	"github.com/diogovalada/whisper-writer/internal/config"
)

func TestEscapeTomlString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "whisper-1", "whisper-1"},
		{"quotes", `key with "quotes"`, `key with \"quotes\"`},
		{"backslash", `C:\tools\dotool`, `C:\\tools\\dotool`},
		{"newline", "line one\nline two", `line one\nline two`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeTomlString(tt.in); got != tt.want {
				t.Errorf("escapeTomlString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSaveConfig_RoundTripsSpecialCharacters(t *testing.T) {
	tempDir := t.TempDir()
	originalConfigDir := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", tempDir)
	defer func() {
		if originalConfigDir == "" {
			os.Unsetenv("XDG_CONFIG_HOME")
		} else {
			os.Setenv("XDG_CONFIG_HOME", originalConfigDir)
		}
	}()

	cfg := &config.Config{
		Input: config.InputConfig{
			InputMethod:          "external-process",
			WritingKeyPressDelay: 0.005,
			ExternalTool:         `C:\tools\ydotool`,
		},
		Recording: config.RecordingConfig{
			SampleRate:  16000,
			Channels:    1,
			BufferSize:  1024,
			MaxDuration: 5 * time.Minute,
		},
		Transcription: config.TranscriptionConfig{
			APIKey:        `sk-"quoted"\key`,
			Model:         "whisper-1",
			InitialPrompt: "Names: \"Ada\" and \\Bob\\",
		},
		Notifications: config.NotificationsConfig{
			Enabled: true,
			Type:    "log",
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if err := saveConfig(cfg); err != nil {
		t.Fatalf("saveConfig() error = %v", err)
	}

	// The written file must parse back with every value intact
	loaded, err := config.Load()
	if err != nil {
		t.Fatalf("Load() after saveConfig() error = %v", err)
	}

	if loaded.Transcription.APIKey != cfg.Transcription.APIKey {
		t.Errorf("api_key = %q, want %q", loaded.Transcription.APIKey, cfg.Transcription.APIKey)
	}
	if loaded.Transcription.InitialPrompt != cfg.Transcription.InitialPrompt {
		t.Errorf("initial_prompt = %q, want %q", loaded.Transcription.InitialPrompt, cfg.Transcription.InitialPrompt)
	}
	if loaded.Input.ExternalTool != cfg.Input.ExternalTool {
		t.Errorf("external_tool = %q, want %q", loaded.Input.ExternalTool, cfg.Input.ExternalTool)
	}
	if loaded.Recording.MaxDuration != cfg.Recording.MaxDuration {
		t.Errorf("max_duration = %v, want %v", loaded.Recording.MaxDuration, cfg.Recording.MaxDuration)
	}
}
