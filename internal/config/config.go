package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/diogovalada/whisper-writer/internal/input"
	"github.com/diogovalada/whisper-writer/internal/recording"
	"github.com/diogovalada/whisper-writer/internal/transcriber"
)

type Config struct {
	Input         InputConfig         `toml:"input"`
	Recording     RecordingConfig     `toml:"recording"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type InputConfig struct {
	InputMethod          string   `toml:"input_method"`            // "keystroke", "clipboard", "streaming-process", "external-process"
	WritingKeyPressDelay float64  `toml:"writing_key_press_delay"` // seconds between synthesized keystrokes
	ClipboardPasteDelay  *float64 `toml:"clipboard_paste_delay"`   // seconds, default 0.03
	RestoreClipboard     *bool    `toml:"restore_clipboard"`       // default true
	ExternalTool         string   `toml:"external_tool"`           // default "ydotool"
	StreamingTool        string   `toml:"streaming_tool"`          // default "dotool"
}

type RecordingConfig struct {
	SampleRate  int           `toml:"sample_rate"`
	Channels    int           `toml:"channels"`
	BufferSize  int           `toml:"buffer_size"`
	MaxDuration time.Duration `toml:"max_duration"`
}

type TranscriptionConfig struct {
	APIKey               string  `toml:"api_key"`
	BaseURL              string  `toml:"base_url"`
	Model                string  `toml:"model"`
	Language             string  `toml:"language"`
	InitialPrompt        string  `toml:"initial_prompt"`
	Temperature          float64 `toml:"temperature"`
	RemoveTrailingPeriod bool    `toml:"remove_trailing_period"`
	AddTrailingSpace     bool    `toml:"add_trailing_space"`
	RemoveCapitalization bool    `toml:"remove_capitalization"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

// ToInputConfig converts the validated [input] section into the resolved
// value object the simulator consumes. Call Validate first so optional
// fields carry their defaults.
func (c *Config) ToInputConfig() input.Config {
	pasteDelay := defaultClipboardPasteDelay
	if c.Input.ClipboardPasteDelay != nil {
		pasteDelay = *c.Input.ClipboardPasteDelay
	}
	restore := true
	if c.Input.RestoreClipboard != nil {
		restore = *c.Input.RestoreClipboard
	}

	return input.Config{
		Method:           input.Method(c.Input.InputMethod),
		KeyPressDelay:    secondsToDuration(c.Input.WritingKeyPressDelay),
		PasteDelay:       secondsToDuration(pasteDelay),
		RestoreClipboard: restore,
		ExternalTool:     c.Input.ExternalTool,
		StreamingTool:    c.Input.StreamingTool,
	}
}

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:  c.Recording.SampleRate,
		Channels:    c.Recording.Channels,
		BufferSize:  c.Recording.BufferSize,
		MaxDuration: c.Recording.MaxDuration,
	}
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	config := transcriber.Config{
		APIKey:               c.Transcription.APIKey,
		BaseURL:              c.Transcription.BaseURL,
		Model:                c.Transcription.Model,
		Language:             c.Transcription.Language,
		InitialPrompt:        c.Transcription.InitialPrompt,
		Temperature:          float32(c.Transcription.Temperature),
		SampleRate:           c.Recording.SampleRate,
		Channels:             c.Recording.Channels,
		RemoveTrailingPeriod: c.Transcription.RemoveTrailingPeriod,
		AddTrailingSpace:     c.Transcription.AddTrailingSpace,
		RemoveCapitalization: c.Transcription.RemoveCapitalization,
	}

	// Check for API key in environment variable if not in config
	if config.APIKey == "" {
		config.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return config
}

const defaultClipboardPasteDelay = 0.03

// Validate checks every section and resolves optional fields to their
// defaults, so the rest of the daemon never sees a half-configured value.
func (c *Config) Validate() error {
	// Input
	validMethods := map[string]bool{
		string(input.MethodKeystroke):        true,
		string(input.MethodClipboard):        true,
		string(input.MethodStreamingProcess): true,
		string(input.MethodExternalProcess):  true,
	}
	if !validMethods[c.Input.InputMethod] {
		return fmt.Errorf("invalid input.input_method: %q (must be keystroke, clipboard, streaming-process, or external-process)", c.Input.InputMethod)
	}
	if c.Input.WritingKeyPressDelay < 0 {
		return fmt.Errorf("invalid input.writing_key_press_delay: %v (must be >= 0)", c.Input.WritingKeyPressDelay)
	}
	if c.Input.ClipboardPasteDelay == nil {
		delay := defaultClipboardPasteDelay
		c.Input.ClipboardPasteDelay = &delay
	} else if *c.Input.ClipboardPasteDelay < 0 {
		return fmt.Errorf("invalid input.clipboard_paste_delay: %v (must be >= 0)", *c.Input.ClipboardPasteDelay)
	}
	if c.Input.RestoreClipboard == nil {
		restore := true
		c.Input.RestoreClipboard = &restore
	}
	if c.Input.ExternalTool == "" {
		c.Input.ExternalTool = "ydotool"
	}
	if c.Input.StreamingTool == "" {
		c.Input.StreamingTool = "dotool"
	}

	// Recording
	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels != 1 && c.Recording.Channels != 2 {
		return fmt.Errorf("invalid recording.channels: %d (must be 1 or 2)", c.Recording.Channels)
	}
	if c.Recording.BufferSize <= 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize)
	}
	if c.Recording.MaxDuration <= 0 {
		return fmt.Errorf("invalid recording.max_duration: %v", c.Recording.MaxDuration)
	}

	// Transcription
	apiKey := c.Transcription.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("OpenAI API key required: not found in config (transcription.api_key) or environment variable (OPENAI_API_KEY)")
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-1"
	}
	if c.Transcription.Language != "" && !isValidLanguageCode(c.Transcription.Language) {
		return fmt.Errorf("invalid transcription.language: %s (use empty string for auto-detect or ISO-639-1 codes like 'en', 'es', 'fr')", c.Transcription.Language)
	}
	if c.Transcription.Temperature < 0 || c.Transcription.Temperature > 1 {
		return fmt.Errorf("invalid transcription.temperature: %v (must be between 0.0 and 1.0)", c.Transcription.Temperature)
	}

	// Notifications
	if c.Notifications.Type == "" {
		c.Notifications.Type = "log"
	}
	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func isValidLanguageCode(code string) bool {
	validCodes := map[string]bool{
		"en": true, "es": true, "fr": true, "de": true, "it": true, "pt": true,
		"ru": true, "ja": true, "ko": true, "zh": true, "ar": true, "hi": true,
		"nl": true, "sv": true, "da": true, "no": true, "fi": true, "pl": true,
		"tr": true, "he": true, "th": true, "vi": true, "id": true, "ms": true,
		"uk": true, "cs": true, "hu": true, "ro": true, "bg": true, "hr": true,
		"sk": true, "sl": true, "et": true, "lv": true, "lt": true, "mt": true,
		"cy": true, "ga": true, "eu": true, "ca": true, "gl": true, "is": true,
		"mk": true, "sq": true, "az": true, "be": true, "ka": true, "hy": true,
		"kk": true, "ky": true, "tg": true, "uz": true, "mn": true, "ne": true,
		"si": true, "km": true, "lo": true, "my": true, "fa": true, "ps": true,
		"ur": true, "bn": true, "ta": true, "te": true, "ml": true, "kn": true,
		"gu": true, "pa": true, "or": true, "as": true, "mr": true, "sa": true,
		"sw": true, "yo": true, "ig": true, "ha": true, "zu": true, "xh": true,
		"af": true, "am": true, "mg": true, "so": true, "sn": true, "rw": true,
	}
	return validCodes[code]
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "whisper-writer")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("Config: no config file found at %s, creating with defaults", configPath)
		if err := SaveDefaultConfig(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		log.Printf("Config: default configuration created successfully")
		return Load() // Recursively load the config, now file will exist
	}

	log.Printf("Config: loading configuration from %s", configPath)
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	log.Printf("Config: configuration loaded successfully")
	return &config, nil
}

func SaveDefaultConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	configContent := `# Whisper Writer Configuration
# This file is automatically generated with defaults.
# Edit values as needed - changes are applied immediately without daemon restart.

# Text Insertion Configuration
[input]
  input_method = "clipboard"       # Insertion method: "keystroke", "clipboard", "streaming-process", or "external-process"
  writing_key_press_delay = 0.005  # Delay between synthesized keystrokes in seconds
  clipboard_paste_delay = 0.03     # Wait before restoring the clipboard in seconds
  restore_clipboard = true         # Restore previous clipboard content after pasting
  external_tool = "ydotool"        # One-shot typing tool for "external-process"
  streaming_tool = "dotool"        # Persistent typing helper for "streaming-process"

# Audio Recording Configuration
[recording]
  sample_rate = 16000              # Audio sample rate in Hz (16000 recommended for speech)
  channels = 1                     # Number of audio channels (1 = mono, 2 = stereo)
  buffer_size = 1024               # Capture buffer size in frames
  max_duration = "5m"              # Maximum recording duration (e.g., "30s", "2m", "5m")

# Speech Transcription Configuration
[transcription]
  api_key = ""                     # API key (or set OPENAI_API_KEY environment variable)
  base_url = ""                    # Override the API base URL (empty = api.openai.com)
  model = "whisper-1"              # Transcription model
  language = ""                    # Language code (empty for auto-detect, "en", "it", "es", "fr", etc.)
  initial_prompt = ""              # Optional prompt to bias the transcription
  temperature = 0.0                # Sampling temperature (0.0 - 1.0)
  remove_trailing_period = false   # Strip a trailing period from the transcription
  add_trailing_space = true        # Append a space so consecutive insertions read naturally
  remove_capitalization = false    # Lowercase the entire transcription

# Desktop Notification Configuration
[notifications]
  enabled = true                   # Enable notifications
  type = "desktop"                 # Notification type ("desktop", "log", "none")

# Input method explanations:
# - "keystroke": Synthesizes one key press/release per character. Works almost everywhere, slowest.
# - "clipboard": Copies the text and triggers the focused application's paste action. Fastest.
# - "streaming-process": Drives a persistent dotool helper over its stdin. Good fit for Wayland.
# - "external-process": Invokes ydotool once per insertion (requires ydotoold daemon running).
#
# The clipboard method tries a direct window-message paste first where the
# platform supports it, then falls back to the Ctrl+V (Cmd+V on macOS) chord.
#
# Language codes: Use empty string ("") for automatic detection, or specific codes like:
# "en" (English), "it" (Italian), "es" (Spanish), "fr" (French), "de" (German), etc.
`

	if _, err := file.WriteString(configContent); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}

	return nil
}
