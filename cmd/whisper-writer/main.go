package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/diogovalada/whisper-writer/internal/bus"
	"github.com/diogovalada/whisper-writer/internal/config"
	"github.com/diogovalada/whisper-writer/internal/daemon"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=x.y.z"
var version = "dev"

func main() {
	_ = rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "whisper-writer",
	Short: "Voice-powered typing for your desktop",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		toggleCmd(),
		cancelCmd(),
		statusCmd(),
		typeCmd(),
		versionCmd(),
		stopCmd(),
		configureCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := daemon.New()
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Toggle recording on/off",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand('t')
			if err != nil {
				return fmt.Errorf("failed to toggle recording: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get current recording status",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand('s')
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func typeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "type [text]",
		Short: "Insert text through the daemon's input method",
		Long: `Insert arbitrary text into the focused application using the
configured input method. With no arguments, the text is read from stdin.

Examples:
  whisper-writer type "hello world"
  echo "from a pipe" | whisper-writer type`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) > 0 {
				text = strings.Join(args, " ")
			} else {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read text from stdin: %w", err)
				}
				text = string(data)
			}
			if text == "" {
				return fmt.Errorf("no text to insert")
			}

			resp, err := bus.SendInsertCommand(text)
			if err != nil {
				return fmt.Errorf("failed to insert text: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print application version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("whisper-writer %s\n", version)
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand('q')
			if err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel current operation",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand('c')
			if err != nil {
				return fmt.Errorf("failed to cancel operation: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for whisper-writer.
This will guide you through setting up:
- Text insertion method and timing
- OpenAI API key and model selection
- Transcription post-processing
- Notification settings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveConfig()
		},
	}
}

func runInteractiveConfig() error {
	fmt.Println("🎤 Whisper Writer Configuration Wizard")
	fmt.Println("======================================")
	fmt.Println()

	// Load existing config or create default
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	scanner := bufio.NewScanner(os.Stdin)

	// Configure input method
	for {
		fmt.Println("⌨️  Text Insertion Configuration")
		fmt.Println("--------------------------------")
		fmt.Println("Select input method:")
		fmt.Println("  1. keystroke         - Synthesized key presses (works almost everywhere, slowest)")
		fmt.Println("  2. clipboard         - Paste via the clipboard (fastest)")
		fmt.Println("  3. streaming-process - Persistent dotool helper (good for Wayland)")
		fmt.Println("  4. external-process  - One ydotool invocation per insertion")
		fmt.Printf("Method [1-4] (current: %s): ", cfg.Input.InputMethod)
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			break // keep current
		}
		switch input {
		case "1":
			cfg.Input.InputMethod = "keystroke"
		case "2":
			cfg.Input.InputMethod = "clipboard"
		case "3":
			cfg.Input.InputMethod = "streaming-process"
		case "4":
			cfg.Input.InputMethod = "external-process"
		case "keystroke", "clipboard", "streaming-process", "external-process":
			cfg.Input.InputMethod = input
		default:
			fmt.Println("❌ Error: invalid method. Please enter 1-4 or method name.")
			fmt.Println()
			continue
		}
		break
	}

	// Key press delay
	for {
		fmt.Printf("\nDelay between keystrokes in milliseconds (current: %.1f): ", cfg.Input.WritingKeyPressDelay*1000)
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			break // keep current
		}
		ms, err := strconv.ParseFloat(input, 64)
		if err != nil || ms < 0 {
			fmt.Println("❌ Error: please enter a non-negative number.")
			continue
		}
		cfg.Input.WritingKeyPressDelay = ms / 1000
		break
	}

	// Clipboard restore, only relevant for the clipboard method
	if cfg.Input.InputMethod == "clipboard" {
		for {
			restore := true
			if cfg.Input.RestoreClipboard != nil {
				restore = *cfg.Input.RestoreClipboard
			}
			fmt.Printf("\nRestore previous clipboard content after pasting [y/n] (current: %v): ", restore)
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(strings.ToLower(scanner.Text()))
			switch input {
			case "y", "yes":
				restore = true
			case "n", "no":
				restore = false
			case "":
				// keep current
			default:
				fmt.Println("❌ Error: please enter y or n.")
				continue
			}
			cfg.Input.RestoreClipboard = &restore
			break
		}
	}

	if cfg.Input.InputMethod == "external-process" {
		fmt.Println()
		fmt.Println("⚠️  ydotool requires the ydotoold daemon to be running! make sure it works")
	}

	fmt.Println()

	// Configure transcription
	fmt.Println("📝 Transcription Configuration")
	fmt.Println("------------------------------")

	fmt.Printf("API Key (current: %s, leave empty to use OPENAI_API_KEY env var): ", maskAPIKey(cfg.Transcription.APIKey))
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			cfg.Transcription.APIKey = input
		}
	}

	fmt.Printf("\nModel (current: %s, press Enter for whisper-1): ", cfg.Transcription.Model)
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			cfg.Transcription.Model = input
		} else if cfg.Transcription.Model == "" {
			cfg.Transcription.Model = "whisper-1"
		}
	}

	fmt.Printf("\nLanguage (empty for auto-detect, current: %s): ", cfg.Transcription.Language)
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		cfg.Transcription.Language = input
	}

	// Post-processing flags
	for {
		fmt.Printf("\nAppend a trailing space after each insertion [y/n] (current: %v): ", cfg.Transcription.AddTrailingSpace)
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(strings.ToLower(scanner.Text()))
		switch input {
		case "y", "yes":
			cfg.Transcription.AddTrailingSpace = true
		case "n", "no":
			cfg.Transcription.AddTrailingSpace = false
		case "":
			// keep current
		default:
			fmt.Println("❌ Error: please enter y or n.")
			continue
		}
		break
	}

	fmt.Println()

	// Configure notifications
	for {
		fmt.Println("🔔 Notification Configuration")
		fmt.Println("-----------------------------")
		fmt.Printf("Enable notifications [y/n] (current: %v): ", cfg.Notifications.Enabled)
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(strings.ToLower(scanner.Text()))
		switch input {
		case "y", "yes":
			cfg.Notifications.Enabled = true
		case "n", "no":
			cfg.Notifications.Enabled = false
		case "":
			// keep current
		default:
			fmt.Println("❌ Error: please enter y or n.")
			fmt.Println()
			continue
		}
		break
	}

	fmt.Println()

	// Configure recording duration limit
	for {
		fmt.Println("⏱️  Recording Configuration")
		fmt.Println("---------------------------")
		fmt.Printf("Maximum recording duration in minutes (current: %.0f): ", cfg.Recording.MaxDuration.Minutes())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			break // keep current
		}
		minutes, err := strconv.Atoi(input)
		if err != nil || minutes <= 0 {
			fmt.Println("❌ Error: please enter a positive number.")
			fmt.Println()
			continue
		}
		cfg.Recording.MaxDuration = time.Duration(minutes) * time.Minute
		break
	}

	fmt.Println()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Configuration validation failed: %v\n", err)
		fmt.Println("Please check your inputs and try again.")
		return err
	}

	// Save configuration
	fmt.Println("💾 Saving configuration...")
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✅ Configuration saved successfully!")
	fmt.Println()

	// Show next steps
	fmt.Println("🚀 Next Steps:")
	step := 1
	if cfg.Input.InputMethod == "external-process" {
		fmt.Printf("%d. Ensure ydotoold is running\n", step)
		step++
	}
	fmt.Printf("%d. Start the daemon: whisper-writer serve\n", step)
	step++
	fmt.Printf("%d. Test voice input: whisper-writer toggle (or bind it to a hotkey)\n", step)
	fmt.Println()

	configPath, _ := config.GetConfigPath()
	fmt.Printf("📁 Config file location: %s\n", configPath)

	return nil
}

func maskAPIKey(key string) string {
	if key == "" {
		return "<not set>"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

func saveConfig(cfg *config.Config) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	pasteDelay := 0.03
	if cfg.Input.ClipboardPasteDelay != nil {
		pasteDelay = *cfg.Input.ClipboardPasteDelay
	}
	restore := true
	if cfg.Input.RestoreClipboard != nil {
		restore = *cfg.Input.RestoreClipboard
	}

	configContent := fmt.Sprintf(`# Whisper Writer Configuration
# This file is automatically generated with defaults.
# Edit values as needed - changes are applied immediately without daemon restart.

# Text Insertion Configuration
[input]
  input_method = "%s"       # Insertion method: "keystroke", "clipboard", "streaming-process", or "external-process"
  writing_key_press_delay = %s  # Delay between synthesized keystrokes in seconds
  clipboard_paste_delay = %s     # Wait before restoring the clipboard in seconds
  restore_clipboard = %v         # Restore previous clipboard content after pasting
  external_tool = "%s"        # One-shot typing tool for "external-process"
  streaming_tool = "%s"         # Persistent typing helper for "streaming-process"

# Audio Recording Configuration
[recording]
  sample_rate = %d              # Audio sample rate in Hz (16000 recommended for speech)
  channels = %d                     # Number of audio channels (1 = mono, 2 = stereo)
  buffer_size = %d               # Capture buffer size in frames
  max_duration = "%s"              # Maximum recording duration (e.g., "30s", "2m", "5m")

# Speech Transcription Configuration
[transcription]
  api_key = "%s"                     # API key (or set OPENAI_API_KEY environment variable)
  base_url = "%s"                    # Override the API base URL (empty = api.openai.com)
  model = "%s"              # Transcription model
  language = "%s"                    # Language code (empty for auto-detect, "en", "it", "es", "fr", etc.)
  initial_prompt = "%s"              # Optional prompt to bias the transcription
  temperature = %s                 # Sampling temperature (0.0 - 1.0)
  remove_trailing_period = %v   # Strip a trailing period from the transcription
  add_trailing_space = %v       # Append a space so consecutive insertions read naturally
  remove_capitalization = %v    # Lowercase the entire transcription

# Desktop Notification Configuration
[notifications]
  enabled = %v                   # Enable notifications
  type = "%s"                 # Notification type ("desktop", "log", "none")

# Input method explanations:
# - "keystroke": Synthesizes one key press/release per character. Works almost everywhere, slowest.
# - "clipboard": Copies the text and triggers the focused application's paste action. Fastest.
# - "streaming-process": Drives a persistent dotool helper over its stdin. Good fit for Wayland.
# - "external-process": Invokes ydotool once per insertion (requires ydotoold daemon running).
#
# The clipboard method tries a direct window-message paste first where the
# platform supports it, then falls back to the Ctrl+V (Cmd+V on macOS) chord.
`,
		cfg.Input.InputMethod,
		formatFloat(cfg.Input.WritingKeyPressDelay),
		formatFloat(pasteDelay),
		restore,
		escapeTomlString(cfg.Input.ExternalTool),
		escapeTomlString(cfg.Input.StreamingTool),
		cfg.Recording.SampleRate,
		cfg.Recording.Channels,
		cfg.Recording.BufferSize,
		cfg.Recording.MaxDuration,
		escapeTomlString(cfg.Transcription.APIKey),
		escapeTomlString(cfg.Transcription.BaseURL),
		escapeTomlString(cfg.Transcription.Model),
		escapeTomlString(cfg.Transcription.Language),
		escapeTomlString(cfg.Transcription.InitialPrompt),
		formatFloat(cfg.Transcription.Temperature),
		cfg.Transcription.RemoveTrailingPeriod,
		cfg.Transcription.AddTrailingSpace,
		cfg.Transcription.RemoveCapitalization,
		cfg.Notifications.Enabled,
		cfg.Notifications.Type,
	)

	if _, err := file.WriteString(configContent); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}

	return nil
}

// formatFloat renders a float as a valid TOML float (always with a
// decimal point).
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func escapeTomlString(s string) string {
	// Escape backslashes and quotes for TOML string
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	// Replace newlines with \n literal
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
