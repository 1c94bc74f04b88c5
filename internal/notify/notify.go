package notify

import (
	"log"

	"github.com/gen2brain/beeep"

	"github.com/diogovalada/whisper-writer/internal/config"
)

// Notifier surfaces user-facing events. Errors go through Error so every
// implementation can make failures stand out.
type Notifier interface {
	Notify(title, message string)
	Error(message string)
}

type desktopNotifier struct{}

func (desktopNotifier) Notify(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		log.Printf("Notify: failed to send desktop notification: %v", err)
	}
}

func (desktopNotifier) Error(message string) {
	if err := beeep.Alert("Whisper Writer Error", message, ""); err != nil {
		log.Printf("Notify: failed to send desktop alert: %v", err)
	}
}

type logNotifier struct{}

func (logNotifier) Notify(title, message string) {
	log.Printf("Notify: %s: %s", title, message)
}

func (logNotifier) Error(message string) {
	log.Printf("Notify: error: %s", message)
}

type noneNotifier struct{}

func (noneNotifier) Notify(title, message string) {}
func (noneNotifier) Error(message string)         {}

// NewNotifier builds a notifier for the given type ("desktop", "log",
// "none"). Unknown types fall back to log.
func NewNotifier(enabled bool, notificationType string) Notifier {
	if !enabled {
		return noneNotifier{}
	}

	switch notificationType {
	case "desktop":
		return desktopNotifier{}
	case "none":
		return noneNotifier{}
	default:
		return logNotifier{}
	}
}

func GetNotifierBasedOnConfig(cfg *config.Config) Notifier {
	return NewNotifier(cfg.Notifications.Enabled, cfg.Notifications.Type)
}
