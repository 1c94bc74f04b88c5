package transcriber

import "strings"

// postProcess applies the configured text adjustments to a raw
// transcription, in order: trim, trailing period removal, trailing
// space, lowercasing.
func postProcess(text string, cfg Config) string {
	text = strings.TrimSpace(text)

	if cfg.RemoveTrailingPeriod {
		text = strings.TrimSuffix(text, ".")
	}
	if cfg.AddTrailingSpace {
		text += " "
	}
	if cfg.RemoveCapitalization {
		text = strings.ToLower(text)
	}

	return text
}
