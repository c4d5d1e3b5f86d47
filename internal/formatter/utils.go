package formatter

import (
	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/TruthWeaver/internal/session"
)

// symbol returns the go-termfmt emoji for key, or fallback when it has none
func symbol(key, fallback string, opts *termfmt.TerminalOptions) string {
	if s := termfmt.GetEmoji(key, opts); s != "" {
		return s
	}
	return fallback
}

// statusSymbolKey maps a session status to a go-termfmt emoji key
func statusSymbolKey(status string) (string, string) {
	switch status {
	case session.StatusSucceeded.String():
		return "info", "[ok]"
	case session.StatusFailed.String():
		return "error", "[x]"
	case session.StatusInFlight.String():
		return "warning", "[..]"
	default:
		return "pattern", "[-]"
	}
}
