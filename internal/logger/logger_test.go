package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type staticChecker bool

func (s staticChecker) IsVerbose() bool { return bool(s) }

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_VerboseGating(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    int
	}{
		{name: "quiet emits warn and error only", verbose: false, want: 2},
		{name: "verbose emits everything", verbose: true, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New("test", staticChecker(tt.verbose)).WithOutput(Options{Format: "json", Output: &buf})

			log.Debug("debug %d", 1)
			log.Info("info")
			log.Warn("warn")
			log.Error("error")

			if got := len(decodeLines(t, &buf)); got != tt.want {
				t.Errorf("got %d lines, want %d", got, tt.want)
			}
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithCallback("submission", func() bool { return true }).
		WithOutput(Options{Format: "json", Output: &buf})

	log.InfoWithFields("submitted %s", []Field{
		F("request_id", "abc"),
		Count(3),
		Duration(1500 * time.Millisecond),
		Error(errors.New("boom")),
	}, "file.wav")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	checks := map[string]interface{}{
		"component":  "submission",
		"message":    "submitted file.wav",
		"request_id": "abc",
		"count":      float64(3),
		"error":      "boom",
		"level":      "info",
	}
	for key, want := range checks {
		if entry[key] != want {
			t.Errorf("%s = %v, want %v", key, entry[key], want)
		}
	}
	if _, ok := entry["duration"]; !ok {
		t.Error("expected duration field")
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New("test", staticChecker(true)).WithOutput(Options{Format: "json", Level: "warn", Output: &buf})

	log.Info("hidden")
	log.Warn("shown")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["message"] != "shown" {
		t.Errorf("unexpected entries %v", entries)
	}
}

func TestLogger_WithComponentKeepsSink(t *testing.T) {
	var buf bytes.Buffer
	log := New("root", nil).WithOutput(Options{Format: "json", Output: &buf}).WithComponent("child")

	log.Warn("hello")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["component"] != "child" {
		t.Errorf("unexpected entries %v", entries)
	}
}

func TestLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("console", nil).WithOutput(Options{Format: "console", Output: &buf})

	log.Error("went wrong")

	if !strings.Contains(buf.String(), "went wrong") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	// must not panic
	Nop().Error("nothing")
	Nop().WithComponent("x").WarnWithFields("nothing", []Field{F("k", "v")})
}
