// ABOUTME: Tests for log level parsing and the color handler
// ABOUTME: Color output is disabled so lines can be compared as text

package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestColorHandler(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	logger := slog.New(newColorHandler(&buf, slog.LevelInfo)).With("component", "layout")

	logger.Debug("hidden")
	logger.WithGroup("req").Info("layout written", "item", "plex")

	line := buf.String()
	if strings.Contains(line, "hidden") {
		t.Errorf("debug record written at info level: %q", line)
	}
	for _, want := range []string{"INF ", "layout written", " component=layout", " req.item=plex"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}
