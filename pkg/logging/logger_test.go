package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		enable slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"warn level", "warn", slog.LevelWarn},
		{"error level", "ERROR", slog.LevelError},
		{"default info", "", slog.LevelInfo},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if !logger.Enabled(ctx, tt.enable) {
				t.Fatalf("expected level %s to be enabled", tt.enable)
			}
		})
	}
}

func TestDefaultLogger(t *testing.T) {
	logger := Default()
	logger.Info("test message", "key", "value")

	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("Default() should enable info level")
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Error("Default() should not enable debug level")
	}
	if logger.Logger == nil {
		t.Fatal("Default() returned Logger with nil slog.Logger")
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", "json", &buf)
	logger.Info("patient admitted", "arrival_seq", 3)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "patient admitted" {
		t.Fatalf("unexpected msg: %v", line["msg"])
	}
	if line["arrival_seq"] != float64(3) {
		t.Fatalf("unexpected arrival_seq: %v", line["arrival_seq"])
	}
}

func TestNewWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("debug", "text", &buf).With("component", "triage")
	logger.Debug("queue restored", "size", 2)

	out := buf.String()
	if !strings.Contains(out, "component=triage") || !strings.Contains(out, "size=2") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("ignored")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("discard logger should not enable debug")
	}
}
