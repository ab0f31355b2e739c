package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lojasmm/chatbubble/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_FileSink(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "chatbubble.log")
	cfg := &config.Config{Log: config.Log{Level: "info", File: path}}

	closer, err := Init(cfg, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slog.Debug("hidden")
	slog.Info("chat exchange", slog.String("session_id", "sess_abc12345"))
	if err := closer.Close(); err != nil {
		t.Fatalf("failed to close log file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"chat exchange"`) || !strings.Contains(out, `"session_id":"sess_abc12345"`) {
		t.Errorf("expected JSON record, got %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug record to be filtered, got %s", out)
	}
}

func TestInit_NoSinks(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	closer, err := Init(&config.Config{Log: config.Log{Level: "debug"}}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer.Close()
	if slog.Default().Enabled(t.Context(), slog.LevelError) {
		t.Error("expected logging to be discarded without sinks")
	}
}
