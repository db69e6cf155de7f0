package logging

import (
	"log/slog"
	"testing"
)

func TestNewLoggerDefaultLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	logger := NewLogger()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if logger.Enabled(nil, slog.LevelDebug) {
		t.Error("debug should be disabled at the default level")
	}
	if !logger.Enabled(nil, slog.LevelInfo) {
		t.Error("info should be enabled at the default level")
	}
}

func TestNewLoggerDebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	logger := NewLogger()
	if !logger.Enabled(nil, slog.LevelDebug) {
		t.Error("debug should be enabled when LOG_LEVEL=debug")
	}
}

func TestNewTextLoggerWarnLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	logger := NewTextLogger()
	if logger.Enabled(nil, slog.LevelInfo) {
		t.Error("info should be disabled when LOG_LEVEL=warn")
	}
	if !logger.Enabled(nil, slog.LevelWarn) {
		t.Error("warn should be enabled when LOG_LEVEL=warn")
	}
}
