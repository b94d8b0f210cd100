package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npratt/tabsuspend/internal/config"
)

func testRotation() config.LogRotationConfig {
	return config.Default().LogRotation
}

func TestSetupPopupLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popup.log")

	result := SetupPopupLogger(path, slog.LevelInfo, testRotation())
	defer func() { _ = result.Close() }()

	if result.FilePath != path {
		t.Errorf("FilePath = %q, want %q", result.FilePath, path)
	}

	result.Logger.Info("test message", "key", "value")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(content), "test message") {
		t.Errorf("log file should contain 'test message', got: %s", content)
	}
	if !strings.Contains(string(content), `"key":"value"`) {
		t.Errorf("log file should contain key=value, got: %s", content)
	}
}

func TestSetupPopupLogger_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "popup.log")

	result := SetupPopupLogger(path, slog.LevelInfo, testRotation())
	result.Logger.Info("hello")
	_ = result.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file should exist: %v", err)
	}
}

func TestSetupPopupLogger_DoesNotWriteToStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popup.log")

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	result := SetupPopupLogger(path, slog.LevelInfo, testRotation())
	result.Logger.Info("this should not appear on stderr")
	_ = result.Close()

	_ = w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	if buf.Len() > 0 {
		t.Errorf("popup logger wrote to stderr: %s", buf.String())
	}
}

func TestSetupPopupLogger_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popup.log")
	if err := os.WriteFile(path, []byte("existing content\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	result := SetupPopupLogger(path, slog.LevelInfo, testRotation())
	result.Logger.Info("new message")
	_ = result.Close()

	content, _ := os.ReadFile(path)
	if !strings.Contains(string(content), "existing content") {
		t.Error("should preserve existing content")
	}
	if !strings.Contains(string(content), "new message") {
		t.Error("should append new message")
	}
}

func TestSetupPopupLogger_RespectsLevelVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popup.log")
	level := &slog.LevelVar{}
	level.Set(slog.LevelWarn)

	result := SetupPopupLogger(path, level, testRotation())
	defer func() { _ = result.Close() }()

	result.Logger.Info("info message")
	result.Logger.Warn("warn message")
	level.Set(slog.LevelDebug)
	result.Logger.Debug("debug message")

	content := string(mustRead(t, path))
	if strings.Contains(content, "info message") {
		t.Error("INFO message should be filtered out at WARN level")
	}
	if !strings.Contains(content, "warn message") {
		t.Error("WARN message should appear")
	}
	if !strings.Contains(content, "debug message") {
		t.Error("lowering the level var should let DEBUG through")
	}
}

func TestNewLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo).Info("test message", "foo", "bar")

	output := buf.String()
	if !strings.Contains(output, `"msg":"test message"`) {
		t.Errorf("output should contain the message, got: %s", output)
	}
	if !strings.Contains(output, `"foo":"bar"`) {
		t.Errorf("output should contain foo=bar, got: %s", output)
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	return data
}
