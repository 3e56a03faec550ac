package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitialize(t *testing.T) {
	if err := Initialize(nil); err != nil {
		t.Fatalf("Failed to initialize with default config: %v", err)
	}
	if GetLogger() == nil {
		t.Fatal("GetLogger returned nil")
	}

	cfg := &Config{Level: "debug", Console: true}
	if err := Initialize(cfg); err != nil {
		t.Fatalf("Failed to initialize with custom config: %v", err)
	}
}

func TestGetLogger(t *testing.T) {
	globalMu.Lock()
	globalLogger = nil
	globalMu.Unlock()

	logger := GetLogger()
	if logger == nil {
		t.Fatal("GetLogger returned nil")
	}
	if logger != GetLogger() {
		t.Error("GetLogger should return same instance")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo}, // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if level := parseLevel(tt.input); level != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, level, tt.expected)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := InitializeWithWriter(&Config{Level: "warn"}, &buf); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	defer Initialize(nil)

	Info("hidden message")
	Warn("visible message", Attempt(3))

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Error("Info message should be filtered at warn level")
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "attempt=3") {
		t.Errorf("Expected warn message with attempt field, got %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := InitializeWithWriter(&Config{Level: "debug", JSON: true}, &buf); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	defer Initialize(nil)

	With("component", "executor").Debug("sent", Command("zstatus call status"))

	out := buf.String()
	if !strings.Contains(out, `"component":"executor"`) || !strings.Contains(out, `"command":"zstatus call status"`) {
		t.Errorf("Unexpected JSON output %q", out)
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"zstatus call status", "zstatus call status"},
		{"zcommand dial start meetingNumber:123 password:secret", "zcommand dial start meetingNumber:123 password:***"},
		{"zcommand dial join meetingNumber:123 Password:secret\r", "zcommand dial join meetingNumber:123 Password:***"},
		{"zcommand x password:abc extra:1", "zcommand x password:*** extra:1"},
		{"dial 2754909175.013196@zoomcrc.com", "dial 2754909175.***@zoomcrc.com"},
		{"dial 2754909175@zoomcrc.com", "dial 2754909175@zoomcrc.com"},
	}

	for _, tt := range tests {
		if got := Redact(tt.input); got != tt.expected {
			t.Errorf("Redact(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestCommandMasksDialPasscode(t *testing.T) {
	a := Command("dial 2754909175.013196@zoomcrc.com")
	if strings.Contains(a.Value.String(), "013196") {
		t.Errorf("Passcode leaked into log field: %s", a.Value.String())
	}
}

func TestFieldHelpers(t *testing.T) {
	if a := Duration("elapsed", 1500*time.Millisecond); a.Key != "elapsed_ms" || a.Value.Int64() != 1500 {
		t.Errorf("Unexpected duration attr %v", a)
	}
	if a := Err(errors.New("boom")); a.Value.String() != "boom" {
		t.Errorf("Unexpected error attr %v", a)
	}
	if a := Err(nil); a.Value.String() != "" {
		t.Errorf("Expected empty error attr, got %v", a)
	}
	if a := Count("statistics", 4); a.Key != "statistics_count" {
		t.Errorf("Unexpected count attr %v", a)
	}
	if fields := Host("10.0.0.5", 2244); len(fields) != 2 {
		t.Errorf("Expected 2 host fields, got %d", len(fields))
	}
}

func TestFileLogging(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "zrctl.log")

	if err := Initialize(&Config{Level: "info", File: logFile}); err != nil {
		t.Fatalf("Failed to initialize with file: %v", err)
	}

	Info("test message 1")
	Info("test message 2")

	if err := GetLogger().Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "test message 1") || !strings.Contains(content, "test message 2") {
		t.Errorf("Log file missing messages: %q", content)
	}
	Initialize(nil)
}
