package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	logger := New(Config{
		Level:     DEBUG,
		Format:    JSONFormat,
		Output:    &buf,
		Component: "test",
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 log lines, got %d", len(lines))
	}

	expected := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	for i, line := range lines {
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v", i+1, err)
		}
		if entry.Level != expected[i] {
			t.Errorf("Line %d: expected level %s, got %s", i+1, expected[i], entry.Level)
		}
		if entry.Component != "test" {
			t.Errorf("Line %d: expected component 'test', got '%s'", i+1, entry.Component)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: WARN, Format: JSONFormat, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "shown") {
		t.Errorf("Expected warn entry, got %s", lines[0])
	}
}

func TestErrorAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: INFO, Format: JSONFormat, Output: &buf})

	logger.Error("query failed", errors.New("boom"), map[string]interface{}{"records": 3})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry.Error != "boom" {
		t.Errorf("Expected error 'boom', got '%s'", entry.Error)
	}
	if entry.Fields["records"] != float64(3) {
		t.Errorf("Expected records field 3, got %v", entry.Fields["records"])
	}
}

func TestWithComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: INFO, Format: TextFormat, Output: &buf})

	child := base.WithComponent("charts").WithFields(Fields{"viewer": "abc"})
	child.Info("published", map[string]interface{}{"labels": 2})

	out := buf.String()
	if !strings.Contains(out, "[charts]") {
		t.Errorf("Expected component tag in output, got %s", out)
	}
	if !strings.Contains(out, "labels=2") || !strings.Contains(out, "viewer=abc") {
		t.Errorf("Expected merged fields in output, got %s", out)
	}

	// parent is untouched
	buf.Reset()
	base.Info("plain")
	if strings.Contains(buf.String(), "viewer") {
		t.Errorf("Parent logger should not carry child fields: %s", buf.String())
	}
}

func TestChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: INFO, Format: JSONFormat, Output: &buf})
	child := base.WithComponent("x")

	base.SetLevel(ERROR)
	child.Warn("suppressed")
	if buf.Len() != 0 {
		t.Errorf("Expected child to follow parent level, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"", INFO, false},
		{"warning", WARN, false},
		{"error", ERROR, false},
		{"fatal", FATAL, false},
		{"verbose", INFO, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if level != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, level, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("text"); err != nil || f != TextFormat {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if f, err := ParseFormat("JSON"); err != nil || f != JSONFormat {
		t.Errorf("ParseFormat(JSON) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestHumanBytes(t *testing.T) {
	if got := HumanBytes(2048); got != "2.0 kB" {
		t.Errorf("HumanBytes(2048) = %s", got)
	}
	if got := HumanBytes(-1); got != "0 B" {
		t.Errorf("HumanBytes(-1) = %s", got)
	}
}
