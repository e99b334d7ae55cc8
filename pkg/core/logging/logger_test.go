// File: logger_test.go
// Title: Logger Unit Tests
// Description: Tests for level filtering, key-value field handling, the
//              JSON and text output formats and logger immutability.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial logger test suite

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := NewWithConfig(Config{
		Level:  level,
		Format: FormatJSON,
		Output: buf,
		Name:   "test",
	})
	return logger, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &data); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	return data
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(LevelWarn)

	logger.Debug("dropped")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("messages below minimum level written: %q", buf.String())
	}

	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("warning not written at warn level")
	}
}

func TestLogger_KeyValueFields(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)

	logger.Info("analysis complete", "tokens", 12, "errors", 0, "source", "inline")

	data := decodeLine(t, buf)
	if data["message"] != "analysis complete" {
		t.Errorf("message = %v", data["message"])
	}
	if data["tokens"] != float64(12) {
		t.Errorf("tokens = %v, want 12", data["tokens"])
	}
	if data["source"] != "inline" {
		t.Errorf("source = %v, want inline", data["source"])
	}
	if data["logger"] != "test" {
		t.Errorf("logger = %v, want test", data["logger"])
	}
}

func TestLogger_OddPairsAndNonStringKeys(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)

	// a trailing value without a key and a non-string key are both dropped
	logger.Info("msg", "ok", 1, 42, "ignored", "dangling")

	data := decodeLine(t, buf)
	if data["ok"] != float64(1) {
		t.Errorf("ok = %v, want 1", data["ok"])
	}
	if _, exists := data["42"]; exists {
		t.Error("non-string key was not dropped")
	}
}

func TestLogger_ErrorWithErr(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)

	logger.ErrorWithErr("scan failed", &ParseError{Input: "x", Type: "level"})

	data := decodeLine(t, buf)
	if data["error"] != "invalid level: x" {
		t.Errorf("error = %v", data["error"])
	}
}

func TestLogger_WithMethodsDoNotMutate(t *testing.T) {
	base, buf := newTestLogger(LevelInfo)

	derived := base.WithField("component", "lexer").WithLevel(LevelDebug)

	base.Debug("should be filtered on base")
	if buf.Len() != 0 {
		t.Fatal("WithLevel on the derived logger changed the base logger")
	}

	derived.Debug("visible on derived")
	data := decodeLine(t, buf)
	if data["component"] != "lexer" {
		t.Errorf("component = %v, want lexer", data["component"])
	}
}

func TestLogger_RequestID(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)

	logger.WithRequestID("req-123").Info("handled")

	data := decodeLine(t, buf)
	if data["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", data["request_id"])
	}
}

func TestTextFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithConfig(Config{
		Level:  LevelDebug,
		Format: FormatText,
		Output: buf,
		Name:   "parser",
	})

	logger.Warn("slow parse", "duration_ms", 250)

	out := buf.String()
	for _, want := range []string{"[WRN]", "{parser}", "slow parse", "duration_ms=250"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output %q missing %q", out, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"err", LevelError, false},
		{"fatal", LevelFatal, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("console"); err != nil || f != FormatConsole {
		t.Errorf("ParseFormat(console) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) accepted an unknown format")
	}
}
