package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// resetLogger restores the default state for test isolation.
func resetLogger() {
	Init(Options{})
}

func TestInit_DefaultLevel_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	Info("info line")
	if !strings.Contains(buf.String(), "info line") {
		t.Error("info should be logged at default level")
	}

	buf.Reset()
	Debug("debug line")
	if strings.Contains(buf.String(), "debug line") {
		t.Error("debug should not be logged at default level")
	}
}

func TestInit_DebugLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Output: buf})
	defer resetLogger()

	Debug("debug line")
	if !strings.Contains(buf.String(), "debug line") {
		t.Error("debug should be logged when Debug=true")
	}
}

func TestInit_QuietLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Quiet: true, Output: buf})
	defer resetLogger()

	Info("info line")
	Warn("warn line")
	if buf.Len() != 0 {
		t.Errorf("info and warn should be suppressed when Quiet=true, got %q", buf.String())
	}

	Error("error line")
	if !strings.Contains(buf.String(), "error line") {
		t.Error("error should still be logged when Quiet=true")
	}
}

func TestInit_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{JSON: true, Output: buf})
	defer resetLogger()

	Info("json line", "url", "https://example.com")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "json line" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["url"] != "https://example.com" {
		t.Errorf("url attribute = %v", entry["url"])
	}
}

func TestWith_CarriesAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	With("strategy", "dom").Info("attr line")
	out := buf.String()
	if !strings.Contains(out, "strategy=dom") {
		t.Errorf("attribute missing from output: %q", out)
	}
}
