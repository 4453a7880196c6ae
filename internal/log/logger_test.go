package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := GetLevel()
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(prev)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   LogLevel
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warning", LevelWarn, true},
		{" Warn ", LevelWarn, true},
		{"error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"verbose", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "WARN" {
		t.Errorf("LevelWarn.String() = %q", LevelWarn.String())
	}
	if LogLevel(42).String() != "UNKNOWN" {
		t.Errorf("unknown level String() = %q", LogLevel(42).String())
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t)

	SetLevel(LevelWarn)
	Debugf("debug %d", 1)
	Infof("info %d", 2)
	Warnf("warn %d", 3)
	Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below WARN were written: %q", out)
	}
	if !strings.Contains(out, "warn 3") || !strings.Contains(out, "error 4") {
		t.Errorf("expected WARN and ERROR messages, got %q", out)
	}
	if !strings.Contains(out, "WARN") {
		t.Errorf("expected level tag in output, got %q", out)
	}
}

func TestSetLevelAtRuntime(t *testing.T) {
	buf := captureOutput(t)

	SetLevel(LevelInfo)
	Debug("hidden")
	SetLevel(LevelDebug)
	Debug("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message written at INFO level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("debug message missing at DEBUG level: %q", out)
	}
	if !Enabled(LevelDebug) {
		t.Error("Enabled(LevelDebug) = false after SetLevel(LevelDebug)")
	}
}

func TestNamed(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(LevelInfo)

	Named("bus").Infow("listener started", "port", 8001)

	out := buf.String()
	if !strings.Contains(out, "bus") || !strings.Contains(out, "8001") {
		t.Errorf("expected component and field in output, got %q", out)
	}
}
