// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Transport.OSCPort != DefaultOSCPort || cfg.Transport.ReceivePort != DefaultReceivePort {
		t.Errorf("ports = %d/%d, want defaults", cfg.Transport.OSCPort, cfg.Transport.ReceivePort)
	}
	if cfg.TargetAddress() != "127.0.0.1:8000" || cfg.ListenAddress() != "127.0.0.1:8001" {
		t.Errorf("addresses = %s / %s", cfg.TargetAddress(), cfg.ListenAddress())
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
log_level: warn
audio:
  sample_rate: 48000
  block_size: 512
  channels: 2
  gate_threshold: 0.05
transport:
  osc_ip: 192.168.1.20
  osc_port: 9000
  send_timeout: 10ms
  osc_double: true
  websocket_addr: "127.0.0.1:8080"
observe:
  metrics_addr: ":9464"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Audio.SampleRate != 48000 || cfg.Audio.BlockSize != 512 || cfg.Audio.Channels != 2 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Transport.SendTimeout != 10*time.Millisecond {
		t.Errorf("send_timeout = %s", cfg.Transport.SendTimeout)
	}
	if cfg.TargetAddress() != "192.168.1.20:9000" {
		t.Errorf("TargetAddress = %s", cfg.TargetAddress())
	}
	// Unset keys keep their defaults.
	if cfg.Transport.ReceivePort != DefaultReceivePort || cfg.Transport.QueueSize != DefaultQueueSize {
		t.Errorf("defaults lost: %+v", cfg.Transport)
	}
	if !cfg.Transport.OSCDouble || cfg.Observe.MetricsAddr != ":9464" {
		t.Errorf("transport/observe = %+v / %+v", cfg.Transport, cfg.Observe)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := writeTempConfig(t, "audio:\n  sample_rate: 100\n")
	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_DoesNotValidate(t *testing.T) {
	path := writeTempConfig(t, "audio:\n  sample_rate: 100\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.SampleRate != 100 {
		t.Errorf("SampleRate = %d, want 100", cfg.Audio.SampleRate)
	}

	cfg.Audio.SampleRate = 48000
	if err := cfg.Validate(); err != nil {
		t.Errorf("corrected config still invalid: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnvOverrides(envMap(map[string]string{
		"ENV_OSC_IP":       "10.0.0.5",
		"ENV_OSC_PORT":     "7000",
		"ENV_RECEIVE_PORT": " 7001 ",
		"ENV_SAMPLE_RATE":  "48000",
		"ENV_BLOCK_SIZE":   "2048",
		"ENV_LOG_LEVEL":    "debug",
		"ENV_DEBUG":        "true",
	}))
	if err != nil {
		t.Fatalf("applyEnvOverrides: %v", err)
	}
	if cfg.Transport.OSCIP != "10.0.0.5" || cfg.Transport.OSCPort != 7000 || cfg.Transport.ReceivePort != 7001 {
		t.Errorf("transport = %+v", cfg.Transport)
	}
	if cfg.Audio.SampleRate != 48000 || cfg.Audio.BlockSize != 2048 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if !cfg.Debug || cfg.LogLevel != "debug" || cfg.EffectiveLogLevel() != "debug" {
		t.Errorf("debug = %v, level = %q", cfg.Debug, cfg.LogLevel)
	}
}

func TestApplyEnvOverrides_BadValues(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnvOverrides(envMap(map[string]string{
		"ENV_OSC_PORT": "eight thousand",
		"ENV_DEBUG":    "maybe",
	}))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
	if !strings.Contains(err.Error(), "ENV_OSC_PORT") || !strings.Contains(err.Error(), "ENV_DEBUG") {
		t.Errorf("error does not name both variables: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad osc ip", func(c *Config) { c.Transport.OSCIP = "localhost:8000" }, "osc_ip"},
		{"bad listen host", func(c *Config) { c.Transport.ListenHost = "" }, "listen_host"},
		{"port zero", func(c *Config) { c.Transport.OSCPort = 0 }, "osc_port"},
		{"port too high", func(c *Config) { c.Transport.ReceivePort = 70000 }, "receive_port"},
		{"sample rate low", func(c *Config) { c.Audio.SampleRate = 4000 }, "sample_rate"},
		{"sample rate high", func(c *Config) { c.Audio.SampleRate = 384000 }, "sample_rate"},
		{"block too small", func(c *Config) { c.Audio.BlockSize = 1 }, "block_size"},
		{"block too large", func(c *Config) { c.Audio.BlockSize = 16384 }, "block_size"},
		{"no channels", func(c *Config) { c.Audio.Channels = 0 }, "channels"},
		{"gate above one", func(c *Config) { c.Audio.GateThreshold = 1.5 }, "gate_threshold"},
		{"negative gate", func(c *Config) { c.Audio.GateThreshold = -0.1 }, "gate_threshold"},
		{"empty queue", func(c *Config) { c.Transport.QueueSize = 0 }, "queue_size"},
		{"zero timeout", func(c *Config) { c.Transport.SendTimeout = 0 }, "send_timeout"},
		{"namespace slash", func(c *Config) { c.Transport.Namespace = "/audio/" }, "namespace"},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, "log_level"},
		{"bad ws addr", func(c *Config) { c.Transport.WebSocketAddr = "8080" }, "websocket_addr"},
		{"device below default", func(c *Config) { c.Audio.InputDevice = -2 }, "input_device"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %s", err, tt.field)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestWarnings(t *testing.T) {
	cfg := Default()
	if w := cfg.Warnings(); len(w) != 0 {
		t.Errorf("defaults produce warnings: %v", w)
	}
	cfg.Audio.BlockSize = 1000
	w := cfg.Warnings()
	if len(w) != 1 || !strings.Contains(w[0], "1024") {
		t.Errorf("warnings = %v", w)
	}
}

func TestBlockDuration(t *testing.T) {
	cfg := Default()
	cfg.Audio.SampleRate = 48000
	cfg.Audio.BlockSize = 480
	if got := cfg.BlockDuration(); got != 10*time.Millisecond {
		t.Errorf("BlockDuration = %s, want 10ms", got)
	}
}
