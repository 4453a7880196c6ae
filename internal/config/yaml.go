// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "tranquil/internal/log"
	"tranquil/pkg/bitint"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultPath is the file LoadConfig looks for when no path is given.
const DefaultPath = "config.yaml"

// LoadConfig loads configuration from the YAML file at path, applies
// environment overrides and validates the result. See Load.
func LoadConfig(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides, without validating. An empty path tries DefaultPath and falls
// back to built-in defaults when it is absent. Callers that layer more
// overrides on top (command line flags) validate once at the end.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies ENV_* variables. lookup is os.LookupEnv outside
// tests. Unparseable values are errors rather than silently ignored.
func (cfg *Config) applyEnvOverrides(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(name string, dst *string) {
		if val, ok := lookup(name); ok {
			*dst = strings.TrimSpace(val)
			applog.Debugf("configuration: Overriding from %s: %s", name, *dst)
		}
	}
	integer := func(name string, dst *int) {
		if val, ok := lookup(name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: not an integer", name, val))
				return
			}
			*dst = n
			applog.Debugf("configuration: Overriding from %s: %d", name, n)
		}
	}

	str("ENV_OSC_IP", &cfg.Transport.OSCIP)
	integer("ENV_OSC_PORT", &cfg.Transport.OSCPort)
	integer("ENV_RECEIVE_PORT", &cfg.Transport.ReceivePort)
	integer("ENV_SAMPLE_RATE", &cfg.Audio.SampleRate)
	integer("ENV_BLOCK_SIZE", &cfg.Audio.BlockSize)
	str("ENV_LOG_LEVEL", &cfg.LogLevel)

	if val, ok := lookup("ENV_DEBUG"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			errs = append(errs, fmt.Errorf("ENV_DEBUG=%q: not a boolean", val))
		} else {
			cfg.Debug = b
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		add("log_level %q is not one of debug, info, warn, error, fatal", c.LogLevel)
	}

	a := c.Audio
	if a.InputDevice < MinDeviceID {
		add("audio.input_device %d must be >= %d", a.InputDevice, MinDeviceID)
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		add("audio.sample_rate %d must be within [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if a.BlockSize < MinBlockSize || a.BlockSize > MaxBlockSize {
		add("audio.block_size %d must be within [%d, %d]", a.BlockSize, MinBlockSize, MaxBlockSize)
	}
	if a.Channels < 1 {
		add("audio.channels %d must be at least 1", a.Channels)
	}
	if a.GateThreshold < 0 || a.GateThreshold > 1 {
		add("audio.gate_threshold %g must be within [0, 1]", a.GateThreshold)
	}

	t := c.Transport
	if net.ParseIP(t.OSCIP) == nil {
		add("transport.osc_ip %q is not a valid IP address", t.OSCIP)
	}
	if net.ParseIP(t.ListenHost) == nil {
		add("transport.listen_host %q is not a valid IP address", t.ListenHost)
	}
	if t.OSCPort < MinPort || t.OSCPort > MaxPort {
		add("transport.osc_port %d must be within [%d, %d]", t.OSCPort, MinPort, MaxPort)
	}
	if t.ReceivePort < MinPort || t.ReceivePort > MaxPort {
		add("transport.receive_port %d must be within [%d, %d]", t.ReceivePort, MinPort, MaxPort)
	}
	if !strings.HasPrefix(t.Namespace, "/") || strings.HasSuffix(t.Namespace, "/") {
		add("transport.namespace %q must start with '/' and not end with one", t.Namespace)
	}
	if t.QueueSize < 1 {
		add("transport.queue_size %d must be at least 1", t.QueueSize)
	}
	if t.SendTimeout <= 0 {
		add("transport.send_timeout %s must be positive", t.SendTimeout)
	}
	if t.WebSocketAddr != "" {
		if _, _, err := net.SplitHostPort(t.WebSocketAddr); err != nil {
			add("transport.websocket_addr %q: %v", t.WebSocketAddr, err)
		}
	}
	if c.Observe.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.Observe.MetricsAddr); err != nil {
			add("observe.metrics_addr %q: %v", c.Observe.MetricsAddr, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Warnings lists settings that are valid but probably unintended.
func (c *Config) Warnings() []string {
	var warnings []string
	if !bitint.IsPowerOfTwo(c.Audio.BlockSize) {
		warnings = append(warnings, fmt.Sprintf(
			"audio.block_size %d is not a power of two; FFT will be slower (next power of two is %d)",
			c.Audio.BlockSize, bitint.NextPowerOfTwo(c.Audio.BlockSize)))
	}
	if c.Transport.OSCIP == c.Transport.ListenHost && c.Transport.OSCPort == c.Transport.ReceivePort {
		warnings = append(warnings, fmt.Sprintf(
			"outbound and inbound OSC share %s:%d; published frames will be read back as parameters",
			c.Transport.OSCIP, c.Transport.OSCPort))
	}
	return warnings
}
