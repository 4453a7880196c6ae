package config

import (
	"net"
	"strconv"
	"time"
)

// TargetAddress returns the outbound OSC destination as host:port.
func (c *Config) TargetAddress() string {
	return net.JoinHostPort(c.Transport.OSCIP, strconv.Itoa(c.Transport.OSCPort))
}

// ListenAddress returns the inbound OSC bind address as host:port.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.Transport.ListenHost, strconv.Itoa(c.Transport.ReceivePort))
}

// BlockDuration returns the time one block covers at the configured rate.
func (c *Config) BlockDuration() time.Duration {
	if c.Audio.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Audio.BlockSize) * time.Second / time.Duration(c.Audio.SampleRate)
}

// EffectiveLogLevel returns "debug" when Debug is set, else LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
