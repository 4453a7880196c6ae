package config

import "time"

// Defaults and limits for the engine configuration.
const (
	DefaultLogLevel = "info"

	DefaultDeviceID      = MinDeviceID // system default input
	DefaultSampleRate    = 44100       // CD-quality audio
	DefaultBlockSize     = 1024        // ~23ms at 44.1kHz
	DefaultChannels      = 1           // mono
	DefaultLowLatency    = false
	DefaultGateThreshold = 0.0 // gate open

	DefaultOSCIP       = "127.0.0.1"
	DefaultOSCPort     = 8000
	DefaultListenHost  = "127.0.0.1"
	DefaultReceivePort = 8001
	DefaultNamespace   = "/audio"
	DefaultQueueSize   = 64
	DefaultSendTimeout = 5 * time.Millisecond

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 represents system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MinBlockSize  = 2
	MaxBlockSize  = 8192
	MinPort       = 1
	MaxPort       = 65535
)

// Config is the complete runtime configuration, loaded from YAML and then
// overridden by environment variables and command line flags.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug logging.
	LogLevel  string          `yaml:"log_level"` // "debug", "info", "warn", "error".
	Audio     AudioConfig     `yaml:"audio"`
	Transport TransportConfig `yaml:"transport"`
	Observe   ObserveConfig   `yaml:"observe"`
}

// AudioConfig holds capture and analysis settings.
type AudioConfig struct {
	InputDevice   int     `yaml:"input_device"`   // PortAudio device index (-1 for default).
	SampleRate    int     `yaml:"sample_rate"`    // Sample rate in Hz.
	BlockSize     int     `yaml:"block_size"`     // Frames per callback and FFT size.
	Channels      int     `yaml:"channels"`       // Input channels, downmixed to mono.
	LowLatency    bool    `yaml:"low_latency"`    // Request the device's low input latency.
	GateThreshold float64 `yaml:"gate_threshold"` // Peak level in [0, 1] below which blocks are silenced.
}

// TransportConfig holds OSC and mirror settings.
type TransportConfig struct {
	OSCIP         string        `yaml:"osc_ip"`         // Consumer IP for outbound OSC.
	OSCPort       int           `yaml:"osc_port"`       // Consumer port for outbound OSC.
	ListenHost    string        `yaml:"listen_host"`    // Interface for inbound OSC.
	ReceivePort   int           `yaml:"receive_port"`   // Port for inbound OSC.
	Namespace     string        `yaml:"namespace"`      // Prefix of outbound addresses.
	QueueSize     int           `yaml:"queue_size"`     // Outbound queue capacity.
	SendTimeout   time.Duration `yaml:"send_timeout"`   // Per-datagram write deadline.
	OSCDouble     bool          `yaml:"osc_double"`     // Send 64-bit floats.
	WebSocketAddr string        `yaml:"websocket_addr"` // Frame mirror address, empty to disable.
	DryRun        bool          `yaml:"dry_run"`        // Log packets instead of sending them.
}

// ObserveConfig holds metrics settings.
type ObserveConfig struct {
	MetricsAddr string `yaml:"metrics_addr"` // Prometheus listen address, empty to disable.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice:   DefaultDeviceID,
			SampleRate:    DefaultSampleRate,
			BlockSize:     DefaultBlockSize,
			Channels:      DefaultChannels,
			LowLatency:    DefaultLowLatency,
			GateThreshold: DefaultGateThreshold,
		},
		Transport: TransportConfig{
			OSCIP:       DefaultOSCIP,
			OSCPort:     DefaultOSCPort,
			ListenHost:  DefaultListenHost,
			ReceivePort: DefaultReceivePort,
			Namespace:   DefaultNamespace,
			QueueSize:   DefaultQueueSize,
			SendTimeout: DefaultSendTimeout,
		},
	}
}
