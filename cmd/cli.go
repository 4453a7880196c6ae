// SPDX-License-Identifier: MIT

// Package cmd parses the command line into the command to run and its
// configuration. Precedence is defaults, then the YAML file, then ENV_*
// variables, then the flags the user actually set.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tranquil/internal/config"
	"tranquil/pkg/build"
)

// Commands reported in Options.Command. An empty command means cobra
// already handled the invocation (help, version).
const (
	CommandRun    = "run"
	CommandList   = "list"
	CommandReplay = "replay"
)

// Options is the parsed invocation.
type Options struct {
	Command string
	Config  *config.Config

	// Interactive selects the device picker for `list`.
	Interactive bool
	// ReplayPath and Realtime configure `replay`.
	ReplayPath string
	Realtime   bool
}

// flagValues receives the raw flag values; only changed ones are applied.
type flagValues struct {
	configPath    string
	oscIP         string
	oscPort       int
	receivePort   int
	deviceID      int
	sampleRate    int
	blockSize     int
	channels      int
	lowLatency    bool
	gateThreshold float64
	oscDouble     bool
	dryRun        bool
	wsAddr        string
	metricsAddr   string
	verbose       bool
}

// ParseArgs runs the cobra command tree against args.
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{}
	fv := &flagValues{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Long:          "Analyze live audio and publish volume, onset and band energies as OSC messages.",
		Version:       buildInfo.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, fv)
			if err != nil {
				return err
			}
			options.Command = CommandRun
			options.Config = cfg
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandList
			return nil
		},
	}
	listCmd.Flags().BoolVarP(&options.Interactive, "interactive", "i", false,
		"Pick an input device and sample rate interactively")
	rootCmd.AddCommand(listCmd)

	replayCmd := &cobra.Command{
		Use:   "replay <file.wav>",
		Short: "Analyze a WAV file instead of a live device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, fv)
			if err != nil {
				return err
			}
			options.Command = CommandReplay
			options.Config = cfg
			options.ReplayPath = args[0]
			return nil
		},
	}
	replayCmd.Flags().BoolVar(&options.Realtime, "realtime", false,
		"Pace blocks at the file's sample rate instead of as fast as possible")
	rootCmd.AddCommand(replayCmd)

	pf := rootCmd.PersistentFlags()

	// Configuration file
	pf.StringVar(&fv.configPath, "config", "",
		fmt.Sprintf("YAML configuration file (default %q if present)", config.DefaultPath))

	// Audio Device Configuration
	pf.IntVarP(&fv.deviceID, "device", "d", config.DefaultDeviceID,
		"Input device ID, -1 for the system default. Use 'list' to see devices.")
	pf.IntVarP(&fv.channels, "channels", "c", config.DefaultChannels,
		"Number of input channels, averaged to mono")
	pf.IntVarP(&fv.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&fv.blockSize, "block-size", "b", config.DefaultBlockSize,
		"Frames per block, also the FFT size (affects latency)")
	pf.BoolVarP(&fv.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")
	pf.Float64Var(&fv.gateThreshold, "gate", config.DefaultGateThreshold,
		"Noise gate threshold in [0, 1], until /control/gate is received")

	// OSC Configuration
	pf.StringVar(&fv.oscIP, "osc-ip", config.DefaultOSCIP, "IP address of the OSC consumer")
	pf.IntVar(&fv.oscPort, "osc-port", config.DefaultOSCPort, "Port of the OSC consumer")
	pf.IntVar(&fv.receivePort, "receive-port", config.DefaultReceivePort, "Port for inbound OSC parameters")
	pf.BoolVar(&fv.oscDouble, "osc-double", false, "Send 64-bit floats instead of 32-bit")
	pf.BoolVar(&fv.dryRun, "dry-run", false, "Log OSC packets instead of sending them")

	// Mirrors and metrics
	pf.StringVar(&fv.wsAddr, "ws-addr", "", "Serve a WebSocket frame mirror on this address (e.g. :8080)")
	pf.StringVar(&fv.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	// Debug Configuration
	pf.BoolVarP(&fv.verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

// loadConfig loads the file and environment, applies the flags that were set
// explicitly and validates the result once, so a flag can correct a bad file
// or environment value.
func loadConfig(cmd *cobra.Command, fv *flagValues) (*config.Config, error) {
	cfg, err := config.Load(fv.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed

	if changed("device") {
		cfg.Audio.InputDevice = fv.deviceID
	}
	if changed("channels") {
		cfg.Audio.Channels = fv.channels
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = fv.sampleRate
	}
	if changed("block-size") {
		cfg.Audio.BlockSize = fv.blockSize
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = fv.lowLatency
	}
	if changed("gate") {
		cfg.Audio.GateThreshold = fv.gateThreshold
	}
	if changed("osc-ip") {
		cfg.Transport.OSCIP = fv.oscIP
	}
	if changed("osc-port") {
		cfg.Transport.OSCPort = fv.oscPort
	}
	if changed("receive-port") {
		cfg.Transport.ReceivePort = fv.receivePort
	}
	if changed("osc-double") {
		cfg.Transport.OSCDouble = fv.oscDouble
	}
	if changed("dry-run") {
		cfg.Transport.DryRun = fv.dryRun
	}
	if changed("ws-addr") {
		cfg.Transport.WebSocketAddr = fv.wsAddr
	}
	if changed("metrics-addr") {
		cfg.Observe.MetricsAddr = fv.metricsAddr
	}
	if changed("verbose") {
		cfg.Debug = fv.verbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
