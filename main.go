package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tranquil/cmd"
	"tranquil/internal/analysis"
	"tranquil/internal/audio"
	"tranquil/internal/bus"
	"tranquil/internal/config"
	applog "tranquil/internal/log"
	"tranquil/internal/observe"
	"tranquil/internal/params"
	"tranquil/internal/transport"
	"tranquil/internal/transport/udp"
	"tranquil/internal/tui"
	"tranquil/pkg/build"
)

// shutdownTimeout bounds the final metrics flush.
const shutdownTimeout = 2 * time.Second

// main is the entry point. The program flow is divided into three phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands (device listing)
//   - Build metrics, the OSC bus and the capture loop
//
// 2. Concurrent Phase (Hot Path):
//   - PortAudio callback (or WAV replay) analyzes and publishes blocks
//   - Bus sender and listener goroutines
//   - Optional metrics and WebSocket servers
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop the bus, close mirrors, flush metrics
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		applog.Fatal(err)
	}

	// One thread for the audio callback, one for network and UI work.
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	switch opts.Command {
	case "":
		return
	case cmd.CommandList:
		if err := listDevices(opts.Interactive); err != nil {
			applog.Fatal(err)
		}
		return
	}

	cfg := opts.Config
	if level, ok := applog.ParseLevel(cfg.EffectiveLogLevel()); ok {
		applog.SetLevel(level)
	}
	for _, w := range cfg.Warnings() {
		applog.Warnf("Config: %s", w)
	}
	applog.Infof("%s", build.GetBuildFlags())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, opts)
	_ = applog.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// listDevices prints the device table, or runs the picker and prints the
// flags for the chosen device.
func listDevices(interactive bool) error {
	if interactive {
		sel, err := tui.PickDevice()
		if err != nil {
			return err
		}
		if sel != nil {
			fmt.Printf("%s %s\n", build.GetBuildFlags().Name, sel.Flags())
		}
		return nil
	}

	devices, err := audio.ListDevices()
	if err != nil {
		return err
	}
	fmt.Println(tui.RenderDevices(devices))
	return nil
}

// run wires the pipeline and blocks until ctx is cancelled, the replay
// finishes, or a component fails.
func run(ctx context.Context, opts *cmd.Options) (err error) {
	cfg := opts.Config

	provider, err := observe.InitProvider(observe.ProviderConfig{
		ServiceName:    build.GetBuildFlags().Name,
		ServiceVersion: build.GetBuildFlags().Version,
	})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if serr := provider.Shutdown(shutdownCtx); serr != nil {
			applog.Warnf("Metrics: Shutdown: %v", serr)
		}
	}()

	metrics, err := observe.NewMetrics(provider.MeterProvider)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	writer, err := newPacketWriter(cfg)
	if err != nil {
		return err
	}

	store := params.NewStore()
	b, err := bus.New(bus.Config{
		Namespace:  cfg.Transport.Namespace,
		ListenHost: cfg.Transport.ListenHost,
		QueueSize:  cfg.Transport.QueueSize,
		Double:     cfg.Transport.OSCDouble,
	}, writer, store, bus.WithMetrics(metrics))
	if err != nil {
		writer.Close()
		return err
	}
	defer func() {
		err = errors.Join(err, b.Stop())
	}()

	if err := b.StartListener(cfg.Transport.ReceivePort, nil); err != nil {
		return err
	}

	analyzer, err := analysis.NewAnalyzer(cfg.Audio.BlockSize)
	if err != nil {
		return err
	}

	loopOpts := []audio.Option{audio.WithMetrics(metrics)}
	if cfg.Transport.WebSocketAddr != "" {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
		if err != nil {
			return err
		}
		defer ws.Close()
		loopOpts = append(loopOpts, audio.WithSinks(ws))
	}

	loop, err := audio.NewCaptureLoop(audio.Config{
		DeviceID:      cfg.Audio.InputDevice,
		SampleRate:    cfg.Audio.SampleRate,
		BlockSize:     cfg.Audio.BlockSize,
		Channels:      cfg.Audio.Channels,
		LowLatency:    cfg.Audio.LowLatency,
		GateThreshold: cfg.Audio.GateThreshold,
	}, analyzer, b, store, loopOpts...)
	if err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	if cfg.Observe.MetricsAddr != "" {
		g.Go(func() error {
			return observe.Serve(gctx, cfg.Observe.MetricsAddr, provider.Handler())
		})
	}

	g.Go(func() error {
		// A finished replay ends the whole run.
		defer cancel()
		if opts.Command == cmd.CommandReplay {
			return loop.Replay(gctx, opts.ReplayPath, opts.Realtime)
		}
		return loop.Run(gctx)
	})

	err = g.Wait()

	// ==================== SHUTDOWN PHASE (Cold Path) ====================
	// The deferred calls close the WebSocket mirror, stop the bus and flush
	// metrics, in that order.

	return err
}

// newPacketWriter returns the UDP sender, or a logging transport in dry-run
// mode.
func newPacketWriter(cfg *config.Config) (transport.PacketWriter, error) {
	if cfg.Transport.DryRun {
		applog.Infof("Dry run: OSC packets for %s are logged, not sent", cfg.TargetAddress())
		return transport.NewLoggingTransport(), nil
	}
	sender, err := udp.NewSender(cfg.TargetAddress(), cfg.Transport.SendTimeout)
	if err != nil {
		return nil, err
	}
	return sender, nil
}
