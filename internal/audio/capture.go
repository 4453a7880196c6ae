// SPDX-License-Identifier: MIT
/*
Package audio captures microphone input and drives the per-block analysis
path: downmix, gain, noise gate, analysis, publish.

Real-time constraints:
  - The PortAudio callback only touches buffers allocated in NewCaptureLoop.
  - Parameters are read with a single RW-lock read each.
  - Publishing is a non-blocking queue offer; failures are counted, and
    logged at a bounded rate.
*/
package audio

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
	"go.opentelemetry.io/otel/metric"

	"tranquil/internal/analysis"
	applog "tranquil/internal/log"
	"tranquil/internal/observe"
	"tranquil/internal/params"
	"tranquil/internal/transport"
)

// errorLogEvery thins repeated per-block errors in the log.
const errorLogEvery = 100

// Config is the capture setup.
type Config struct {
	DeviceID      int     // PortAudio device index, -1 for the default input
	SampleRate    int     // Hz
	BlockSize     int     // frames per callback, equal to the analyzer block size
	Channels      int     // interleaved input channels, averaged to mono
	LowLatency    bool    // use the device's low input latency
	GateThreshold float64 // gate threshold used until /control/gate is received
}

// FramePublisher receives every analyzed frame. It must not block.
type FramePublisher interface {
	PublishFrame(frame analysis.SpectralFrame) error
}

// Stats counts what happened to captured blocks.
type Stats struct {
	Blocks         uint64 // blocks seen by the callback
	Gated          uint64 // blocks silenced by the noise gate
	AnalysisErrors uint64
	PublishErrors  uint64
}

// Option customises a CaptureLoop.
type Option func(*CaptureLoop)

// WithMetrics records frame and timing metrics on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *CaptureLoop) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSinks mirrors each frame to the given transports (e.g. WebSocket).
func WithSinks(sinks ...transport.Transport) Option {
	return func(c *CaptureLoop) {
		c.sinks = append(c.sinks, sinks...)
	}
}

// CaptureLoop owns the capture stream and the per-block pipeline.
type CaptureLoop struct {
	cfg       Config
	analyzer  analysis.BlockAnalyzer
	publisher FramePublisher
	store     *params.Store
	sinks     []transport.Transport
	metrics   *observe.Metrics

	mono       []float64          // pre-allocated downmix buffer
	deviceAttr []metric.AddOption // built once so recording does not allocate
	replayAttr []metric.AddOption

	blocks         atomic.Uint64
	gated          atomic.Uint64
	analysisErrors atomic.Uint64
	publishErrors  atomic.Uint64

	analysisLog *applog.Sampler
	publishLog  *applog.Sampler
	sinkLog     *applog.Sampler
}

// NewCaptureLoop wires analyzer, publisher and store into a capture pipeline.
// The analyzer's block size must equal cfg.BlockSize.
func NewCaptureLoop(cfg Config, analyzer analysis.BlockAnalyzer, publisher FramePublisher, store *params.Store, opts ...Option) (*CaptureLoop, error) {
	if analyzer == nil || publisher == nil || store == nil {
		return nil, errors.New("audio: analyzer, publisher and store are required")
	}
	if cfg.Channels < 1 {
		return nil, fmt.Errorf("audio: channels must be at least 1, got %d", cfg.Channels)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("audio: sample rate must be positive, got %d", cfg.SampleRate)
	}
	if analyzer.BlockSize() != cfg.BlockSize {
		return nil, fmt.Errorf("audio: analyzer block size %d does not match capture block size %d",
			analyzer.BlockSize(), cfg.BlockSize)
	}

	c := &CaptureLoop{
		cfg:         cfg,
		analyzer:    analyzer,
		publisher:   publisher,
		store:       store,
		metrics:     observe.Discard(),
		mono:        make([]float64, cfg.BlockSize),
		deviceAttr:  []metric.AddOption{observe.SourceAttr(observe.SourceDevice)},
		replayAttr:  []metric.AddOption{observe.SourceAttr(observe.SourceReplay)},
		analysisLog: applog.NewSampler(errorLogEvery),
		publishLog:  applog.NewSampler(errorLogEvery),
		sinkLog:     applog.NewSampler(errorLogEvery),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run opens the input stream and processes blocks until ctx is cancelled.
// The device is stopped and released before Run returns. Failures to select,
// open or start the device are returned as *DeviceError.
func (c *CaptureLoop) Run(ctx context.Context) error {
	if err := Initialize(); err != nil {
		return newDeviceError("initialize", err)
	}
	defer func() {
		if err := Terminate(); err != nil {
			applog.Warnf("CaptureLoop: %v", err)
		}
	}()

	device, err := InputDevice(c.cfg.DeviceID)
	if err != nil {
		return &DeviceError{Op: "select device", Err: err, Hint: "check the device id with 'tranquil list'"}
	}
	if device.MaxInputChannels < c.cfg.Channels {
		return &DeviceError{
			Op:   "select device",
			Err:  fmt.Errorf("%s has %d input channels, %d requested", device.Name, device.MaxInputChannels, c.cfg.Channels),
			Hint: hintFor(portaudio.InvalidChannelCount),
		}
	}

	latency := device.DefaultHighInputLatency
	if c.cfg.LowLatency {
		latency = device.DefaultLowInputLatency
	}

	streamParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: c.cfg.Channels,
			Latency:  latency,
		},
		SampleRate:      float64(c.cfg.SampleRate),
		FramesPerBuffer: c.cfg.BlockSize,
	}

	stream, err := portaudio.OpenStream(streamParams, c.processInputStream)
	if err != nil {
		return newDeviceError("open stream", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return newDeviceError("start stream", err)
	}

	applog.Infof("CaptureLoop: Capturing from [%s] at %d Hz, %d ch, %d frames/block (latency %s)",
		device.Name, c.cfg.SampleRate, c.cfg.Channels, c.cfg.BlockSize, latency)

	<-ctx.Done()

	var errs []error
	if err := stream.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop stream: %w", err))
	}
	if err := stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close stream: %w", err))
	}

	st := c.Stats()
	applog.Infof("CaptureLoop: Stopped after %d blocks (%d gated, %d analysis errors, %d publish errors)",
		st.Blocks, st.Gated, st.AnalysisErrors, st.PublishErrors)
	return errors.Join(errs...)
}

// processInputStream is the PortAudio callback.
func (c *CaptureLoop) processInputStream(in []float32) {
	c.processBlock(in, c.cfg.Channels, c.cfg.SampleRate, time.Now(), c.deviceAttr)
}

// processBlock runs one interleaved block through the pipeline. It performs
// no allocation apart from what frame sinks do.
func (c *CaptureLoop) processBlock(in []float32, channels, sampleRate int, ts time.Time, source []metric.AddOption) {
	ctx := context.Background()
	start := time.Now()
	c.blocks.Add(1)

	mono := downmix(c.mono, in, channels)

	gain := clampGain(c.store.Float(params.GainAddress, 1))
	threshold := clampThreshold(c.store.Float(params.GateAddress, c.cfg.GateThreshold))
	if !applyGainAndGate(mono, gain, threshold) {
		c.gated.Add(1)
	}

	frame, err := c.analyzer.AnalyzeAt(mono, sampleRate, ts)
	if err != nil {
		c.analysisErrors.Add(1)
		c.metrics.AnalysisErrors.Add(ctx, 1)
		if ok, n := c.analysisLog.Allow(); ok {
			applog.Warnf("CaptureLoop: Analysis failed (%d so far): %v", n, err)
		}
		return
	}
	c.metrics.FramesAnalyzed.Add(ctx, 1, source...)

	if err := c.publisher.PublishFrame(frame); err != nil {
		c.publishErrors.Add(1)
		if ok, n := c.publishLog.Allow(); ok {
			applog.Warnf("CaptureLoop: Publish failed (%d so far): %v", n, err)
		}
	}

	for _, sink := range c.sinks {
		if err := sink.Send(frame); err != nil {
			if ok, n := c.sinkLog.Allow(); ok {
				applog.Debugf("CaptureLoop: Frame sink failed (%d so far): %v", n, err)
			}
		}
	}

	c.metrics.CallbackDuration.Record(ctx, time.Since(start).Seconds())
}

// Stats returns a snapshot of the block counters.
func (c *CaptureLoop) Stats() Stats {
	return Stats{
		Blocks:         c.blocks.Load(),
		Gated:          c.gated.Load(),
		AnalysisErrors: c.analysisErrors.Load(),
		PublishErrors:  c.publishErrors.Load(),
	}
}
