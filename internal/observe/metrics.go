// Package observe exposes tranquil's OpenTelemetry instruments and the
// Prometheus endpoint they are scraped from.
//
// Components take a *Metrics at construction. Tests build one from an SDK
// meter provider with a ManualReader; code that does not care uses Discard.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope for all tranquil metrics.
const meterName = "tranquil"

// Metric sources, recorded as the "source" attribute on frame counters.
const (
	SourceDevice = "device"
	SourceReplay = "replay"
)

// Metrics holds every instrument the engine records. The OTel types handle
// their own synchronisation, so a Metrics is safe for concurrent use,
// including from the audio callback.
type Metrics struct {
	// FramesAnalyzed counts blocks turned into frames.
	FramesAnalyzed metric.Int64Counter
	// FramesDropped counts frames rejected by a full publish queue.
	FramesDropped metric.Int64Counter
	// AnalysisErrors counts blocks the analyzer rejected.
	AnalysisErrors metric.Int64Counter

	// OSCSent counts datagrams written to the consumer.
	OSCSent metric.Int64Counter
	// OSCSendErrors counts failed datagram writes.
	OSCSendErrors metric.Int64Counter
	// OSCReceived counts inbound messages stored as parameters.
	OSCReceived metric.Int64Counter
	// OSCRejected counts malformed inbound messages.
	OSCRejected metric.Int64Counter

	// CallbackDuration tracks time spent in the per-block path, in seconds.
	CallbackDuration metric.Float64Histogram
}

// callbackBuckets covers sub-millisecond work up to a full 1024-sample block
// at 44.1kHz (~23ms).
var callbackBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05,
}

// NewMetrics creates all instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FramesAnalyzed, err = m.Int64Counter("tranquil.frames.analyzed",
		metric.WithDescription("Audio blocks analyzed into spectral frames."),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64Counter("tranquil.frames.dropped",
		metric.WithDescription("Frames dropped because the publish queue was full."),
	); err != nil {
		return nil, err
	}
	if met.AnalysisErrors, err = m.Int64Counter("tranquil.analysis.errors",
		metric.WithDescription("Audio blocks rejected by the analyzer."),
	); err != nil {
		return nil, err
	}
	if met.OSCSent, err = m.Int64Counter("tranquil.osc.sent",
		metric.WithDescription("OSC datagrams sent."),
	); err != nil {
		return nil, err
	}
	if met.OSCSendErrors, err = m.Int64Counter("tranquil.osc.send_errors",
		metric.WithDescription("OSC datagram writes that failed."),
	); err != nil {
		return nil, err
	}
	if met.OSCReceived, err = m.Int64Counter("tranquil.osc.received",
		metric.WithDescription("Inbound OSC messages stored as parameters."),
	); err != nil {
		return nil, err
	}
	if met.OSCRejected, err = m.Int64Counter("tranquil.osc.rejected",
		metric.WithDescription("Inbound OSC messages dropped as malformed."),
	); err != nil {
		return nil, err
	}
	if met.CallbackDuration, err = m.Float64Histogram("tranquil.callback.duration",
		metric.WithDescription("Time spent processing one audio block."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(callbackBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Discard returns instruments that record nothing.
func Discard() *Metrics {
	met, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		// The no-op provider never fails.
		panic("observe: no-op metrics: " + err.Error())
	}
	return met
}

// SourceAttr returns the "source" attribute as a reusable option, so hot
// paths can build it once.
func SourceAttr(source string) metric.MeasurementOption {
	return metric.WithAttributeSet(attribute.NewSet(attribute.String("source", source)))
}

// RecordFrame counts one analyzed frame from source.
func (m *Metrics) RecordFrame(ctx context.Context, source string) {
	m.FramesAnalyzed.Add(ctx, 1, SourceAttr(source))
}

// RecordRejected counts a malformed inbound message with a short reason.
func (m *Metrics) RecordRejected(ctx context.Context, reason string) {
	m.OSCRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
