// SPDX-License-Identifier: MIT

// Package bus is the OSC message bus between the engine and a visual
// consumer. Outbound messages go through a bounded queue drained by a single
// sender goroutine, so publishing never blocks the audio callback. Inbound
// messages are read on a single listener goroutine, decoded with go-osc and
// written to the parameter store in arrival order.
package bus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/chabad360/go-osc/osc"

	"tranquil/internal/analysis"
	applog "tranquil/internal/log"
	"tranquil/internal/observe"
	"tranquil/internal/params"
	"tranquil/internal/transport"
	"tranquil/internal/transport/udp"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultNamespace  = "/audio"
	DefaultListenHost = "127.0.0.1"
	DefaultQueueSize  = 64
)

// errorLogEvery thins repeated send and receive failures in the log.
const errorLogEvery = 100

// Config controls addressing and queueing.
type Config struct {
	// Namespace prefixes outbound frame addresses. Default "/audio".
	Namespace string
	// ListenHost is the interface the inbound server binds. Default 127.0.0.1.
	ListenHost string
	// QueueSize is the outbound queue capacity in entries. A frame is one
	// entry. Default 64.
	QueueSize int
	// Double sends floats as OSC 'd' instead of 'f'.
	Double bool
}

// Option customises a Bus.
type Option func(*Bus)

// WithMetrics records traffic on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(b *Bus) {
		if m != nil {
			b.metrics = m
		}
	}
}

// envelope is one queue entry: a whole frame or a single message. Frames are
// carried by value so the callback's copy is never shared.
type envelope struct {
	frame   analysis.SpectralFrame
	isFrame bool
	address string
	values  []float64
}

// Bus publishes analysis results and receives control parameters over OSC.
type Bus struct {
	cfg     Config
	writer  transport.PacketWriter
	store   *params.Store
	metrics *observe.Metrics
	addrs   frameAddresses

	queue *udp.Publisher[envelope]

	mu        sync.Mutex // guards lifecycle transitions
	state     atomic.Int32
	conn      net.PacketConn
	onMessage func(address string, args []any)
	wg        sync.WaitGroup

	sent     atomic.Uint64
	failed   atomic.Uint64
	received atomic.Uint64
	rejected atomic.Uint64

	sendErrs *applog.Sampler
	recvErrs *applog.Sampler
}

// New creates a bus writing through writer and storing inbound parameters in
// store. The sender goroutine starts immediately; the bus is in Created.
func New(cfg Config, writer transport.PacketWriter, store *params.Store, opts ...Option) (*Bus, error) {
	if writer == nil {
		return nil, errors.New("bus: packet writer cannot be nil")
	}
	if store == nil {
		return nil, errors.New("bus: parameter store cannot be nil")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.ListenHost == "" {
		cfg.ListenHost = DefaultListenHost
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	b := &Bus{
		cfg:      cfg,
		writer:   writer,
		store:    store,
		metrics:  observe.Discard(),
		addrs:    newFrameAddresses(cfg.Namespace),
		sendErrs: applog.NewSampler(errorLogEvery),
		recvErrs: applog.NewSampler(errorLogEvery),
	}
	for _, opt := range opts {
		opt(b)
	}

	queue, err := udp.NewPublisher(cfg.QueueSize, b.deliver)
	if err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	b.queue = queue
	b.state.Store(int32(Created))
	b.queue.Start()

	applog.Infof("Bus: Publishing under %s (queue %d, %s floats)", cfg.Namespace, cfg.QueueSize, b.floatTag())
	return b, nil
}

func (b *Bus) floatTag() string {
	if b.cfg.Double {
		return "64-bit"
	}
	return "32-bit"
}

// State returns the lifecycle state.
func (b *Bus) State() State {
	return State(b.state.Load())
}

// Publish queues one message: a scalar for one value, a list for more. It
// never blocks. A full queue drops the message and returns a *SendError
// wrapping udp.ErrQueueFull.
func (b *Bus) Publish(address string, values ...float64) error {
	if b.State() == Stopped {
		return ErrStopped
	}
	vs := make([]float64, len(values))
	copy(vs, values)
	return b.offer(envelope{address: address, values: vs})
}

// PublishFrame queues frame as a single entry; the sender expands it into
// nine messages. It never blocks and does not allocate.
func (b *Bus) PublishFrame(frame analysis.SpectralFrame) error {
	if b.State() == Stopped {
		return ErrStopped
	}
	err := b.offer(envelope{frame: frame, isFrame: true, address: b.cfg.Namespace})
	if err != nil {
		b.metrics.FramesDropped.Add(context.Background(), 1)
	}
	return err
}

func (b *Bus) offer(env envelope) error {
	switch err := b.queue.Offer(env); {
	case err == nil:
		return nil
	case errors.Is(err, udp.ErrNotRunning):
		return ErrStopped
	default:
		return &SendError{Address: env.address, Err: err}
	}
}

// deliver runs on the sender goroutine.
func (b *Bus) deliver(env envelope) {
	if env.isFrame {
		for _, msg := range b.frameMessages(env.frame) {
			b.write(msg)
		}
		return
	}
	b.write(newMessage(env.address, b.cfg.Double, env.values...))
}

// write encodes and sends one message. Failures are counted and logged; the
// remaining messages of a frame are still attempted.
func (b *Bus) write(msg *osc.Message) {
	ctx := context.Background()
	data, err := msg.MarshalBinary()
	if err == nil {
		err = b.writer.WritePacket(data)
	}
	if err != nil {
		b.failed.Add(1)
		b.metrics.OSCSendErrors.Add(ctx, 1)
		if ok, n := b.sendErrs.Allow(); ok {
			applog.Warnf("Bus: Failed to send %s (%d failures so far): %v", msg.Address, n, err)
		}
		return
	}
	b.sent.Add(1)
	b.metrics.OSCSent.Add(ctx, 1)
}

// Stop closes the inbound socket, stops the sender and closes the writer.
// It is valid from Created and Listening; later calls are no-ops.
func (b *Bus) Stop() error {
	b.mu.Lock()
	if b.State() == Stopped {
		b.mu.Unlock()
		return nil
	}
	prev := b.State()
	b.state.Store(int32(Stopped))
	conn := b.conn
	b.mu.Unlock()

	var errs []error
	if conn != nil {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close listener: %w", err))
		}
	}
	b.wg.Wait()

	if err := b.queue.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := b.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close writer: %w", err))
	}

	st := b.Stats()
	applog.Infof("Bus: Stopped from %s (sent %d, dropped %d, failed %d, received %d, rejected %d)",
		prev, st.Sent, st.Dropped, st.Failed, st.Received, st.Rejected)
	return errors.Join(errs...)
}

// Stats returns a snapshot of the traffic counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Sent:     b.sent.Load(),
		Dropped:  b.queue.Stats().Dropped,
		Failed:   b.failed.Load(),
		Received: b.received.Load(),
		Rejected: b.rejected.Load(),
	}
}
