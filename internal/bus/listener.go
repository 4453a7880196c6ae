package bus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/chabad360/go-osc/osc"

	applog "tranquil/internal/log"
	"tranquil/internal/params"
)

// maxDatagram is the largest UDP payload the listener reads.
const maxDatagram = 65536

// StartListener binds the inbound OSC socket on ListenHost:port and reads it
// on its own goroutine. Port 0 picks a free port; see ListenAddr. Only valid
// in Created: any later call fails with ErrInvalidState and binds nothing.
//
// Datagrams are decoded and stored in arrival order on that one goroutine,
// and a malformed datagram is rejected without stopping the listener.
// onMessage, when non-nil, runs on the same goroutine after each message is
// stored.
func (b *Bus) StartListener(port int, onMessage func(address string, args []any)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if st := b.State(); st != Created {
		return fmt.Errorf("%w: cannot start listener while %s", ErrInvalidState, st)
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("bus: receive port %d out of range", port)
	}

	addr := net.JoinHostPort(b.cfg.ListenHost, strconv.Itoa(port))
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("bus: listen on %s: %w", addr, err)
	}

	b.conn = conn
	b.onMessage = onMessage
	b.state.Store(int32(Listening))

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.readLoop(conn)
	}()

	applog.Infof("Bus: Listening for OSC on %s", conn.LocalAddr())
	return nil
}

// readLoop receives datagrams until conn is closed.
func (b *Bus) readLoop(conn net.PacketConn) {
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || b.State() == Stopped {
				return
			}
			if ok, count := b.recvErrs.Allow(); ok {
				applog.Warnf("Bus: Read from %s failed (%d errors so far): %v", conn.LocalAddr(), count, err)
			}
			continue
		}

		packet, err := parsePacket(buf[:n])
		if err != nil {
			b.reject(&ReceiveError{Err: fmt.Errorf("%w from %s: %w", ErrMalformedPacket, from, err)})
			continue
		}
		b.dispatch(packet)
	}
}

// dispatch stores every message of packet, unpacking nested bundles in
// order. Bundle timetags are ignored; contents apply on receipt.
func (b *Bus) dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		b.handleMessage(p)
	case *osc.Bundle:
		for _, msg := range p.Messages {
			b.handleMessage(msg)
		}
		for _, nested := range p.Bundles {
			b.dispatch(nested)
		}
	}
}

// parsePacket decodes one datagram. The decoder is fed untrusted input, so a
// panic inside it is reported as an error.
func parsePacket(data []byte) (packet osc.Packet, err error) {
	defer func() {
		if r := recover(); r != nil {
			packet, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return osc.ParsePacket(string(data))
}

// ListenAddr returns the bound inbound address, or "" before StartListener.
func (b *Bus) ListenAddr() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return ""
	}
	return b.conn.LocalAddr().String()
}

// handleMessage stores one inbound message.
func (b *Bus) handleMessage(msg *osc.Message) {
	applog.Debugf("Bus: Received %s %v", msg.Address, msg.Arguments)

	v, err := decodeArgs(msg.Arguments)
	if err != nil {
		b.reject(&ReceiveError{Address: msg.Address, Args: msg.Arguments, Err: err})
		return
	}

	b.store.Set(msg.Address, v)
	b.received.Add(1)
	b.metrics.OSCReceived.Add(context.Background(), 1)

	if b.onMessage != nil {
		b.onMessage(msg.Address, msg.Arguments)
	}
}

// decodeArgs stores every argument as a list when all are numeric, otherwise
// falls back to the first argument alone.
func decodeArgs(args []any) (params.Value, error) {
	v, err := params.FromArgs(args)
	if err == nil || len(args) < 2 {
		return v, err
	}
	f, ferr := params.FromArg(args[0])
	if ferr != nil {
		return params.Value{}, err
	}
	return params.Scalar(f), nil
}

func (b *Bus) reject(rerr *ReceiveError) {
	b.rejected.Add(1)
	reason := "invalid"
	switch {
	case errors.Is(rerr, ErrMalformedPacket):
		reason = "malformed"
	case len(rerr.Args) == 0:
		reason = "empty"
	}
	b.metrics.RecordRejected(context.Background(), reason)
	if ok, n := b.recvErrs.Allow(); ok {
		applog.Warnf("%v (%d rejected so far)", rerr, n)
	}
}
