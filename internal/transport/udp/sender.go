package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	applog "tranquil/internal/log"
)

// DefaultWriteTimeout bounds a single datagram write.
const DefaultWriteTimeout = 5 * time.Millisecond

// ErrClosed is returned by WritePacket after Close.
var ErrClosed = errors.New("udp: sender closed")

// Sender writes datagrams to one target address. Each write carries a
// deadline so a stalled socket cannot hold the sender goroutine.
type Sender struct {
	conn       *net.UDPConn
	targetAddr *net.UDPAddr
	timeout    time.Duration
	mu         sync.Mutex // Protects conn during Close
	closed     bool
}

// NewSender creates a Sender targeting targetAddress ("host:port"). A
// non-positive timeout selects DefaultWriteTimeout.
func NewSender(targetAddress string, timeout time.Duration) (*Sender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}

	applog.Infof("UDP Sender: Sending to %s (write timeout %s)", conn.RemoteAddr(), timeout)

	return &Sender{
		conn:       conn,
		targetAddr: udpAddr,
		timeout:    timeout,
	}, nil
}

// Target returns the resolved destination address.
func (s *Sender) Target() *net.UDPAddr {
	return s.targetAddr
}

// WritePacket transmits data as one datagram.
func (s *Sender) WritePacket(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		return fmt.Errorf("failed to set UDP write deadline: %w", err)
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	return nil
}

// Close closes the underlying UDP connection.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	applog.Debugf("UDP Sender: Closing connection to %s", s.targetAddr)
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}
