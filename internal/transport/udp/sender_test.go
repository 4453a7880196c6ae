package udp

import (
	"errors"
	"net"
	"testing"
	"time"
)

func listenLoopback(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSenderWritesDatagram(t *testing.T) {
	recv := listenLoopback(t)

	s, err := NewSender(recv.LocalAddr().String(), 0)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer s.Close()

	if got, want := s.Target().String(), recv.LocalAddr().String(); got != want {
		t.Errorf("Target() = %s, want %s", got, want)
	}
	if s.timeout != DefaultWriteTimeout {
		t.Errorf("timeout = %s, want default %s", s.timeout, DefaultWriteTimeout)
	}
	if err := s.WritePacket([]byte("hello")); err != nil {
		t.Fatalf("WritePacket: %v", err)
	}

	buf := make([]byte, 64)
	_ = recv.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := recv.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Errorf("received %q", buf[:n])
	}
}

func TestSenderClosed(t *testing.T) {
	recv := listenLoopback(t)
	s, err := NewSender(recv.LocalAddr().String(), time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := s.WritePacket([]byte{1}); !errors.Is(err, ErrClosed) {
		t.Errorf("WritePacket after Close = %v, want ErrClosed", err)
	}
}

func TestNewSenderBadAddress(t *testing.T) {
	if _, err := NewSender("not an address", 0); err == nil {
		t.Error("expected resolve error")
	}
}
