package transport

// Transport delivers analysis frames to an observer (the WebSocket mirror or
// the dry-run logger). Implementations must be thread-safe and Send must not
// block: it is called from the audio callback.
type Transport interface {
	Send(data any) error
	Close() error
}

// PacketWriter writes one encoded datagram. The OSC bus owns exactly one
// PacketWriter and calls it only from its sender goroutine.
type PacketWriter interface {
	WritePacket(data []byte) error
	Close() error
}
