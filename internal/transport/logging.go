package transport

import (
	"encoding/json"
	"sync/atomic"

	applog "tranquil/internal/log"
)

// LoggingTransport writes frames and packets to the debug log instead of the
// network. It backs --dry-run and satisfies both Transport and PacketWriter.
type LoggingTransport struct {
	packets atomic.Uint64
	frames  atomic.Uint64
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport (dry run, nothing leaves the process)")
	return &LoggingTransport{}
}

// Send logs data as JSON at debug level.
func (lt *LoggingTransport) Send(data any) error {
	n := lt.frames.Add(1)
	if !applog.Enabled(applog.LevelDebug) {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		applog.Debugf("LOG_TRANSPORT: frame %d (%T): %+v", n, data, data)
		return nil
	}
	applog.Debugf("LOG_TRANSPORT: frame %d: %s", n, b)
	return nil
}

// WritePacket logs the packet size at debug level.
func (lt *LoggingTransport) WritePacket(data []byte) error {
	n := lt.packets.Add(1)
	applog.Debugf("LOG_TRANSPORT: packet %d (%d bytes)", n, len(data))
	return nil
}

// Counts returns how many frames and packets passed through.
func (lt *LoggingTransport) Counts() (frames, packets uint64) {
	return lt.frames.Load(), lt.packets.Load()
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	frames, packets := lt.Counts()
	applog.Debugf("LOG_TRANSPORT: Close called after %d frames, %d packets.", frames, packets)
	return nil
}

var (
	_ Transport    = (*LoggingTransport)(nil)
	_ PacketWriter = (*LoggingTransport)(nil)
)
