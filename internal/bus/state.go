package bus

// State is the bus lifecycle position.
type State int32

const (
	// Created: the sender runs, no inbound socket is bound yet.
	Created State = iota
	// Listening: the inbound OSC server is running.
	Listening
	// Stopped: sockets are closed and goroutines have exited. Terminal.
	Stopped
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Listening:
		return "listening"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats counts traffic in both directions.
type Stats struct {
	Sent     uint64 // datagrams written
	Dropped  uint64 // queue entries dropped because the queue was full
	Failed   uint64 // datagram encode or write failures
	Received uint64 // inbound messages stored
	Rejected uint64 // inbound messages dropped as malformed
}
