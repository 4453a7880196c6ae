package bus

import (
	"errors"
	"fmt"
)

var (
	// ErrStopped is returned by Publish and PublishFrame after Stop.
	ErrStopped = errors.New("bus: stopped")
	// ErrInvalidState is returned when a lifecycle call is not allowed in the
	// current state, e.g. a second StartListener.
	ErrInvalidState = errors.New("bus: invalid state")
	// ErrMalformedPacket marks an inbound datagram that is not valid OSC.
	ErrMalformedPacket = errors.New("malformed OSC packet")
)

// SendError reports an outbound message that was not queued. The caller
// loses only that message; the bus keeps running.
type SendError struct {
	Address string
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("bus: send %s: %v", e.Address, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// ReceiveError reports an inbound message that could not be stored. Address
// is empty when the whole datagram failed to decode.
type ReceiveError struct {
	Address string
	Args    []any
	Err     error
}

func (e *ReceiveError) Error() string {
	if e.Address == "" {
		return fmt.Sprintf("bus: dropped inbound packet: %v", e.Err)
	}
	return fmt.Sprintf("bus: malformed message %s %v: %v", e.Address, e.Args, e.Err)
}

func (e *ReceiveError) Unwrap() error { return e.Err }
