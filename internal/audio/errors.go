package audio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// DeviceError reports a failure to open or run the capture device. Hint is a
// human-readable remediation.
type DeviceError struct {
	Op   string
	Err  error
	Hint string
}

func (e *DeviceError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("audio: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("audio: %s: %v (%s)", e.Op, e.Err, e.Hint)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func newDeviceError(op string, err error) *DeviceError {
	return &DeviceError{Op: op, Err: err, Hint: hintFor(err)}
}

// hintFor maps PortAudio failures to the advice a user needs.
func hintFor(err error) string {
	switch {
	case errors.Is(err, portaudio.DeviceUnavailable):
		return "device is busy or disconnected; close other applications using it or pick another with 'tranquil list'"
	case errors.Is(err, portaudio.InvalidSampleRate):
		return "device does not support this sample rate; try its default rate shown by 'tranquil list'"
	case errors.Is(err, portaudio.InvalidChannelCount):
		return "device does not have that many input channels; lower --channels"
	case errors.Is(err, portaudio.InvalidDevice):
		return "check the device id with 'tranquil list'"
	case errors.Is(err, portaudio.BufferTooBig), errors.Is(err, portaudio.BufferTooSmall):
		return "try a different --block-size"
	default:
		return "check the device id, try a different sample rate or block size"
	}
}
