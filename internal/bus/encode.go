package bus

import (
	"github.com/chabad360/go-osc/osc"

	"tranquil/internal/analysis"
)

// frameAddresses holds the nine outbound addresses, built once per bus so the
// sender does not concatenate strings per frame.
type frameAddresses struct {
	volume string
	onset  string
	bands  [analysis.NumBands]string
}

func newFrameAddresses(namespace string) frameAddresses {
	a := frameAddresses{
		volume: namespace + "/volume",
		onset:  namespace + "/onset",
	}
	for _, b := range analysis.Bands() {
		a.bands[b] = namespace + "/bands/" + b.String()
	}
	return a
}

// newMessage builds an OSC message carrying values as float32 ('f') or,
// when double is set, float64 ('d').
func newMessage(address string, double bool, values ...float64) *osc.Message {
	msg := osc.NewMessage(address)
	for _, v := range values {
		if double {
			msg.Append(v)
		} else {
			msg.Append(float32(v))
		}
	}
	return msg
}

// frameMessages expands frame into volume, onset and one message per band,
// in that order.
func (b *Bus) frameMessages(frame analysis.SpectralFrame) []*osc.Message {
	msgs := make([]*osc.Message, 0, 2+analysis.NumBands)
	msgs = append(msgs,
		newMessage(b.addrs.volume, b.cfg.Double, frame.Volume),
		newMessage(b.addrs.onset, b.cfg.Double, frame.OnsetValue()),
	)
	for _, band := range analysis.Bands() {
		msgs = append(msgs, newMessage(b.addrs.bands[band], b.cfg.Double, frame.Bands[band]))
	}
	return msgs
}
