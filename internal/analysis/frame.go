package analysis

import (
	"encoding/json"
	"time"
)

// SpectralFrame is the result of analyzing one audio block. It is a value
// type: copies are independent and nothing mutates a frame once built.
type SpectralFrame struct {
	Volume    float64           // RMS amplitude of the block
	Bands     [NumBands]float64 // mean FFT magnitude per band, indexed by Band
	Onset     bool              // sudden volume increase detected
	Timestamp time.Time         // capture time of the block
}

// Band returns the value of band b.
func (f SpectralFrame) Band(b Band) float64 {
	return f.Bands[b]
}

// OnsetValue returns the onset flag as 1.0 or 0.0, the form sent over OSC.
func (f SpectralFrame) OnsetValue() float64 {
	if f.Onset {
		return 1.0
	}
	return 0.0
}

// MarshalJSON renders the frame with named bands in declaration order.
func (f SpectralFrame) MarshalJSON() ([]byte, error) {
	bands := make(orderedBands, 0, NumBands)
	for _, b := range Bands() {
		bands = append(bands, bandValue{name: b.String(), value: f.Bands[b]})
	}
	return json.Marshal(struct {
		Type      string       `json:"type"`
		Volume    float64      `json:"volume"`
		Onset     bool         `json:"onset"`
		Bands     orderedBands `json:"bands"`
		Timestamp int64        `json:"timestamp"`
	}{
		Type:      "frame",
		Volume:    f.Volume,
		Onset:     f.Onset,
		Bands:     bands,
		Timestamp: f.Timestamp.UnixMilli(),
	})
}

type bandValue struct {
	name  string
	value float64
}

// orderedBands marshals as a JSON object whose keys keep band order, which a
// Go map would not.
type orderedBands []bandValue

func (o orderedBands) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, bv := range o {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(bv.name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(bv.value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}
