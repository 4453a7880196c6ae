package analysis

import "fmt"

// Band identifies one of the fixed analysis frequency ranges. The order of the
// constants is the order bands appear in frames and on the wire.
type Band int

const (
	SubBass Band = iota
	Bass
	LowMid
	Mid
	HighMid
	Presence
	Brilliance

	// NumBands is the number of fixed frequency bands.
	NumBands = int(Brilliance) + 1
)

// FrequencyBand defines the name and inclusive frequency range of a band.
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
}

var bandTable = [NumBands]FrequencyBand{
	SubBass:    {Name: "sub_bass", LowHz: 20, HighHz: 60},
	Bass:       {Name: "bass", LowHz: 60, HighHz: 250},
	LowMid:     {Name: "low_mid", LowHz: 250, HighHz: 500},
	Mid:        {Name: "mid", LowHz: 500, HighHz: 2000},
	HighMid:    {Name: "high_mid", LowHz: 2000, HighHz: 4000},
	Presence:   {Name: "presence", LowHz: 4000, HighHz: 6000},
	Brilliance: {Name: "brilliance", LowHz: 6000, HighHz: 20000},
}

// Bands returns all bands in declaration order.
func Bands() [NumBands]Band {
	var out [NumBands]Band
	for i := range out {
		out[i] = Band(i)
	}
	return out
}

// String returns the band's wire name, e.g. "low_mid".
func (b Band) String() string {
	if b < 0 || int(b) >= NumBands {
		return fmt.Sprintf("Band(%d)", int(b))
	}
	return bandTable[b].Name
}

// Range returns the inclusive frequency range of the band in Hz.
func (b Band) Range() (low, high float64) {
	r := bandTable[b]
	return r.LowHz, r.HighHz
}

// Contains reports whether freq lies inside the band, bounds included.
func (b Band) Contains(freq float64) bool {
	low, high := b.Range()
	return freq >= low && freq <= high
}

// ParseBand returns the band with the given wire name.
func ParseBand(name string) (Band, bool) {
	for i, r := range bandTable {
		if r.Name == name {
			return Band(i), true
		}
	}
	return 0, false
}

// bandMeans averages magnitudes into the fixed bands. Bin k sits at
// k*sampleRate/size Hz. A bin on a shared boundary (60Hz, 250Hz, ...)
// contributes to both neighbouring bands. Bands without bins stay at 0.
func bandMeans(dst *[NumBands]float64, magnitudes []float64, size int, sampleRate float64) {
	var sums [NumBands]float64
	var counts [NumBands]int

	for k, m := range magnitudes {
		freq := float64(k) * sampleRate / float64(size)
		if freq > bandTable[Brilliance].HighHz {
			break
		}
		for b := range bandTable {
			if Band(b).Contains(freq) {
				sums[b] += m
				counts[b]++
			}
		}
	}

	for b := range dst {
		if counts[b] > 0 {
			dst[b] = sums[b] / float64(counts[b])
		} else {
			dst[b] = 0
		}
	}
}
