// SPDX-License-Identifier: MIT
package audio

import "math"

// MaxGain is the upper bound applied to the inbound /control/gain value.
const MaxGain = 16.0

// clampGain limits g to [0, MaxGain]. NaN falls back to unity gain.
func clampGain(g float64) float64 {
	switch {
	case math.IsNaN(g):
		return 1
	case g < 0:
		return 0
	case g > MaxGain:
		return MaxGain
	}
	return g
}

// clampThreshold limits t to [0, 1] where 0 keeps the gate always open.
// NaN falls back to 0.
func clampThreshold(t float64) float64 {
	switch {
	case math.IsNaN(t) || t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// applyGainAndGate scales block in place and then silences it when its peak
// stays below threshold. It reports whether the gate was open.
func applyGainAndGate(block []float64, gain, threshold float64) bool {
	var peak float64
	for i, s := range block {
		s *= gain
		block[i] = s
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if threshold > 0 && peak < threshold {
		clear(block)
		return false
	}
	return true
}

// downmix averages interleaved frames into mono and returns the filled
// prefix of dst. Trailing samples that do not make a whole frame are ignored.
func downmix(dst []float64, in []float32, channels int) []float64 {
	if channels <= 1 {
		n := min(len(in), len(dst))
		for i := range n {
			dst[i] = float64(in[i])
		}
		return dst[:n]
	}

	frames := min(len(in)/channels, len(dst))
	scale := 1 / float64(channels)
	for i := range frames {
		var sum float64
		base := i * channels
		for ch := range channels {
			sum += float64(in[base+ch])
		}
		dst[i] = sum * scale
	}
	return dst[:frames]
}
