// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"tranquil/internal/fft"
)

// ErrInvalidInput is returned for empty or wrongly sized blocks and
// non-positive sample rates.
var ErrInvalidInput = errors.New("analysis: invalid input")

// Analyzer turns mono PCM blocks into SpectralFrames: RMS volume, Hann
// windowed FFT, band means and onset detection. Buffers are allocated once in
// NewAnalyzer so Analyze is allocation free. It is not safe for concurrent
// use; the onset history is per-stream state.
type Analyzer struct {
	blockSize int
	spectrum  *fft.Spectrum
	onset     OnsetDetector
	now       func() time.Time
}

// Compile-time check for the interface used by the capture loop.
var _ BlockAnalyzer = (*Analyzer)(nil)

// NewAnalyzer creates an analyzer for blocks of exactly blockSize samples.
func NewAnalyzer(blockSize int) (*Analyzer, error) {
	spectrum, err := fft.NewSpectrum(blockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: block size %d: %w", ErrInvalidInput, blockSize, err)
	}
	return &Analyzer{
		blockSize: blockSize,
		spectrum:  spectrum,
		now:       time.Now,
	}, nil
}

// Analyze analyzes one block captured now. See AnalyzeAt.
func (a *Analyzer) Analyze(block []float64, sampleRate int) (SpectralFrame, error) {
	return a.AnalyzeAt(block, sampleRate, a.now())
}

// AnalyzeAt analyzes one mono block captured at ts. The block must hold
// exactly BlockSize samples and sampleRate must be positive; otherwise
// ErrInvalidInput is returned and the onset history is left untouched.
func (a *Analyzer) AnalyzeAt(block []float64, sampleRate int, ts time.Time) (SpectralFrame, error) {
	if len(block) == 0 {
		return SpectralFrame{}, fmt.Errorf("%w: empty block", ErrInvalidInput)
	}
	if sampleRate <= 0 {
		return SpectralFrame{}, fmt.Errorf("%w: sample rate %d", ErrInvalidInput, sampleRate)
	}
	if len(block) != a.blockSize {
		return SpectralFrame{}, fmt.Errorf("%w: block length %d, want %d", ErrInvalidInput, len(block), a.blockSize)
	}

	frame := SpectralFrame{
		Volume:    RMS(block),
		Timestamp: ts,
	}

	magnitudes := a.spectrum.Compute(block)
	bandMeans(&frame.Bands, magnitudes, a.blockSize, float64(sampleRate))

	frame.Onset = a.onset.Observe(frame.Volume)
	return frame, nil
}

// BlockSize returns the configured block length in samples.
func (a *Analyzer) BlockSize() int {
	return a.blockSize
}

// HistoryLen returns the number of volumes held by the onset detector.
func (a *Analyzer) HistoryLen() int {
	return a.onset.Len()
}

// Reset clears the onset history, e.g. when a new stream starts.
func (a *Analyzer) Reset() {
	a.onset.Reset()
}

// RMS returns the root mean square of block, or 0 for an empty block.
func RMS(block []float64) float64 {
	if len(block) == 0 {
		return 0
	}
	var sumSquare float64
	for _, s := range block {
		sumSquare += s * s
	}
	return math.Sqrt(sumSquare / float64(len(block)))
}
