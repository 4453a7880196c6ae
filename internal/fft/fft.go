// SPDX-License-Identifier: MIT
package fft

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrSize is returned when a spectrum is requested for fewer than two samples.
var ErrSize = errors.New("fft: size must be at least 2")

// Workspace holds pre-allocated buffers for FFT calculations.
type Workspace struct {
	input     []float64    // ...for windowed input samples
	fftOutput []complex128 // ...for FFT complex output (N/2 + 1 values)
	magnitude []float64    // ...for magnitudes of the first N/2 bins
	window    []float64    // ...for Hann window coefficients
}

// Spectrum computes the Hann-windowed magnitude spectrum of fixed-size blocks.
// It is not safe for concurrent use; each capture stream owns one.
type Spectrum struct {
	size      int
	fftObj    *fourier.FFT
	workspace Workspace
}

// NewSpectrum pre-allocates all buffers for blocks of size samples and
// computes the Hann coefficients w[n] = 0.5*(1 - cos(2πn/(N-1))).
func NewSpectrum(size int) (*Spectrum, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrSize, size)
	}

	window := make([]float64, size)
	for i := range size {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return &Spectrum{
		size:   size,
		fftObj: fourier.NewFFT(size),
		workspace: Workspace{
			input:     make([]float64, size),
			fftOutput: make([]complex128, size/2+1),
			magnitude: make([]float64, size/2),
			window:    window,
		},
	}, nil
}

// Compute windows block, runs the forward FFT and returns the magnitudes of
// the non-negative frequency bins 0..N/2-1. The returned slice is owned by the
// Spectrum and overwritten by the next call. Blocks shorter than the configured
// size are zero-padded; longer blocks are truncated.
func (s *Spectrum) Compute(block []float64) []float64 {
	for i := range s.size {
		if i < len(block) {
			s.workspace.input[i] = block[i] * s.workspace.window[i]
		} else {
			s.workspace.input[i] = 0
		}
	}

	s.fftObj.Coefficients(s.workspace.fftOutput, s.workspace.input)
	for i := range s.workspace.magnitude {
		s.workspace.magnitude[i] = cmplx.Abs(s.workspace.fftOutput[i])
	}

	return s.workspace.magnitude
}

// Size returns the configured block size N.
func (s *Spectrum) Size() int {
	return s.size
}

// Bins returns the number of magnitude bins produced per block (N/2).
func (s *Spectrum) Bins() int {
	return len(s.workspace.magnitude)
}

// Window returns the Hann coefficients. Callers must not modify them.
func (s *Spectrum) Window() []float64 {
	return s.workspace.window
}

// BinFrequency returns the frequency in Hz of bin k for an N-point transform.
func BinFrequency(k, size int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(size)
}
