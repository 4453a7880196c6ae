// SPDX-License-Identifier: MIT
package fft

import (
	"errors"
	"math"
	"testing"

	"tranquil/pkg/utils"
)

const (
	testFFTSize    = 1024
	testSampleRate = 44100
)

func newTestSpectrum(t testing.TB, size int) *Spectrum {
	t.Helper()
	s, err := NewSpectrum(size)
	if err != nil {
		t.Fatalf("NewSpectrum(%d): %v", size, err)
	}
	return s
}

func TestNewSpectrumRejectsTinySizes(t *testing.T) {
	for _, size := range []int{-1, 0, 1} {
		if _, err := NewSpectrum(size); !errors.Is(err, ErrSize) {
			t.Errorf("NewSpectrum(%d) error = %v, want ErrSize", size, err)
		}
	}
}

func TestHannWindow(t *testing.T) {
	s := newTestSpectrum(t, 9)
	w := s.Window()

	if w[0] != 0 || math.Abs(w[8]) > 1e-12 {
		t.Errorf("window endpoints = %f, %f, want 0", w[0], w[8])
	}
	if math.Abs(w[4]-1) > 1e-12 {
		t.Errorf("window centre = %f, want 1", w[4])
	}
	for n := range w {
		want := 0.5 * (1 - math.Cos(2*math.Pi*float64(n)/8))
		if math.Abs(w[n]-want) > 1e-12 {
			t.Errorf("w[%d] = %f, want %f", n, w[n], want)
		}
	}
}

func TestComputeBinCount(t *testing.T) {
	tests := []struct {
		size, bins int
	}{
		{1024, 512},
		{1000, 500},
		{7, 3},
	}
	for _, tt := range tests {
		s := newTestSpectrum(t, tt.size)
		mags := s.Compute(make([]float64, tt.size))
		if len(mags) != tt.bins || s.Bins() != tt.bins {
			t.Errorf("size %d: got %d bins, want %d", tt.size, len(mags), tt.bins)
		}
	}
}

func TestComputeSilence(t *testing.T) {
	s := newTestSpectrum(t, testFFTSize)
	for i, m := range s.Compute(make([]float64, testFFTSize)) {
		if m != 0 {
			t.Fatalf("bin %d = %f, want 0 for silence", i, m)
		}
	}
}

func TestComputePeakAtToneFrequency(t *testing.T) {
	s := newTestSpectrum(t, testFFTSize)

	// Bin 100 centre frequency, so the tone lands exactly on one bin.
	freq := BinFrequency(100, testFFTSize, testSampleRate)
	block := utils.GenerateSineWave(testFFTSize, testSampleRate, freq, 0.5)

	mags := s.Compute(block)
	if peak := utils.FindPeakBin(mags, 0, len(mags)-1); peak != 100 {
		t.Errorf("peak bin = %d, want 100", peak)
	}
}

func TestBinFrequency(t *testing.T) {
	if got := BinFrequency(0, testFFTSize, testSampleRate); got != 0 {
		t.Errorf("BinFrequency(0) = %f, want 0", got)
	}
	want := 10 * float64(testSampleRate) / testFFTSize
	if got := BinFrequency(10, testFFTSize, testSampleRate); math.Abs(got-want) > 1e-9 {
		t.Errorf("BinFrequency(10) = %f, want %f", got, want)
	}
}

func TestComputeHotPath(t *testing.T) {
	s := newTestSpectrum(t, testFFTSize)
	block := utils.GenerateComplexWave(testFFTSize, testSampleRate)

	// Warm-up call so one-time allocations are not counted.
	s.Compute(block)
	allocs := testing.AllocsPerRun(100, func() {
		s.Compute(block)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Compute hot path, got %.1f", allocs)
	}
}

func BenchmarkCompute(b *testing.B) {
	s := newTestSpectrum(b, testFFTSize)
	block := utils.GenerateComplexWave(testFFTSize, testSampleRate)

	b.ReportAllocs()
	for b.Loop() {
		s.Compute(block)
	}
}
