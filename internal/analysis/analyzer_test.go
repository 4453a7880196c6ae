// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"tranquil/pkg/utils"
)

const (
	testBlockSize  = 1024
	testSampleRate = 44100
)

func newTestAnalyzer(t testing.TB) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(testBlockSize)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func TestNewAnalyzerRejectsTinyBlocks(t *testing.T) {
	if _, err := NewAnalyzer(1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewAnalyzer(1) error = %v, want ErrInvalidInput", err)
	}
}

func TestAnalyzeInvalidInput(t *testing.T) {
	a := newTestAnalyzer(t)
	block := make([]float64, testBlockSize)

	tests := []struct {
		name       string
		block      []float64
		sampleRate int
	}{
		{"empty block", nil, testSampleRate},
		{"zero sample rate", block, 0},
		{"negative sample rate", block, -44100},
		{"short block", block[:512], testSampleRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Analyze(tt.block, tt.sampleRate); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
	if a.HistoryLen() != 0 {
		t.Errorf("HistoryLen = %d after rejected input, want 0", a.HistoryLen())
	}
}

func TestAnalyzeSilence(t *testing.T) {
	a := newTestAnalyzer(t)
	frame, err := a.Analyze(make([]float64, testBlockSize), testSampleRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if frame.Volume != 0 {
		t.Errorf("Volume = %f, want 0", frame.Volume)
	}
	for _, b := range Bands() {
		if frame.Band(b) != 0 {
			t.Errorf("%s = %f, want 0", b, frame.Band(b))
		}
	}
	if frame.Onset {
		t.Error("Onset = true for silence")
	}
	if frame.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestAnalyzeConstantVolume(t *testing.T) {
	a := newTestAnalyzer(t)
	frame, err := a.Analyze(utils.GenerateConstant(testBlockSize, 0.5), testSampleRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if math.Abs(frame.Volume-0.5) > 1e-12 {
		t.Errorf("Volume = %f, want 0.5", frame.Volume)
	}
}

func TestAnalyzeSineLandsInMidBand(t *testing.T) {
	a := newTestAnalyzer(t)
	block := utils.GenerateSineWave(testBlockSize, testSampleRate, 1000, 1.0)

	frame, err := a.Analyze(block, testSampleRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if math.Abs(frame.Volume-1/math.Sqrt2) > 0.01 {
		t.Errorf("Volume = %f, want ~%f", frame.Volume, 1/math.Sqrt2)
	}
	for _, b := range Bands() {
		if b == Mid {
			continue
		}
		if frame.Band(b) >= frame.Band(Mid) {
			t.Errorf("%s = %f, want below mid %f", b, frame.Band(b), frame.Band(Mid))
		}
	}
}

func TestAnalyzeOnsetSequence(t *testing.T) {
	a := newTestAnalyzer(t)
	quiet := utils.GenerateConstant(testBlockSize, 0.1)
	loud := utils.GenerateConstant(testBlockSize, 1.0)

	for i := range 4 {
		frame, err := a.Analyze(quiet, testSampleRate)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if frame.Onset {
			t.Fatalf("block %d: unexpected onset", i)
		}
	}

	frame, err := a.Analyze(loud, testSampleRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !frame.Onset {
		t.Error("loud fifth block: Onset = false, want true")
	}
}

func TestAnalyzeHistoryBounded(t *testing.T) {
	a := newTestAnalyzer(t)
	block := utils.GenerateConstant(testBlockSize, 0.2)
	for range 15 {
		if _, err := a.Analyze(block, testSampleRate); err != nil {
			t.Fatalf("Analyze: %v", err)
		}
	}
	if a.HistoryLen() != HistorySize {
		t.Errorf("HistoryLen = %d, want %d", a.HistoryLen(), HistorySize)
	}

	a.Reset()
	if a.HistoryLen() != 0 {
		t.Errorf("HistoryLen after Reset = %d, want 0", a.HistoryLen())
	}
}

func TestAnalyzeAtKeepsTimestamp(t *testing.T) {
	a := newTestAnalyzer(t)
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	frame, err := a.AnalyzeAt(make([]float64, testBlockSize), testSampleRate, ts)
	if err != nil {
		t.Fatalf("AnalyzeAt: %v", err)
	}
	if !frame.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", frame.Timestamp, ts)
	}
}

func TestAnalyzeZeroAllocation(t *testing.T) {
	a := newTestAnalyzer(t)
	block := utils.GenerateComplexWave(testBlockSize, testSampleRate)
	ts := time.Now()

	allocs := testing.AllocsPerRun(100, func() {
		_, _ = a.AnalyzeAt(block, testSampleRate, ts)
	})
	if allocs > 0 {
		t.Errorf("AnalyzeAt allocated %.1f times per run, want 0", allocs)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %f, want 0", got)
	}
	if got := RMS([]float64{3, -3, 3, -3}); got != 3 {
		t.Errorf("RMS = %f, want 3", got)
	}
}

func BenchmarkAnalyze(b *testing.B) {
	a := newTestAnalyzer(b)
	block := utils.GenerateComplexWave(testBlockSize, testSampleRate)
	ts := time.Now()

	b.ReportAllocs()
	for b.Loop() {
		_, _ = a.AnalyzeAt(block, testSampleRate, ts)
	}
}
