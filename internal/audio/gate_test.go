// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"testing"
)

func TestClampGain(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{2.5, 2.5},
		{16, 16},
		{100, 16},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		if got := clampGain(tt.in); got != tt.want {
			t.Errorf("clampGain(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClampThreshold(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := clampThreshold(tt.in); got != tt.want {
			t.Errorf("clampThreshold(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGateSilencesQuietBlocks(t *testing.T) {
	block := []float64{0.01, -0.02, 0.015}
	if applyGainAndGate(block, 1, 0.05) {
		t.Error("gate open for a block below threshold")
	}
	for i, s := range block {
		if s != 0 {
			t.Errorf("block[%d] = %f, want 0", i, s)
		}
	}
}

func TestGatePassesLoudBlocks(t *testing.T) {
	block := []float64{0.01, -0.2, 0.015}
	if !applyGainAndGate(block, 2, 0.1) {
		t.Fatal("gate closed for a loud block")
	}
	if block[1] != -0.4 {
		t.Errorf("gain not applied: %v", block)
	}
}

func TestGainLiftsBlockAboveThreshold(t *testing.T) {
	block := []float64{0.04}
	if !applyGainAndGate(block, 2, 0.05) {
		t.Error("gain should be applied before the gate")
	}
}

func TestZeroThresholdKeepsSilence(t *testing.T) {
	block := make([]float64, 4)
	if !applyGainAndGate(block, 1, 0) {
		t.Error("zero threshold must keep the gate open")
	}
}

func TestDownmix(t *testing.T) {
	dst := make([]float64, 4)

	stereo := []float32{1, 0, 0.5, 0.5, -1, 1, 0.25, 0.75}
	got := downmix(dst, stereo, 2)
	want := []float64{0.5, 0.5, 0, 0.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stereo[%d] = %f, want %f", i, got[i], want[i])
		}
	}

	mono := downmix(dst, []float32{0.5, 0.25}, 1)
	if len(mono) != 2 || mono[0] != 0.5 || mono[1] != 0.25 {
		t.Errorf("mono = %v", mono)
	}

	// An incomplete trailing frame is ignored.
	if n := len(downmix(dst, []float32{1, 1, 1}, 2)); n != 1 {
		t.Errorf("partial frame: len = %d, want 1", n)
	}
}

func TestGateHotPathZeroAllocation(t *testing.T) {
	block := make([]float64, 1024)
	in := make([]float32, 2048)
	for i := range in {
		in[i] = float32(i%100) / 100
	}

	allocs := testing.AllocsPerRun(100, func() {
		mono := downmix(block, in, 2)
		applyGainAndGate(mono, 1.5, 0.1)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in gate hot path, got %.1f", allocs)
	}
}

func BenchmarkHotPath(b *testing.B) {
	block := make([]float64, 1024)
	in := make([]float32, 2048)
	for i := range in {
		in[i] = float32(i%100) / 100
	}

	b.ReportAllocs()
	for b.Loop() {
		mono := downmix(block, in, 2)
		applyGainAndGate(mono, 1.5, 0.1)
	}
}
