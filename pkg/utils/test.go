// Package utils holds signal generators and transport doubles shared by the
// package tests.
package utils

import (
	"math"
	"sync"
)

// MockPacketWriter records every packet written to it. It is safe for
// concurrent use so tests can read while a sender goroutine writes.
type MockPacketWriter struct {
	mu      sync.Mutex
	packets [][]byte
	closed  bool

	// Err, when set, is returned from WritePacket instead of recording.
	Err error
	// Notify, when non-nil, receives a value after each recorded packet.
	Notify chan struct{}
}

// WritePacket stores a copy of data for later inspection.
func (m *MockPacketWriter) WritePacket(data []byte) error {
	if m.Err != nil {
		return m.Err
	}
	p := make([]byte, len(data))
	copy(p, data)

	m.mu.Lock()
	m.packets = append(m.packets, p)
	m.mu.Unlock()

	if m.Notify != nil {
		select {
		case m.Notify <- struct{}{}:
		default:
		}
	}
	return nil
}

// Close marks the writer as closed.
func (m *MockPacketWriter) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Packets returns a snapshot of the recorded packets.
func (m *MockPacketWriter) Packets() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.packets))
	copy(out, m.packets)
	return out
}

// Closed reports whether Close was called.
func (m *MockPacketWriter) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GenerateComplexWave returns a 440Hz tone with two harmonics, peak 0.9.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = signal * 0.9
	}
	return buffer
}

// GenerateSineWave returns a pure tone of the given amplitude.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*frequency*t) * amplitude
	}
	return buffer
}

// GenerateConstant returns a DC block whose RMS equals level.
func GenerateConstant(size int, level float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		buffer[i] = level
	}
	return buffer
}

// Interleave repeats every mono sample across channels as float32 frames,
// the layout PortAudio hands to an input callback.
func Interleave(mono []float64, channels int) []float32 {
	out := make([]float32, len(mono)*channels)
	for i, v := range mono {
		for c := range channels {
			out[i*channels+c] = float32(v)
		}
	}
	return out
}

// FindPeakBin returns the index of the largest magnitude in [startBin, endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}
