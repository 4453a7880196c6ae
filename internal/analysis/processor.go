// SPDX-License-Identifier: MIT
package analysis

import "time"

// BlockAnalyzer is the contract the capture loop uses to turn a mono block
// into a frame. Implementations run on the real-time audio callback: they must
// not block and should not allocate.
type BlockAnalyzer interface {
	// AnalyzeAt analyzes block, sampled at sampleRate Hz and captured at ts.
	AnalyzeAt(block []float64, sampleRate int, ts time.Time) (SpectralFrame, error)
	// BlockSize returns the number of samples expected per block.
	BlockSize() int
}
