// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-two helpers used when sizing analysis
blocks. Any block size is accepted by the spectrum stage, but power-of-two
sizes keep the FFT on its fastest radix-2 path, so configuration uses these
helpers to warn about (and suggest) better sizes.

Usage:

	if !bitint.IsPowerOfTwo(blockSize) {
		suggested := bitint.NextPowerOfTwo(blockSize) // 1000 -> 1024
	}

NextPowerOfTwo subtracts one before taking the bit length so that exact powers
of two map to themselves: for 8, bits.Len(7) = 3 and 1<<3 = 8, whereas
bits.Len(8) = 4 would double the input.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size.
// Non-positive sizes return 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
// Powers of two have exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
