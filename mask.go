package bitpack

import "golang.org/x/exp/constraints"

// Mask returns length one-bits shifted left by position, that is
// (2^length - 1) << position. A length of zero yields zero. Bits shifted
// beyond bit 63 are dropped.
func Mask(position, length uint) uint64 {
	if length == 0 {
		return 0
	}

	if length >= 64 {
		// 1<<64 does not fit, all bits are set
		return ^uint64(0) << position
	}

	return (uint64(1)<<length - 1) << position
}

// MaskOf is Mask truncated to the unsigned type U.
func MaskOf[U constraints.Unsigned](position, length uint) U {
	return U(Mask(position, length))
}
