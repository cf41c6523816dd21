package crypto

import "math/bits"

// roundFunc is the GOST round function f(half, subkey): modular addition,
// eight 4-bit substitutions, rotation left by 11.
func roundFunc(half, subkey uint32) uint32 {
	return bits.RotateLeft32(gostSubstitute(half+subkey), 11)
}

// referenceRoundFunc computes f one nibble at a time.
// Substituted nibble i is stored at index 7-i and the array is read back
// most significant entry first, so S-box i lands on bits 4i..4i+3.
func referenceRoundFunc(half, subkey uint32) uint32 {
	sum := half + subkey

	var nibbles [8]uint32
	for i := 0; i < 8; i++ {
		nibbles[7-i] = uint32(gostSBox[i][(sum>>(4*uint(i)))&0xF])
	}

	var res uint32
	for i, n := range nibbles {
		res |= n << (4 * uint(7-i))
	}
	return (res << 11) | (res >> 21)
}
