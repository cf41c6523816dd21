package crypto

import "encoding/binary"

// BlockSize is the GOST 28147-89 block size in bytes.
const BlockSize = 8

// Block is one 64-bit cipher block.
type Block [BlockSize]byte

// halves splits a block into its two big-endian words.
// b is the first 4 bytes, a the last 4.
func (blk Block) halves() (b, a uint32) {
	return binary.BigEndian.Uint32(blk[0:]), binary.BigEndian.Uint32(blk[4:])
}

// joinHalves is the inverse of halves with the output order the engine
// expects: first the A word, then the B word.
func joinHalves(a, b uint32) Block {
	var out Block
	binary.BigEndian.PutUint32(out[0:], a)
	binary.BigEndian.PutUint32(out[4:], b)
	return out
}

// Xor returns the byte-wise XOR of two blocks.
func (blk Block) Xor(other Block) Block {
	var out Block
	for i := range out {
		out[i] = blk[i] ^ other[i]
	}
	return out
}

// BlockFrom copies the first 8 bytes of p into a Block.
// Shorter input is zero-padded.
func BlockFrom(p []byte) Block {
	var blk Block
	copy(blk[:], p)
	return blk
}
