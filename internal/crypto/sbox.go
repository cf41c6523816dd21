package crypto

// S-box: id-Gost28147-89-CryptoPro-A-ParamSet.
// Row i substitutes nibble i of the round input (nibble 0 = least significant).
var gostSBox = [8][16]byte{
	{0x9, 0x6, 0x3, 0x2, 0x8, 0xB, 0x1, 0x7, 0xA, 0x4, 0xE, 0xF, 0xC, 0x0, 0xD, 0x5},
	{0x3, 0x7, 0xE, 0x9, 0x8, 0xA, 0xF, 0x0, 0x5, 0x2, 0x6, 0xC, 0xB, 0x4, 0xD, 0x1},
	{0xE, 0x4, 0x6, 0x2, 0xB, 0x3, 0xD, 0x8, 0xC, 0xF, 0x5, 0xA, 0x0, 0x7, 0x1, 0x9},
	{0xE, 0x7, 0xA, 0xC, 0xD, 0x1, 0x3, 0x9, 0x0, 0x2, 0xB, 0x4, 0xF, 0x8, 0x5, 0x6},
	{0xB, 0x5, 0x1, 0x9, 0x8, 0xD, 0xF, 0x0, 0xE, 0x4, 0x2, 0x3, 0xC, 0x7, 0xA, 0x6},
	{0x3, 0xA, 0xD, 0xC, 0x1, 0x2, 0x0, 0xB, 0x7, 0x5, 0x9, 0x4, 0x8, 0xF, 0xE, 0x6},
	{0x1, 0xD, 0x2, 0x9, 0x7, 0xA, 0x6, 0x0, 0x8, 0xC, 0x4, 0x5, 0xF, 0x3, 0xB, 0xE},
	{0xB, 0xA, 0xF, 0x5, 0x0, 0xC, 0xE, 0x8, 0x6, 0x2, 0x3, 0x9, 0x1, 0x7, 0xD, 0x4},
}

// Pre-computed lookup tables combining pairs of 4-bit S-boxes into 8-bit tables.
// gostLookup[k] covers byte k of the round input and already holds its
// output shifted into place.
var gostLookup [4][256]uint32

func init() {
	for k := 0; k < 4; k++ {
		sLow := gostSBox[2*k]
		sHigh := gostSBox[2*k+1]
		for i := 0; i < 256; i++ {
			lo := uint32(sLow[i&0x0F])
			hi := uint32(sHigh[(i>>4)&0x0F])
			gostLookup[k][i] = (lo | (hi << 4)) << (8 * uint(k))
		}
	}
}

func gostSubstitute(value uint32) uint32 {
	return gostLookup[0][value&0xFF] |
		gostLookup[1][(value>>8)&0xFF] |
		gostLookup[2][(value>>16)&0xFF] |
		gostLookup[3][(value>>24)&0xFF]
}
