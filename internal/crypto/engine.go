package crypto

// cryptBlock runs the 32-round Feistel network over one block.
// The same routine encrypts or decrypts; only the round-key order differs.
func cryptBlock(ks *[32]uint32, blk Block) Block {
	b, a := blk.halves()

	for i := 0; i < 32; i++ {
		newA := b ^ roundFunc(a, ks[i])
		b = a
		a = newA
	}

	// No final swap: the last computed half goes first.
	return joinHalves(a, b)
}

// CryptBlock encrypts or decrypts a single block with the schedule.
func (s *Schedule) CryptBlock(dir Direction, blk Block) Block {
	return cryptBlock(s.roundKeys(dir), blk)
}
