package crypto

import (
	"encoding/binary"
	"fmt"
)

// KeySize is the GOST 28147-89 key size in bytes.
const KeySize = 32

// Direction selects the round-key order of the engine.
type Direction int

const (
	Encrypt Direction = iota
	Decrypt
)

func (d Direction) String() string {
	if d == Decrypt {
		return "decrypt"
	}
	return "encrypt"
}

// Schedule holds the eight 32-bit key words K0..K7.
// It is immutable once built and safe to share between goroutines.
type Schedule struct {
	words [8]uint32
	enc   [32]uint32
	dec   [32]uint32
}

// NewSchedule splits a 32-byte key into eight big-endian words and
// precomputes both round-key sequences.
func NewSchedule(key []byte) (*Schedule, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("crypto: key is %d bytes, want %d: %w", len(key), KeySize, ErrKeySize)
	}

	s := &Schedule{}
	for i := 0; i < 8; i++ {
		s.words[i] = binary.BigEndian.Uint32(key[i*4:])
	}

	// Encryption key schedule:
	// Rounds 1-24:  K[0..7] repeated 3 times
	// Rounds 25-32: K[7..0]
	for rep := 0; rep < 3; rep++ {
		for i := 0; i < 8; i++ {
			s.enc[rep*8+i] = s.words[i]
		}
	}
	for i := 0; i < 8; i++ {
		s.enc[24+i] = s.words[7-i]
	}

	// Decryption runs the same rounds backwards:
	// Rounds 1-8:  K[0..7]
	// Rounds 9-32: K[7..0] repeated 3 times
	for r := 0; r < 32; r++ {
		s.dec[r] = s.enc[31-r]
	}

	return s, nil
}

// Words returns a copy of the key words.
func (s *Schedule) Words() [8]uint32 { return s.words }

// RoundKeys returns the 32-entry round-key sequence for the direction.
func (s *Schedule) RoundKeys(dir Direction) [32]uint32 {
	return *s.roundKeys(dir)
}

func (s *Schedule) roundKeys(dir Direction) *[32]uint32 {
	if dir == Decrypt {
		return &s.dec
	}
	return &s.enc
}
