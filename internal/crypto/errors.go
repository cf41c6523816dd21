package crypto

import "errors"

var (
	// ErrKeySize is returned when a key is not exactly KeySize bytes.
	ErrKeySize = errors.New("invalid key size")
	// ErrIVSize is returned when an IV is not exactly BlockSize bytes.
	ErrIVSize = errors.New("invalid IV size")
	// ErrUnknownMode is returned for a mode outside ECB, CBC, CFB and OFB.
	ErrUnknownMode = errors.New("unknown cipher mode")
)
