package crypto

import (
	"bytes"
	"context"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"gost28147/internal/stream"
)

// Cipher is a GOST 28147-89 cipher bound to one key and a configurable IV.
//
// The key schedule is read-only after New. Every Encrypt/Decrypt call gets
// its own feedback register seeded from the current IV, so one Cipher may
// serve concurrent streams.
type Cipher struct {
	sched  *Schedule
	logger *slog.Logger

	mu sync.RWMutex
	iv Block
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithLogger traces every processed block at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cipher) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a cipher from a 32-byte key. The IV starts as all zeros.
func New(key []byte, opts ...Option) (*Cipher, error) {
	sched, err := NewSchedule(key)
	if err != nil {
		return nil, err
	}

	c := &Cipher{
		sched:  sched,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetIV replaces the IV used to seed future stream operations.
func (c *Cipher) SetIV(iv []byte) error {
	if len(iv) != BlockSize {
		return fmt.Errorf("crypto: IV is %d bytes, want %d: %w", len(iv), BlockSize, ErrIVSize)
	}

	c.mu.Lock()
	c.iv = BlockFrom(iv)
	c.mu.Unlock()
	return nil
}

// WithIV returns a cipher sharing this key schedule but seeded from iv.
// The receiver is left untouched, so per-request IVs need no locking.
func (c *Cipher) WithIV(iv []byte) (*Cipher, error) {
	nc := &Cipher{sched: c.sched, logger: c.logger}
	if err := nc.SetIV(iv); err != nil {
		return nil, err
	}
	return nc, nil
}

// IV returns the configured IV.
func (c *Cipher) IV() Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.iv
}

// Schedule exposes the key schedule.
func (c *Cipher) Schedule() *Schedule { return c.sched }

// Encrypt reads src until exhausted and returns the ciphertext.
// The output length is always a multiple of 8.
func (c *Cipher) Encrypt(mode Mode, src io.Reader) ([]byte, error) {
	return c.collect(mode, Encrypt, src)
}

// Decrypt reads src until exhausted and returns the plaintext, including
// any zero padding added to the final block on encryption.
func (c *Cipher) Decrypt(mode Mode, src io.Reader) ([]byte, error) {
	return c.collect(mode, Decrypt, src)
}

// EncryptStream is Encrypt writing to dst. It returns the bytes written.
func (c *Cipher) EncryptStream(mode Mode, src io.Reader, dst io.Writer) (int64, error) {
	return c.process(mode, Encrypt, src, dst)
}

// DecryptStream is Decrypt writing to dst. It returns the bytes written.
func (c *Cipher) DecryptStream(mode Mode, src io.Reader, dst io.Writer) (int64, error) {
	return c.process(mode, Decrypt, src, dst)
}

// EncryptBytes encrypts an in-memory buffer. data is not modified.
func (c *Cipher) EncryptBytes(mode Mode, data []byte) ([]byte, error) {
	return c.cryptBytes(mode, Encrypt, data)
}

// DecryptBytes decrypts an in-memory buffer. data is not modified.
func (c *Cipher) DecryptBytes(mode Mode, data []byte) ([]byte, error) {
	return c.cryptBytes(mode, Decrypt, data)
}

func (c *Cipher) cryptBytes(mode Mode, dir Direction, data []byte) ([]byte, error) {
	d, err := newDriver(c.sched, mode, dir, c.IV())
	if err != nil {
		return nil, err
	}

	// Clone to avoid mutating input; the tail is zero-padded.
	buf := make([]byte, PaddedLen(len(data)))
	copy(buf, data)
	d.processBlocks(buf)
	return buf, nil
}

func (c *Cipher) collect(mode Mode, dir Direction, src io.Reader) ([]byte, error) {
	var out bytes.Buffer
	if _, err := c.process(mode, dir, src, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (c *Cipher) process(mode Mode, dir Direction, src io.Reader, dst io.Writer) (int64, error) {
	d, err := newDriver(c.sched, mode, dir, c.IV())
	if err != nil {
		return 0, err
	}

	trace := c.logger.Enabled(context.Background(), slog.LevelDebug)
	br := stream.NewBlockReader(src)

	var written int64
	for {
		in, _, err := br.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("crypto: %s %v: %w", dir, mode, err)
		}

		out := d.step(Block(in))
		if trace {
			c.logger.Debug("block",
				slog.String("mode", mode.String()),
				slog.String("dir", dir.String()),
				slog.String("in", hex.EncodeToString(in[:])),
				slog.String("out", hex.EncodeToString(out[:])))
		}

		n, err := dst.Write(out[:])
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("crypto: write block: %w", err)
		}
	}
	return written, nil
}

// PaddedLen returns n rounded up to a whole number of blocks.
func PaddedLen(n int) int {
	return (n + BlockSize - 1) / BlockSize * BlockSize
}

// Block returns the raw engine as a crypto/cipher.Block, for use with the
// standard library's mode implementations.
func (c *Cipher) Block() cipher.Block { return blockAdapter{c.sched} }

type blockAdapter struct{ s *Schedule }

func (b blockAdapter) BlockSize() int { return BlockSize }

func (b blockAdapter) Encrypt(dst, src []byte) {
	b.crypt(Encrypt, dst, src)
}

func (b blockAdapter) Decrypt(dst, src []byte) {
	b.crypt(Decrypt, dst, src)
}

func (b blockAdapter) crypt(dir Direction, dst, src []byte) {
	if len(src) < BlockSize {
		panic("crypto: input not full block")
	}
	if len(dst) < BlockSize {
		panic("crypto: output not full block")
	}
	out := b.s.CryptBlock(dir, BlockFrom(src))
	copy(dst, out[:])
}
