// Package stream cuts byte sources into fixed 8-byte cipher blocks.
package stream

import (
	"errors"
	"fmt"
	"io"
)

// BlockSize is the size of every block handed out by a BlockReader.
const BlockSize = 8

// BlockReader reads consecutive 8-byte blocks from an io.Reader.
// A short final block is zero-padded to full size.
type BlockReader struct {
	r    io.Reader
	done bool
	read int64
}

// NewBlockReader wraps r. The reader is only borrowed for as long as the
// BlockReader is in use.
func NewBlockReader(r io.Reader) *BlockReader {
	return &BlockReader{r: r}
}

// Next returns the next block and the number of input bytes it holds
// (8 except possibly for the last block). It returns io.EOF once the
// source is exhausted; an empty source yields no blocks at all.
func (br *BlockReader) Next() (blk [BlockSize]byte, n int, err error) {
	if br.done {
		return blk, 0, io.EOF
	}

	n, err = io.ReadFull(br.r, blk[:])
	br.read += int64(n)
	switch {
	case err == nil:
		return blk, n, nil
	case errors.Is(err, io.EOF):
		br.done = true
		return blk, 0, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		// Partial tail: the unread bytes of blk are already zero.
		br.done = true
		return blk, n, nil
	default:
		br.done = true
		return blk, n, fmt.Errorf("stream: read block at offset %d: %w", br.read-int64(n), err)
	}
}

// BytesRead reports how many input bytes have been consumed, padding excluded.
func (br *BlockReader) BytesRead() int64 { return br.read }
