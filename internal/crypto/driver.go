package crypto

import "fmt"

// driver carries the feedback register of one stream operation.
// A new driver is created for every Encrypt/Decrypt call, so the register
// always starts from the configured IV.
type driver struct {
	prev Block
	step func(Block) Block
}

func newDriver(s *Schedule, mode Mode, dir Direction, iv Block) (*driver, error) {
	d := &driver{prev: iv}

	// ECB and CBC run the engine in the stream direction; CFB and OFB only
	// ever encrypt the register.
	ks := s.roundKeys(dir)
	fwd := s.roundKeys(Encrypt)

	switch mode {
	case ECB:
		d.step = func(blk Block) Block {
			return cryptBlock(ks, blk)
		}
	case CBC:
		if dir == Encrypt {
			d.step = func(blk Block) Block {
				d.prev = cryptBlock(ks, blk.Xor(d.prev))
				return d.prev
			}
		} else {
			d.step = func(blk Block) Block {
				out := cryptBlock(ks, blk).Xor(d.prev)
				d.prev = blk
				return out
			}
		}
	case CFB:
		if dir == Encrypt {
			d.step = func(blk Block) Block {
				d.prev = blk.Xor(cryptBlock(fwd, d.prev))
				return d.prev
			}
		} else {
			d.step = func(blk Block) Block {
				out := blk.Xor(cryptBlock(fwd, d.prev))
				d.prev = blk
				return out
			}
		}
	case OFB:
		d.step = func(blk Block) Block {
			d.prev = cryptBlock(fwd, d.prev)
			return blk.Xor(d.prev)
		}
	default:
		return nil, fmt.Errorf("crypto: %v: %w", mode, ErrUnknownMode)
	}

	return d, nil
}

// processBlocks runs the driver over data in place.
// len(data) must be a multiple of BlockSize.
func (d *driver) processBlocks(data []byte) {
	for i := 0; i+BlockSize <= len(data); i += BlockSize {
		out := d.step(BlockFrom(data[i : i+BlockSize]))
		copy(data[i:i+BlockSize], out[:])
	}
}
