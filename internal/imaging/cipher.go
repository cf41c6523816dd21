package imaging

import (
	"fmt"
	"image"

	"gost28147/internal/crypto"
)

// EncryptPixels encrypts the RGB channels of img as one byte stream, row
// by row, and returns a new opaque image holding the ciphertext bytes.
// The zero padding of the last block is dropped.
func EncryptPixels(img *image.NRGBA, c *crypto.Cipher, mode crypto.Mode) (*image.NRGBA, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	rgb := make([]byte, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			rgb = append(rgb, img.Pix[i], img.Pix[i+1], img.Pix[i+2])
		}
	}

	ct, err := c.EncryptBytes(mode, rgb)
	if err != nil {
		return nil, fmt.Errorf("imaging: encrypt pixels: %w", err)
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for p := 0; p < w*h; p++ {
		copy(out.Pix[p*4:p*4+3], ct[p*3:p*3+3])
		out.Pix[p*4+3] = 0xFF
	}
	return out, nil
}
