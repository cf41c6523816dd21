package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// Load reads a PNG, JPEG, GIF or TGA file and returns an NRGBA image.
// TGA has no magic number, so it is picked by the .tga extension and
// everything else goes through the registered image decoders.
func Load(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: read %s: %w", path, err)
	}

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = tga.Decode(bytes.NewReader(raw))
	} else {
		img, _, err = image.Decode(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: decode %s: %w", path, err)
	}

	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format anchored at the origin.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Pattern draws a test card of flat colour bands and a checkerboard.
// Large uniform areas make ECB's block repetition easy to see.
func Pattern(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	bands := []color.NRGBA{
		{0xC0, 0x20, 0x20, 0xFF},
		{0xF0, 0xF0, 0xF0, 0xFF},
		{0x20, 0x40, 0xC0, 0xFF},
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := bands[(y*len(bands))/h]
			if x > w/2 && ((x/16)+(y/16))%2 == 0 {
				c = color.NRGBA{0x10, 0x10, 0x10, 0xFF}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
