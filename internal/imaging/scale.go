package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// Fit shrinks img so that neither side exceeds maxSize, keeping the aspect
// ratio. Smaller images are returned unchanged.
func Fit(img *image.NRGBA, maxSize int) *image.NRGBA {
	b := img.Bounds()
	if maxSize <= 0 || (b.Dx() <= maxSize && b.Dy() <= maxSize) {
		return img
	}

	w, h := maxSize, maxSize
	if b.Dx() > b.Dy() {
		h = max(1, b.Dy()*maxSize/b.Dx())
	} else {
		w = max(1, b.Dx()*maxSize/b.Dy())
	}

	// Downsample with CatmullRom (approximates Lanczos)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Enlarge scales img up by an integer factor without smoothing, so cipher
// blocks stay crisp.
func Enlarge(img *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SideBySide joins images left to right with a gap of transparent pixels.
func SideBySide(gap int, imgs ...*image.NRGBA) *image.NRGBA {
	w, h := 0, 0
	for i, img := range imgs {
		b := img.Bounds()
		if i > 0 {
			w += gap
		}
		w += b.Dx()
		h = max(h, b.Dy())
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	x := 0
	for _, img := range imgs {
		b := img.Bounds()
		r := image.Rect(x, 0, x+b.Dx(), b.Dy())
		draw.Draw(dst, r, img, b.Min, draw.Src)
		x += b.Dx() + gap
	}
	return dst
}
