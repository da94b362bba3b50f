// Package mask provides 1-bit foreground masks, boundary tracing, and the
// rescaling needed to map inference-resolution masks back to image space.
package mask

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Bitmap is a width x height grid of foreground/background flags packed into
// a []uint64, row-major with origin top-left.
type Bitmap struct {
	Width  int
	Height int
	bits   []uint64
}

// New creates an all-background bitmap.
func New(width, height int) *Bitmap {
	if width <= 0 || height <= 0 {
		return &Bitmap{}
	}
	n := width * height
	return &Bitmap{
		Width:  width,
		Height: height,
		bits:   make([]uint64, (n+63)/64),
	}
}

// FromBytes builds a bitmap from a row-major byte payload where any non-zero
// byte is foreground. This is the collaborator wire format for masks.
func FromBytes(data []byte, width, height int) (*Bitmap, error) {
	if len(data) != width*height {
		return nil, fmt.Errorf("mask payload is %d bytes, want %dx%d=%d", len(data), width, height, width*height)
	}
	b := New(width, height)
	for i, v := range data {
		if v != 0 {
			b.setIndex(i)
		}
	}
	return b, nil
}

// At returns the flag at (x, y); out-of-bounds coordinates are background.
func (b *Bitmap) At(x, y int) bool {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return false
	}
	i := y*b.Width + x
	return b.bits[i/64]&(1<<(i%64)) != 0
}

// Set writes the flag at (x, y). Out-of-bounds writes are ignored.
func (b *Bitmap) Set(x, y int, v bool) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	i := y*b.Width + x
	if v {
		b.setIndex(i)
	} else {
		b.bits[i/64] &^= 1 << (i % 64)
	}
}

func (b *Bitmap) setIndex(i int) {
	b.bits[i/64] |= 1 << (i % 64)
}

// Empty reports whether the bitmap has no foreground pixels.
func (b *Bitmap) Empty() bool {
	for _, w := range b.bits {
		if w != 0 {
			return false
		}
	}
	return true
}

// ToGray renders the bitmap as an 8-bit grayscale image (255 = foreground).
func (b *Bitmap) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.At(x, y) {
				img.Pix[y*img.Stride+x] = 255
			}
		}
	}
	return img
}

// Rescale resamples the bitmap to a new size with nearest-neighbor
// interpolation. Inference masks come back at a fixed low resolution and
// must be mapped to image resolution before tracing results are usable.
func (b *Bitmap) Rescale(width, height int) *Bitmap {
	if width <= 0 || height <= 0 {
		return New(0, 0)
	}
	if width == b.Width && height == b.Height {
		return b
	}

	src := b.ToGray()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	out := New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if dst.Pix[y*dst.Stride+x] >= 128 {
				out.Set(x, y, true)
			}
		}
	}
	return out
}
