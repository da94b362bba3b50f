package mask

import (
	"image"

	"gocv.io/x/gocv"
)

// Clean despeckles a mask with a morphological open followed by a close,
// removing stray foreground islands and sealing pinholes before tracing.
// If the mask cannot be converted it is returned unchanged.
func Clean(b *Bitmap, kernelSize int) *Bitmap {
	if b.Width == 0 || b.Height == 0 {
		return b
	}
	if kernelSize < 3 {
		kernelSize = 3
	}

	data := make([]byte, b.Width*b.Height)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.At(x, y) {
				data[y*b.Width+x] = 255
			}
		}
	}

	src, err := gocv.NewMatFromBytes(b.Height, b.Width, gocv.MatTypeCV8U, data)
	if err != nil {
		return b
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: kernelSize, Y: kernelSize})
	defer kernel.Close()

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(src, &opened, gocv.MorphOpen, kernel)

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(opened, &closed, gocv.MorphClose, kernel)

	out := New(b.Width, b.Height)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if closed.GetUCharAt(y, x) > 0 {
				out.Set(x, y, true)
			}
		}
	}
	return out
}
