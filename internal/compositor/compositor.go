// Package compositor computes per-pixel alpha from color distance to a white
// background, with a soft transition band at the keying threshold.
package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"runtime"
	"sync"

	"cutout/pkg/colorutil"
)

// Options control the keying pass.
type Options struct {
	// Tolerance is the RGB distance from pure white below which a pixel
	// becomes fully transparent.
	Tolerance float64
	// Softness widens the linear alpha ramp above the tolerance; the band is
	// Softness*10 distance units wide.
	Softness float64
}

// DefaultOptions matches the values used for collaborator-whitened crops.
func DefaultOptions() Options {
	return Options{Tolerance: 30, Softness: 5}
}

// KeyOut returns a copy of img with white-ish pixels keyed to transparency.
// Alpha as a function of distance-from-white is 0 below the tolerance,
// ramps linearly across the softness band, and is untouched beyond it.
// The input image is never modified.
func KeyOut(img image.Image, opts Options) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	band := opts.Softness * 10

	// Pure per-pixel map, so rows can be processed independently.
	rows := out.Bounds().Dy()
	workers := runtime.NumCPU()
	if workers > rows {
		workers = rows
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	chunk := (rows + workers - 1) / workers
	for start := 0; start < rows; start += chunk {
		end := start + chunk
		if end > rows {
			end = rows
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			keyRows(out, y0, y1, opts.Tolerance, band)
		}(start, end)
	}
	wg.Wait()

	return out
}

func keyRows(img *image.RGBA, y0, y1 int, tolerance, band float64) {
	width := img.Bounds().Dx()
	for y := y0; y < y1; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width*4; x += 4 {
			a := row[x+3]
			if a == 0 {
				continue
			}

			d := distanceFromWhite(row[x], row[x+1], row[x+2])
			switch {
			case d < tolerance:
				row[x] = 0
				row[x+1] = 0
				row[x+2] = 0
				row[x+3] = 0
			case band > 0 && d < tolerance+band:
				// The buffer is alpha-premultiplied, so the color channels
				// must shrink with the alpha to keep the straight color
				// unchanged.
				f := (d - tolerance) / band
				row[x] = uint8(float64(row[x]) * f)
				row[x+1] = uint8(float64(row[x+1]) * f)
				row[x+2] = uint8(float64(row[x+2]) * f)
				row[x+3] = uint8(float64(a) * f)
			}
		}
	}
}

func distanceFromWhite(r, g, b uint8) float64 {
	return colorutil.DistanceRGB(color.RGBA{R: r, G: g, B: b, A: 255}, colorutil.White)
}
