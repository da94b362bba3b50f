// Package colorutil provides shared color utilities.
package colorutil

import (
	"image/color"
	"math"
)

// Common colors used by the canvas overlays and the keying pipeline.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// DistanceRGB returns the Euclidean distance between two colors in RGB
// space, ignoring alpha. The maximum is roughly 441 (black to white).
func DistanceRGB(a, b color.RGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
