package mask

import (
	"cutout/pkg/geometry"
)

// Eight compass directions in clockwise order starting east.
var neighbors = [8]geometry.PointInt{
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
}

// TraceBoundary walks the outer boundary of the first connected foreground
// region using Moore-neighbor tracing. The start pixel is the row-major first
// foreground pixel; the walk ends when it returns there, or after 2*w*h steps
// on pathological masks, in which case the partial boundary is returned.
// An all-background mask yields nil. Complexity is linear in boundary length.
func TraceBoundary(b *Bitmap) []geometry.PointInt {
	start, ok := firstForeground(b)
	if !ok {
		return nil
	}

	points := []geometry.PointInt{start}
	cur := start

	// The start pixel is the topmost of its row and leftmost in that row, so
	// every neighbor from W clockwise through NE is background. Seeding the
	// direction as N makes the first scan begin at W.
	dir := 6
	maxSteps := 2 * b.Width * b.Height

	for step := 0; step < maxSteps; step++ {
		found := -1
		// Resume scanning six steps on from the arrival direction, advancing
		// clockwise through all eight neighbors.
		for k := 0; k < 8; k++ {
			idx := (dir + 6 + k) % 8
			n := geometry.PointInt{X: cur.X + neighbors[idx].X, Y: cur.Y + neighbors[idx].Y}
			if b.At(n.X, n.Y) {
				found = idx
				cur = n
				break
			}
		}
		if found < 0 {
			// Isolated pixel: the boundary is the pixel itself.
			break
		}
		if cur == start {
			break
		}
		points = append(points, cur)
		dir = found
	}

	return points
}

// ToPoints converts integer mask points to float image points.
func ToPoints(pts []geometry.PointInt) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = p.ToFloat()
	}
	return out
}

func firstForeground(b *Bitmap) (geometry.PointInt, bool) {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.At(x, y) {
				return geometry.PointInt{X: x, Y: y}, true
			}
		}
	}
	return geometry.PointInt{}, false
}
