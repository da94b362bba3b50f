package geometry

import "math"

// PointInPolygon tests if a point is inside a polygon using ray casting.
// A point exactly on the boundary may classify either way.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PerpendicularDistance calculates the perpendicular distance from point p to line a-b.
func PerpendicularDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		// a and b are the same point
		return math.Sqrt((p.X-a.X)*(p.X-a.X) + (p.Y-a.Y)*(p.Y-a.Y))
	}

	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	den := math.Sqrt(dx*dx + dy*dy)
	return num / den
}

// PointToSegmentDistance calculates the minimum distance from a point to a line segment.
func PointToSegmentDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		// Segment is a point
		return p.Distance(a)
	}

	// Parameter t of closest point on infinite line
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)

	// Clamp to segment
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := Point2D{X: a.X + t*dx, Y: a.Y + t*dy}
	return p.Distance(closest)
}

// Simplify reduces the number of vertices using the Ramer-Douglas-Peucker
// algorithm. Every dropped input point lies within epsilon perpendicular
// distance of some retained segment.
func Simplify(path []Point2D, epsilon float64) []Point2D {
	if len(path) <= 2 {
		return path
	}

	// Find point with maximum distance from line between first and last points
	dmax := 0.0
	index := 0
	end := len(path) - 1

	for i := 1; i < end; i++ {
		d := PerpendicularDistance(path[i], path[0], path[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	// If max distance is greater than epsilon, recursively simplify
	if dmax > epsilon {
		left := Simplify(path[:index+1], epsilon)
		right := Simplify(path[index:], epsilon)

		// Build result (avoid duplicating middle point)
		result := make([]Point2D, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	// All points between first and last are within epsilon, return just endpoints
	return []Point2D{path[0], path[end]}
}

// TranslatePoints returns a copy of points translated by delta.
func TranslatePoints(points []Point2D, delta Point2D) []Point2D {
	out := make([]Point2D, len(points))
	for i, p := range points {
		out[i] = p.Add(delta)
	}
	return out
}
