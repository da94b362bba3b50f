package geometry

import (
	"math"
	"testing"
)

func TestPointInPolygonSquare(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	tests := []struct {
		name string
		p    Point2D
		want bool
	}{
		{"center", Point2D{5, 5}, true},
		{"outside right", Point2D{15, 5}, false},
		{"outside above", Point2D{5, -3}, false},
		{"near corner inside", Point2D{0.5, 0.5}, true},
		{"far away", Point2D{-100, -100}, false},
	}

	for _, tt := range tests {
		if got := PointInPolygon(tt.p, square); got != tt.want {
			t.Errorf("%s: PointInPolygon(%v) = %v, want %v", tt.name, tt.p, got, tt.want)
		}
	}
}

func TestPointInPolygonDegenerate(t *testing.T) {
	if PointInPolygon(Point2D{1, 1}, []Point2D{{0, 0}, {2, 2}}) {
		t.Error("2-point polygon should contain nothing")
	}
	if PointInPolygon(Point2D{1, 1}, nil) {
		t.Error("empty polygon should contain nothing")
	}
}

func TestPointInPolygonConcave(t *testing.T) {
	// L-shaped polygon; the notch must classify outside.
	l := []Point2D{{0, 0}, {10, 0}, {10, 4}, {4, 4}, {4, 10}, {0, 10}}

	if !PointInPolygon(Point2D{2, 8}, l) {
		t.Error("point in vertical arm should be inside")
	}
	if PointInPolygon(Point2D{8, 8}, l) {
		t.Error("point in notch should be outside")
	}
}

func TestSimplifyErrorBound(t *testing.T) {
	// Noisy sine sampled densely; after simplification every input point must
	// stay within epsilon of the retained polyline.
	const epsilon = 0.5
	var path []Point2D
	for i := 0; i <= 200; i++ {
		x := float64(i)
		path = append(path, Point2D{X: x, Y: 10 * math.Sin(x/15)})
	}

	out := Simplify(path, epsilon)

	if len(out) > len(path) {
		t.Fatalf("output longer than input: %d > %d", len(out), len(path))
	}
	if len(out) < 2 {
		t.Fatalf("output too short: %d", len(out))
	}
	if out[0] != path[0] || out[len(out)-1] != path[len(path)-1] {
		t.Error("endpoints must be preserved")
	}

	for _, p := range path {
		best := math.Inf(1)
		for i := 0; i < len(out)-1; i++ {
			if d := PointToSegmentDistance(p, out[i], out[i+1]); d < best {
				best = d
			}
		}
		if best > epsilon+1e-9 {
			t.Fatalf("point %v is %.4f from simplified path, tolerance %.2f", p, best, epsilon)
		}
	}
}

func TestSimplifyCollinear(t *testing.T) {
	path := []Point2D{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}
	out := Simplify(path, 0.1)
	if len(out) != 2 {
		t.Errorf("collinear path should collapse to endpoints, got %d points", len(out))
	}
}

func TestSimplifyShortInput(t *testing.T) {
	path := []Point2D{{0, 0}, {5, 5}}
	out := Simplify(path, 1.0)
	if len(out) != 2 {
		t.Errorf("length-2 input must be returned unchanged, got %d points", len(out))
	}
}

func TestPerpendicularDistance(t *testing.T) {
	d := PerpendicularDistance(Point2D{0, 5}, Point2D{-10, 0}, Point2D{10, 0})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("distance to horizontal line = %f, want 5", d)
	}

	// Degenerate segment falls back to point distance.
	d = PerpendicularDistance(Point2D{3, 4}, Point2D{0, 0}, Point2D{0, 0})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("distance to degenerate segment = %f, want 5", d)
	}
}

func TestPointToSegmentDistanceClamping(t *testing.T) {
	a, b := Point2D{0, 0}, Point2D{10, 0}

	// Beyond segment end: distance is to the endpoint, not the infinite line.
	d := PointToSegmentDistance(Point2D{14, 3}, a, b)
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("clamped distance = %f, want 5", d)
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{3, 7}, {-1, 2}, {5, 4}}
	r := BoundingBox(pts)
	want := Rect{X: -1, Y: 2, Width: 6, Height: 5}
	if r != want {
		t.Errorf("BoundingBox = %+v, want %+v", r, want)
	}

	if (BoundingBox(nil) != Rect{}) {
		t.Error("empty input should produce zero rect")
	}
}
