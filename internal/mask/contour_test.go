package mask

import (
	"testing"

	"cutout/pkg/geometry"
)

func filledRect(w, h, x0, y0, rw, rh int) *Bitmap {
	b := New(w, h)
	for y := y0; y < y0+rh; y++ {
		for x := x0; x < x0+rw; x++ {
			b.Set(x, y, true)
		}
	}
	return b
}

func adjacent(a, b geometry.PointInt) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= 1 && dy <= 1
}

func TestTraceFilledRectangleClosure(t *testing.T) {
	sizes := []struct{ w, h int }{{3, 3}, {5, 8}, {20, 4}, {16, 16}}

	for _, s := range sizes {
		b := filledRect(s.w+4, s.h+4, 2, 2, s.w, s.h)
		pts := TraceBoundary(b)

		if len(pts) == 0 {
			t.Fatalf("%dx%d: empty boundary", s.w, s.h)
		}

		// Boundary length must be O(w+h): the rectangle perimeter is
		// 2w + 2h - 4 pixels, far below the area for larger inputs.
		perimeter := 2*s.w + 2*s.h - 4
		if len(pts) > perimeter {
			t.Errorf("%dx%d: boundary has %d points, perimeter is %d", s.w, s.h, len(pts), perimeter)
		}

		first, last := pts[0], pts[len(pts)-1]
		if first != last && !adjacent(first, last) {
			t.Errorf("%dx%d: boundary not closed: first=%v last=%v", s.w, s.h, first, last)
		}

		if first != (geometry.PointInt{X: 2, Y: 2}) {
			t.Errorf("%dx%d: start = %v, want row-major first pixel (2,2)", s.w, s.h, first)
		}

		// Every traced point is a boundary pixel: foreground with at least
		// one background 4-neighbor.
		for _, p := range pts {
			if !b.At(p.X, p.Y) {
				t.Fatalf("%dx%d: traced background pixel %v", s.w, s.h, p)
			}
			if b.At(p.X+1, p.Y) && b.At(p.X-1, p.Y) && b.At(p.X, p.Y+1) && b.At(p.X, p.Y-1) {
				t.Fatalf("%dx%d: traced interior pixel %v", s.w, s.h, p)
			}
		}
	}
}

func TestTraceEmptyMask(t *testing.T) {
	if pts := TraceBoundary(New(10, 10)); pts != nil {
		t.Errorf("empty mask produced %d points", len(pts))
	}
}

func TestTraceSinglePixel(t *testing.T) {
	b := New(5, 5)
	b.Set(2, 3, true)
	pts := TraceBoundary(b)
	if len(pts) != 1 || pts[0] != (geometry.PointInt{X: 2, Y: 3}) {
		t.Errorf("single-pixel mask: %v", pts)
	}
}

func TestTracePicksFirstRegion(t *testing.T) {
	// Two disjoint blobs; the walk must trace the one whose first pixel comes
	// first in row-major order.
	b := filledRect(20, 20, 10, 2, 3, 3)
	for y := 12; y < 16; y++ {
		for x := 1; x < 5; x++ {
			b.Set(x, y, true)
		}
	}

	pts := TraceBoundary(b)
	if pts[0] != (geometry.PointInt{X: 10, Y: 2}) {
		t.Errorf("start = %v, want (10,2)", pts[0])
	}
	for _, p := range pts {
		if p.Y > 5 {
			t.Fatalf("walk leaked into the second region at %v", p)
		}
	}
}

func TestTraceIterationCap(t *testing.T) {
	// A dense checkerboard is pathological for boundary walks; the cap must
	// bound the output rather than hang.
	b := New(32, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if (x+y)%2 == 0 {
				b.Set(x, y, true)
			}
		}
	}

	pts := TraceBoundary(b)
	if len(pts) > 2*32*32+1 {
		t.Errorf("boundary exceeded iteration cap: %d points", len(pts))
	}
}

func TestRescale(t *testing.T) {
	// A half-foreground 4x4 mask scaled to 8x8 keeps its left half foreground.
	b := New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			b.Set(x, y, true)
		}
	}

	big := b.Rescale(8, 8)
	if big.Width != 8 || big.Height != 8 {
		t.Fatalf("rescaled size %dx%d", big.Width, big.Height)
	}
	if !big.At(0, 0) || !big.At(3, 7) {
		t.Error("left half should stay foreground")
	}
	if big.At(7, 0) || big.At(4, 7) {
		t.Error("right half should stay background")
	}
}

func TestFromBytes(t *testing.T) {
	data := []byte{0, 1, 0, 255, 0, 0}
	b, err := FromBytes(data, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !b.At(1, 0) || !b.At(0, 1) {
		t.Error("non-zero bytes should be foreground")
	}
	if b.At(0, 0) || b.At(2, 1) {
		t.Error("zero bytes should be background")
	}

	if _, err := FromBytes(data, 4, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}
