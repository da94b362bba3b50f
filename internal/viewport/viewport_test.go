package viewport

import (
	"math"
	"testing"

	"cutout/pkg/geometry"
)

func TestRoundTrip(t *testing.T) {
	scales := []float64{0.1, 0.5, 1.0, 2.5, 5.0}
	offsets := []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: -40}, {X: -3.5, Y: 7.25}}
	points := []geometry.Point2D{{X: 0, Y: 0}, {X: 13, Y: 29}, {X: -50, Y: 1000}}

	for _, s := range scales {
		for _, off := range offsets {
			v := &Viewport{Scale: s, Offset: off}
			for _, p := range points {
				got := v.ToScreenSpace(v.ToImageSpace(p))
				if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
					t.Errorf("scale=%v offset=%v: round trip %v -> %v", s, off, p, got)
				}
			}
		}
	}
}

func TestZoomAnchorInvariance(t *testing.T) {
	v := &Viewport{Scale: 1.0, Offset: geometry.Point2D{X: 20, Y: 30}}
	anchor := geometry.Point2D{X: 150, Y: 80}

	before := v.ToImageSpace(anchor)
	v.Zoom(0.75, anchor)
	after := v.ToImageSpace(anchor)

	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Errorf("anchor drifted: before=%v after=%v", before, after)
	}
	if v.Scale != 1.75 {
		t.Errorf("scale = %v, want 1.75", v.Scale)
	}
}

func TestZoomClamping(t *testing.T) {
	v := New()
	anchor := geometry.Point2D{}

	v.Zoom(100, anchor)
	if v.Scale != MaxScale {
		t.Errorf("scale = %v, want clamp at %v", v.Scale, MaxScale)
	}

	v.Zoom(-100, anchor)
	if v.Scale != MinScale {
		t.Errorf("scale = %v, want clamp at %v", v.Scale, MinScale)
	}

	// Zooming while already at the bound must not move the offset.
	off := v.Offset
	v.Zoom(-1, geometry.Point2D{X: 55, Y: 66})
	if v.Offset != off {
		t.Error("offset changed on a no-op zoom")
	}
}

func TestFitToView(t *testing.T) {
	v := New()
	v.FitToView(geometry.NewSize(2000, 1000), geometry.NewSize(520, 520), 10)

	// scaleX=0.25, scaleY=0.5 -> 0.25; image becomes 500x250 centered in 520x520.
	if math.Abs(v.Scale-0.25) > 1e-9 {
		t.Fatalf("scale = %v, want 0.25", v.Scale)
	}
	if math.Abs(v.Offset.X-10) > 1e-9 || math.Abs(v.Offset.Y-135) > 1e-9 {
		t.Errorf("offset = %v, want (10, 135)", v.Offset)
	}
}

func TestFitToViewNeverUpscales(t *testing.T) {
	v := New()
	v.FitToView(geometry.NewSize(100, 100), geometry.NewSize(1000, 1000), 0)
	if v.Scale != 1.0 {
		t.Errorf("scale = %v, want 1.0 for small images", v.Scale)
	}
}

func TestPanUnbounded(t *testing.T) {
	v := New()
	v.Pan(-1e6, 1e6)
	if v.Offset.X != -1e6 || v.Offset.Y != 1e6 {
		t.Errorf("offset = %v", v.Offset)
	}
}
