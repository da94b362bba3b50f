package canvas

import (
	"image"
	"image/color"
	"testing"

	"cutout/internal/selection"
	"cutout/internal/viewport"
	"cutout/pkg/geometry"
)

func TestCompositeImageMapsThroughViewport(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(1, 1, color.RGBA{R: 255, A: 255})

	out := image.NewRGBA(image.Rect(0, 0, 20, 20))
	fillBackground(out)

	v := viewport.New()
	v.Scale = 2
	v.Offset = geometry.Point2D{X: 4, Y: 4}
	compositeImage(out, src, v)

	// Image pixel (1,1) covers screen [6,8)x[6,8) at scale 2.
	if got := out.RGBAAt(6, 6); got.R != 255 {
		t.Errorf("pixel (6,6) = %+v, want red source pixel", got)
	}
	if got := out.RGBAAt(8, 8); got.R == 255 {
		t.Error("pixel (8,8) should be outside the scaled source pixel")
	}
	// Outside the image the backdrop must remain.
	if got := out.RGBAAt(1, 1); got != backgroundColor {
		t.Errorf("pixel (1,1) = %+v, want backdrop", got)
	}
}

func TestDrawPolygonOverlayHighlightsFirstVertex(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fillBackground(out)

	poly := selection.NewPolygon(
		geometry.Point2D{X: 20, Y: 20},
		geometry.Point2D{X: 80, Y: 20},
	)
	drawPolygonOverlay(out, poly, viewport.New())

	if got := out.RGBAAt(20, 20); got != firstHandle {
		t.Errorf("open polygon start handle = %+v, want highlight", got)
	}
	if got := out.RGBAAt(80, 20); got != handleColor {
		t.Errorf("second handle = %+v, want plain handle", got)
	}
	if got := out.RGBAAt(50, 20); got != outlineColor {
		t.Errorf("edge midpoint = %+v, want outline", got)
	}
}

func TestDrawPolygonOverlayClosesLoop(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fillBackground(out)

	poly := selection.NewClosedPolygon([]geometry.Point2D{
		{X: 10, Y: 10},
		{X: 90, Y: 10},
		{X: 90, Y: 90},
		{X: 10, Y: 90},
	})
	drawPolygonOverlay(out, poly, viewport.New())

	// The closing edge from the last point back to the first.
	if got := out.RGBAAt(10, 50); got != outlineColor {
		t.Errorf("closing edge = %+v, want outline", got)
	}
	// No highlight on a closed polygon.
	if got := out.RGBAAt(10, 10); got != handleColor {
		t.Errorf("closed polygon handle = %+v, want plain handle", got)
	}
}

func TestDrawRubberBandIsDashed(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 60, 60))
	fillBackground(out)

	drawRubberBand(out, geometry.Rect{X: 10, Y: 10, Width: 40, Height: 30}, viewport.New())

	lit, dark := 0, 0
	for x := 10; x <= 50; x++ {
		if out.RGBAAt(x, 10) == bandColor {
			lit++
		} else {
			dark++
		}
	}
	if lit == 0 || dark == 0 {
		t.Errorf("top edge should be dashed, lit=%d dark=%d", lit, dark)
	}
	// Interior untouched.
	if got := out.RGBAAt(30, 25); got != backgroundColor {
		t.Errorf("band interior = %+v, want backdrop", got)
	}
}
