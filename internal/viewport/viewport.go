// Package viewport maps between screen coordinates and image coordinates
// under the current zoom scale and pan offset.
package viewport

import (
	"cutout/pkg/geometry"
)

const (
	// MinScale and MaxScale bound the zoom range.
	MinScale = 0.1
	MaxScale = 5.0
)

// Viewport holds the affine map from image space to screen space:
// screen = image*scale + offset. Offset is in screen pixels.
type Viewport struct {
	Scale  float64
	Offset geometry.Point2D
}

// New returns a viewport at scale 1 with no offset.
func New() *Viewport {
	return &Viewport{Scale: 1.0}
}

// ToImageSpace converts a screen point to image coordinates.
func (v *Viewport) ToImageSpace(screen geometry.Point2D) geometry.Point2D {
	return screen.Sub(v.Offset).Scale(1.0 / v.Scale)
}

// ToScreenSpace converts an image point to screen coordinates.
func (v *Viewport) ToScreenSpace(img geometry.Point2D) geometry.Point2D {
	return img.Scale(v.Scale).Add(v.Offset)
}

// Zoom adjusts the scale by delta, clamped to [MinScale, MaxScale], keeping
// the image point under anchor fixed on screen. Pass the visible-area center
// as the anchor to zoom around the middle of the view.
func (v *Viewport) Zoom(delta float64, anchor geometry.Point2D) {
	oldScale := v.Scale
	newScale := clampScale(oldScale + delta)
	if newScale == oldScale {
		return
	}

	// offset' = anchor - (anchor - offset) * (newScale/oldScale)
	ratio := newScale / oldScale
	v.Offset = anchor.Sub(anchor.Sub(v.Offset).Scale(ratio))
	v.Scale = newScale
}

// SetScale sets the scale directly (clamped), keeping the anchor fixed.
func (v *Viewport) SetScale(scale float64, anchor geometry.Point2D) {
	v.Zoom(clampScale(scale)-v.Scale, anchor)
}

// Pan translates the view by a screen-space delta. Panning is unbounded.
func (v *Viewport) Pan(dx, dy float64) {
	v.Offset.X += dx
	v.Offset.Y += dy
}

// FitToView sets scale and offset so the image fits inside the visible area
// with the given margin of screen pixels, centered. Never scales above 1.
func (v *Viewport) FitToView(imageSize, viewSize geometry.Size, padding float64) {
	if imageSize.Width <= 0 || imageSize.Height <= 0 ||
		viewSize.Width <= 0 || viewSize.Height <= 0 {
		return
	}

	scaleX := (viewSize.Width - 2*padding) / imageSize.Width
	scaleY := (viewSize.Height - 2*padding) / imageSize.Height

	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	if scale > 1.0 {
		scale = 1.0
	}
	v.Scale = clampScale(scale)

	v.Offset = geometry.Point2D{
		X: (viewSize.Width - imageSize.Width*v.Scale) / 2,
		Y: (viewSize.Height - imageSize.Height*v.Scale) / 2,
	}
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
