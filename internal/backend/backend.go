// Package backend abstracts the three external collaborators: prompt-driven
// image generation, background removal, and box-guided segmentation. Images
// cross this boundary as encoded byte payloads; masks as row-major bytes.
package backend

import (
	"context"

	"cutout/pkg/geometry"
)

// Box is an axis-aligned region in source-image pixel coordinates, carried
// as [xmin, ymin, xmax, ymax] at the collaborator boundary.
type Box struct {
	XMin, YMin, XMax, YMax float64
}

// BoxFromRect converts a rectangle to the collaborator box convention.
func BoxFromRect(r geometry.Rect) Box {
	r = r.Normalized()
	return Box{XMin: r.X, YMin: r.Y, XMax: r.X + r.Width, YMax: r.Y + r.Height}
}

// SegmentResult is the segmentation collaborator's raw output: a binary mask
// covering the requested box at a fixed inference resolution. Mask pixel
// (mx, my) maps to image pixel (xmin + mx*Scale, ymin + my*Scale).
type SegmentResult struct {
	Mask   []byte // row-major, origin top-left, non-zero = foreground
	Width  int
	Height int
	Scale  float64
}

// Generator produces a raster from a text prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// BackgroundRemover replaces a raster's background with solid white.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, encoded []byte) ([]byte, error)
}

// Segmenter returns a best-effort foreground mask for a boxed region.
type Segmenter interface {
	Segment(ctx context.Context, encoded []byte, box Box) (*SegmentResult, error)
}

// Backend bundles all three collaborator calls.
type Backend interface {
	Generator
	BackgroundRemover
	Segmenter
}
