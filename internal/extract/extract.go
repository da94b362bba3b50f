// Package extract sequences the cutout pipeline: clip the source raster by
// the selection polygon, optionally whiten the background through the
// removal collaborator, and hand the result to the alpha-keying compositor.
package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync/atomic"

	"github.com/disintegration/imaging"

	"cutout/internal/backend"
	"cutout/internal/compositor"
	"cutout/internal/imageio"
	"cutout/internal/selection"
	"cutout/pkg/geometry"
)

// ErrBusy is returned when an extraction is already in flight.
var ErrBusy = errors.New("extraction already in progress")

// ErrOpenPolygon is returned when the selection is absent or not closed.
var ErrOpenPolygon = errors.New("selection polygon is not closed")

// Options configure an extraction run.
type Options struct {
	// RemoveBackground routes the crop through the removal collaborator.
	RemoveBackground bool
	// KeepSize composites the crop back onto a full-canvas transparent
	// raster at its original position instead of returning just the crop.
	KeepSize bool
	// KeyOut runs the alpha-keying pass on the result.
	KeyOut bool
	// Key holds the compositor thresholds when KeyOut is set.
	Key compositor.Options
}

// Extractor runs extractions one at a time. Concurrent calls are rejected,
// never interleaved: both would write the same result state.
type Extractor struct {
	remover backend.BackgroundRemover
	busy    atomic.Bool
}

// New creates an extractor. The remover may be nil if Options.RemoveBackground
// is never set.
func New(remover backend.BackgroundRemover) *Extractor {
	return &Extractor{remover: remover}
}

// Busy reports whether an extraction is currently running.
func (e *Extractor) Busy() bool {
	return e.busy.Load()
}

// Extract clips src by the closed polygon and runs the optional pipeline
// stages. Any collaborator failure aborts the run; partial results are
// discarded. The source raster is never modified.
func (e *Extractor) Extract(ctx context.Context, src *image.RGBA, poly *selection.Polygon, opts Options) (*image.RGBA, error) {
	if poly == nil || !poly.Closed {
		return nil, ErrOpenPolygon
	}
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.busy.Store(false)

	crop, origin := clipByPolygon(src, poly)
	if crop.Bounds().Dx() == 0 || crop.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("selection lies outside the image")
	}

	if opts.RemoveBackground {
		if e.remover == nil {
			return nil, fmt.Errorf("no background-removal collaborator configured")
		}
		replaced, err := e.removeBackground(ctx, crop)
		if err != nil {
			return nil, err
		}
		crop = replaced
	}

	result := crop
	if opts.KeepSize {
		canvas := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
		target := image.Rect(origin.X, origin.Y, origin.X+crop.Bounds().Dx(), origin.Y+crop.Bounds().Dy())
		draw.Draw(canvas, target, crop, image.Point{}, draw.Src)
		result = canvas
	}

	if opts.KeyOut {
		result = compositor.KeyOut(result, opts.Key)
	}

	return result, nil
}

func (e *Extractor) removeBackground(ctx context.Context, crop *image.RGBA) (*image.RGBA, error) {
	encoded, err := imageio.EncodePNG(crop)
	if err != nil {
		return nil, err
	}

	payload, err := e.remover.RemoveBackground(ctx, encoded)
	if err != nil {
		return nil, fmt.Errorf("background removal failed: %w", err)
	}

	replaced, err := imageio.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("background removal returned bad payload: %w", err)
	}

	// Collaborators may return the crop at their working resolution; bring
	// it back to the crop size before compositing.
	cw, ch := crop.Bounds().Dx(), crop.Bounds().Dy()
	if replaced.Bounds().Dx() != cw || replaced.Bounds().Dy() != ch {
		resized := imaging.Resize(replaced, cw, ch, imaging.Lanczos)
		replaced = imageio.ToRGBA(resized)
	}
	return replaced, nil
}

// clipByPolygon copies the pixels inside the polygon into a raster sized to
// the polygon's bounding box; everything outside is fully transparent.
// Returns the crop and its top-left position in source coordinates.
func clipByPolygon(src *image.RGBA, poly *selection.Polygon) (*image.RGBA, image.Point) {
	b := poly.Bounds
	x0 := clamp(int(math.Floor(b.X)), 0, src.Bounds().Dx())
	y0 := clamp(int(math.Floor(b.Y)), 0, src.Bounds().Dy())
	x1 := clamp(int(math.Ceil(b.X+b.Width)), 0, src.Bounds().Dx())
	y1 := clamp(int(math.Ceil(b.Y+b.Height)), 0, src.Bounds().Dy())

	crop := image.NewRGBA(image.Rect(0, 0, x1-x0, y1-y0))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			// Pixel centers decide membership, same ray-cast rule as hit
			// testing.
			center := geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if geometry.PointInPolygon(center, poly.Points) {
				crop.SetRGBA(x-x0, y-y0, src.RGBAAt(x, y))
			}
		}
	}
	return crop, image.Point{X: x0, Y: y0}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
