package backend

import (
	"context"
	"errors"
	"image"
	"image/color"

	"cutout/internal/imageio"
)

// Stub is a deterministic in-process Backend for tests and headless runs.
// Zero value: Generate yields a gray canvas, RemoveBackground whitens
// transparent pixels, Segment reports an inset rectangle of the request box.
type Stub struct {
	// FailGenerate, FailRemove, and FailSegment simulate collaborator
	// failures for the corresponding call.
	FailGenerate bool
	FailRemove   bool
	FailSegment  bool

	// EmptyMask makes Segment return an all-background mask, exercising the
	// degenerate-mask fallback path.
	EmptyMask bool

	// GenerateSize is the canvas produced by Generate (default 512x512).
	GenerateSize image.Point
}

// ErrStubFailure is returned by calls configured to fail.
var ErrStubFailure = errors.New("stub collaborator failure")

// Generate returns a flat mid-gray PNG canvas.
func (s *Stub) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if s.FailGenerate {
		return nil, ErrStubFailure
	}
	size := s.GenerateSize
	if size.X <= 0 || size.Y <= 0 {
		size = image.Point{X: 512, Y: 512}
	}
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 128
		img.Pix[i+1] = 128
		img.Pix[i+2] = 128
		img.Pix[i+3] = 255
	}
	return imageio.EncodePNG(img)
}

// RemoveBackground repaints fully transparent pixels solid white, the same
// contract the real collaborator honors.
func (s *Stub) RemoveBackground(ctx context.Context, encoded []byte) ([]byte, error) {
	if s.FailRemove {
		return nil, ErrStubFailure
	}
	img, err := imageio.Decode(encoded)
	if err != nil {
		return nil, err
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.RGBAAt(x, y).A == 0 {
				img.SetRGBA(x, y, white)
			}
		}
	}
	return imageio.EncodePNG(img)
}

// Segment returns a 64x64 mask whose foreground is the box inset by 1/8 of
// its size on every side, scaled so the mask maps back onto the box.
func (s *Stub) Segment(ctx context.Context, encoded []byte, box Box) (*SegmentResult, error) {
	if s.FailSegment {
		return nil, ErrStubFailure
	}

	const res = 64
	mask := make([]byte, res*res)
	if !s.EmptyMask {
		inset := res / 8
		for y := inset; y < res-inset; y++ {
			for x := inset; x < res-inset; x++ {
				mask[y*res+x] = 255
			}
		}
	}

	// Anisotropic boxes still report a single scale; the caller's affine
	// remap absorbs the residual via the box corners.
	scale := (box.XMax - box.XMin) / res
	return &SegmentResult{Mask: mask, Width: res, Height: res, Scale: scale}, nil
}
