package backend

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"cutout/internal/imageio"
)

// inferenceSize is the long-side resolution GrabCut runs at. Inference masks
// come back at this scale and are remapped to image coordinates by the caller.
const inferenceSize = 256

// GrabCutSegmenter is a local, network-free Segmenter built on OpenCV's
// GrabCut initialized from the selection box.
type GrabCutSegmenter struct {
	// Iterations controls GrabCut refinement rounds.
	Iterations int
}

// NewGrabCutSegmenter returns a segmenter with default iteration count.
func NewGrabCutSegmenter() *GrabCutSegmenter {
	return &GrabCutSegmenter{Iterations: 5}
}

// Segment runs GrabCut over the boxed region at inference resolution.
// GrabCut mask classes 1 (foreground) and 3 (probable foreground) are
// reported as foreground.
func (g *GrabCutSegmenter) Segment(ctx context.Context, encoded []byte, box Box) (*SegmentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imageio.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("grabcut: %w", err)
	}

	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("grabcut: empty image")
	}

	// Downscale so the long side is inferenceSize.
	scale := float64(srcW) / inferenceSize
	if srcH > srcW {
		scale = float64(srcH) / inferenceSize
	}
	if scale < 1 {
		scale = 1
	}
	w := int(float64(srcW) / scale)
	h := int(float64(srcH) / scale)

	rgba, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("grabcut: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(bgr, &small, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationLinear)

	rect := image.Rect(
		clampInt(int(box.XMin/scale), 0, w-1),
		clampInt(int(box.YMin/scale), 0, h-1),
		clampInt(int(box.XMax/scale), 1, w),
		clampInt(int(box.YMax/scale), 1, h),
	)
	if rect.Dx() < 2 || rect.Dy() < 2 {
		return nil, fmt.Errorf("grabcut: degenerate box %v", rect)
	}

	maskMat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	defer maskMat.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	gocv.GrabCut(small, &maskMat, rect, &bgdModel, &fgdModel, g.Iterations, gocv.GCInitWithRect)

	// Crop the mask to the box region; the wire contract is box-relative.
	bw := rect.Dx()
	bh := rect.Dy()
	out := make([]byte, bw*bh)
	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			c := maskMat.GetUCharAt(rect.Min.Y+y, rect.Min.X+x)
			if c == 1 || c == 3 {
				out[y*bw+x] = 255
			}
		}
	}

	return &SegmentResult{
		Mask:   out,
		Width:  bw,
		Height: bh,
		Scale:  scale,
	}, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
