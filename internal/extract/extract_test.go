package extract

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"cutout/internal/backend"
	"cutout/internal/compositor"
	"cutout/internal/selection"
	"cutout/pkg/geometry"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func squarePolygon(x, y, size float64) *selection.Polygon {
	return selection.NewClosedPolygon([]geometry.Point2D{
		{X: x, Y: y},
		{X: x + size, Y: y},
		{X: x + size, Y: y + size},
		{X: x, Y: y + size},
	})
}

func TestExtractRejectsOpenPolygon(t *testing.T) {
	e := New(nil)
	src := solidImage(10, 10, color.RGBA{R: 1, A: 255})

	if _, err := e.Extract(context.Background(), src, nil, Options{}); !errors.Is(err, ErrOpenPolygon) {
		t.Errorf("nil polygon: err = %v", err)
	}

	open := selection.NewPolygon(geometry.Point2D{X: 1, Y: 1})
	if _, err := e.Extract(context.Background(), src, open, Options{}); !errors.Is(err, ErrOpenPolygon) {
		t.Errorf("open polygon: err = %v", err)
	}
}

func TestExtractClipsToPolygon(t *testing.T) {
	e := New(nil)
	red := color.RGBA{R: 200, A: 255}
	src := solidImage(40, 40, red)

	// Triangle covering the lower-left half of a 20x20 box at (10, 10).
	tri := selection.NewClosedPolygon([]geometry.Point2D{
		{X: 10, Y: 10},
		{X: 10, Y: 30},
		{X: 30, Y: 30},
	})

	out, err := e.Extract(context.Background(), src, tri, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 20 {
		t.Fatalf("crop size %v", out.Bounds())
	}

	// Deep inside the triangle.
	if got := out.RGBAAt(3, 15); got != red {
		t.Errorf("interior pixel = %+v, want %+v", got, red)
	}
	// Upper-right corner of the box is outside the triangle.
	if got := out.RGBAAt(18, 2); got.A != 0 {
		t.Errorf("exterior pixel should be transparent, got %+v", got)
	}
}

func TestExtractKeepSize(t *testing.T) {
	e := New(nil)
	blue := color.RGBA{B: 150, A: 255}
	src := solidImage(50, 50, blue)

	out, err := e.Extract(context.Background(), src, squarePolygon(20, 20, 10), Options{KeepSize: true})
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Dx() != 50 || out.Bounds().Dy() != 50 {
		t.Fatalf("keep-size result is %v, want source dimensions", out.Bounds())
	}
	if got := out.RGBAAt(25, 25); got != blue {
		t.Errorf("pixel inside selection = %+v", got)
	}
	if got := out.RGBAAt(5, 5); got.A != 0 {
		t.Errorf("pixel outside selection should stay transparent, got %+v", got)
	}
}

func TestExtractWithRemovalAndKeying(t *testing.T) {
	e := New(&backend.Stub{})
	src := solidImage(30, 30, color.RGBA{R: 40, G: 90, B: 60, A: 255})

	// Lower-left triangle: the crop's upper-right corner is outside the
	// selection, so the stub whitens it and keying must remove it.
	tri := selection.NewClosedPolygon([]geometry.Point2D{
		{X: 5, Y: 5},
		{X: 5, Y: 25},
		{X: 25, Y: 25},
	})

	out, err := e.Extract(context.Background(), src, tri, Options{
		RemoveBackground: true,
		KeyOut:           true,
		Key:              compositor.Options{Tolerance: 30, Softness: 5},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := out.RGBAAt(18, 2); got.A != 0 {
		t.Errorf("whitened corner should be keyed out, got %+v", got)
	}
	// Interior color is far from white and must survive.
	if got := out.RGBAAt(2, 15); got.A != 255 {
		t.Errorf("interior should stay opaque, got %+v", got)
	}
}

func TestExtractCollaboratorFailureAborts(t *testing.T) {
	e := New(&backend.Stub{FailRemove: true})
	src := solidImage(20, 20, color.RGBA{R: 9, A: 255})

	out, err := e.Extract(context.Background(), src, squarePolygon(2, 2, 10), Options{RemoveBackground: true})
	if err == nil {
		t.Fatal("expected collaborator failure to surface")
	}
	if out != nil {
		t.Error("no partial result on failure")
	}
}

func TestExtractSingleFlight(t *testing.T) {
	block := make(chan struct{})
	e := New(blockingRemover{block: block})
	src := solidImage(20, 20, color.RGBA{G: 7, A: 255})
	poly := squarePolygon(2, 2, 10)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.Extract(context.Background(), src, poly, Options{RemoveBackground: true})
	}()

	<-block // first call is now inside the collaborator
	if _, err := e.Extract(context.Background(), src, poly, Options{}); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent extract: err = %v, want ErrBusy", err)
	}
	close(block)
	wg.Wait()

	// The extractor must be reusable afterwards.
	if _, err := e.Extract(context.Background(), src, poly, Options{}); err != nil {
		t.Errorf("extract after completion: %v", err)
	}
}

// blockingRemover signals entry and stalls until released.
type blockingRemover struct {
	block chan struct{}
}

func (b blockingRemover) RemoveBackground(ctx context.Context, encoded []byte) ([]byte, error) {
	b.block <- struct{}{}
	<-b.block
	return encoded, nil
}
