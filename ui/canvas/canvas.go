// Package canvas provides the image editing canvas with pan, zoom, and
// polygon overlay rendering.
package canvas

import (
	"image"

	"cutout/internal/app"
	"cutout/internal/selection"
	"cutout/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// zoomStep converts one wheel notch into a zoom delta.
const zoomStep = 0.1

// EditorCanvas renders the working image through the viewport and overlays
// the selection polygon. Pointer input is forwarded to the application
// state; in idle mode drags pan the view instead.
type EditorCanvas struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	dragging bool
	lastDrag fyne.Position

	// ShowExtracted switches the canvas to previewing the extraction
	// result over a checkerboard instead of the working image.
	showExtracted bool
}

// NewEditorCanvas creates a canvas bound to the application state. The
// canvas refreshes itself on every state event that changes what it draws.
func NewEditorCanvas(state *app.State) *EditorCanvas {
	ec := &EditorCanvas{state: state}
	ec.raster = fynecanvas.NewRaster(ec.draw)
	ec.ExtendBaseWidget(ec)

	redraw := func(interface{}) { ec.Refresh() }
	state.On(app.EventImageChanged, func(data interface{}) {
		ec.showExtracted = false
		ec.fitImage()
		ec.Refresh()
	})
	state.On(app.EventPolygonChanged, redraw)
	state.On(app.EventViewChanged, redraw)
	state.On(app.EventExtractionDone, func(interface{}) {
		ec.showExtracted = true
		ec.Refresh()
	})
	return ec
}

// ShowWorking switches back from the extraction preview.
func (ec *EditorCanvas) ShowWorking() {
	ec.showExtracted = false
	ec.Refresh()
}

// ShowingExtracted reports whether the extraction preview is active.
func (ec *EditorCanvas) ShowingExtracted() bool {
	return ec.showExtracted
}

// FitImage frames the working image in the current widget size.
func (ec *EditorCanvas) FitImage() {
	ec.fitImage()
	ec.Refresh()
}

func (ec *EditorCanvas) fitImage() {
	size := ec.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	ec.state.FitToView(geometry.NewSize(float64(size.Width), float64(size.Height)))
}

// Tapped places or closes a polygon vertex at the tap position.
func (ec *EditorCanvas) Tapped(ev *fyne.PointEvent) {
	p := eventPoint(ev.Position)
	ec.state.PointerDown(p)
	ec.state.PointerUp(p)
}

// Dragged continues the active gesture. The first event of a drag opens
// it; in idle mode the drag pans the viewport.
func (ec *EditorCanvas) Dragged(ev *fyne.DragEvent) {
	if ec.state.Mode() == selection.ModeIdle {
		ec.state.Pan(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
		return
	}

	p := eventPoint(ev.Position)
	if !ec.dragging {
		ec.dragging = true
		// The event position is where the drag has moved to; anchor the
		// gesture at its origin.
		start := geometry.Point2D{
			X: p.X - float64(ev.Dragged.DX),
			Y: p.Y - float64(ev.Dragged.DY),
		}
		ec.state.PointerDown(start)
	}
	ec.state.PointerMove(p)
	ec.lastDrag = ev.Position
}

// DragEnd releases the active gesture.
func (ec *EditorCanvas) DragEnd() {
	if !ec.dragging {
		return
	}
	ec.dragging = false
	ec.state.PointerUp(eventPoint(ec.lastDrag))
}

// Scrolled zooms around the cursor position.
func (ec *EditorCanvas) Scrolled(ev *fyne.ScrollEvent) {
	delta := zoomStep
	if ev.Scrolled.DY < 0 {
		delta = -zoomStep
	}
	ec.state.Zoom(delta, eventPoint(ev.Position))
}

// CreateRenderer renders the backing raster.
func (ec *EditorCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ec.raster)
}

// MinSize keeps the canvas usable inside a split layout.
func (ec *EditorCanvas) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// draw produces the canvas raster at the requested size.
func (ec *EditorCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	fillBackground(output)

	view := ec.state.View()

	if ec.showExtracted {
		if out := ec.state.Extracted(); out != nil {
			drawCheckerboard(output)
			compositeImage(output, out, view)
			return output
		}
	}

	img := ec.state.Image()
	if img == nil {
		return output
	}
	compositeImage(output, img, view)

	poly := ec.state.Polygon()
	drawPolygonOverlay(output, poly, view)

	if ec.state.Mode() == selection.ModeSmartBox {
		if box := ec.selectionBox(); box != nil {
			drawRubberBand(output, *box, view)
		}
	}
	return output
}

// selectionBox returns the in-progress smart box in image space, or nil.
func (ec *EditorCanvas) selectionBox() *geometry.Rect {
	// The polygon snapshot path does not expose the transient box, so the
	// canvas tracks it through the drag events it forwarded.
	if !ec.dragging {
		return nil
	}
	return ec.state.SelectionBox()
}

func eventPoint(pos fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)}
}
