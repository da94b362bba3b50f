package selection

import (
	"cutout/pkg/geometry"
)

// Mode identifies the active input tool.
type Mode int

const (
	// ModeIdle accepts no geometry edits.
	ModeIdle Mode = iota
	// ModePen draws and edits the polygon vertex by vertex.
	ModePen
	// ModeSmartBox drags a box that is handed to the segmentation flow.
	ModeSmartBox
)

func (m Mode) String() string {
	switch m {
	case ModePen:
		return "Pen"
	case ModeSmartBox:
		return "SmartBox"
	default:
		return "Idle"
	}
}

const (
	// vertexHitRadius is the nominal vertex hit target in screen pixels.
	vertexHitRadius = 8.0
	// hitSlack is extra grab distance on top of the vertex radius.
	hitSlack = 4.0
)

// Editor consumes pointer events already mapped to image space and mutates
// the polygon and its history. It is not safe for concurrent use; the event
// dispatch path is its single writer.
type Editor struct {
	Polygon *Polygon
	History *History

	mode  Mode
	scale float64 // current viewport scale, for screen-constant hit radii
	busy  bool    // segmentation in flight; blocks new box drags only

	// Drag sessions. dragVertex is -1 when no vertex drag is active.
	dragVertex int
	dragShape  bool
	lastDrag   geometry.Point2D

	// Smart-box drag state. The box is transient and never enters history.
	boxActive bool
	boxStart  geometry.Point2D
	boxEnd    geometry.Point2D
}

// NewEditor returns an idle editor with no polygon.
func NewEditor() *Editor {
	return &Editor{
		History:    NewHistory(),
		mode:       ModeIdle,
		scale:      1.0,
		dragVertex: -1,
	}
}

// Mode returns the active input mode.
func (e *Editor) Mode() Mode { return e.mode }

// SetMode switches the input tool. Leaving geometric selection discards the
// polygon and clears history.
func (e *Editor) SetMode(m Mode) {
	if m == e.mode {
		return
	}
	if m == ModeIdle {
		e.Reset()
	}
	e.mode = m
	e.endDrags()
}

// SetScale updates the viewport scale used for hit radius computation.
func (e *Editor) SetScale(scale float64) {
	if scale > 0 {
		e.scale = scale
	}
}

// SetBusy toggles the segmentation-in-flight sub-state. While busy, new
// box drags are rejected; undo/redo and pen edits stay available.
func (e *Editor) SetBusy(busy bool) {
	e.busy = busy
	if busy {
		e.boxActive = false
	}
}

// Busy reports whether a segmentation call is in flight.
func (e *Editor) Busy() bool { return e.busy }

// hitRadius returns the grab distance in image units. Dividing by scale keeps
// the on-screen target size constant under zoom.
func (e *Editor) hitRadius() float64 {
	return (vertexHitRadius + hitSlack) / e.scale
}

// hitVertex returns the index of the first vertex within the hit radius of p,
// or -1.
func (e *Editor) hitVertex(p geometry.Point2D) int {
	if e.Polygon == nil {
		return -1
	}
	r := e.hitRadius()
	for i, v := range e.Polygon.Points {
		if v.Distance(p) <= r {
			return i
		}
	}
	return -1
}

// PointerDown handles a press at an image-space point.
func (e *Editor) PointerDown(p geometry.Point2D) {
	switch e.mode {
	case ModePen:
		e.penDown(p)
	case ModeSmartBox:
		if e.busy {
			return
		}
		e.boxActive = true
		e.boxStart = p
		e.boxEnd = p
	}
}

func (e *Editor) penDown(p geometry.Point2D) {
	poly := e.Polygon

	// Close on the first vertex, but only once the polygon can survive closing.
	if poly != nil && !poly.Closed && len(poly.Points) >= 3 &&
		poly.Points[0].Distance(p) <= e.hitRadius() {
		e.History.Push(poly)
		poly.Close()
		return
	}

	if idx := e.hitVertex(p); idx >= 0 {
		e.History.Push(poly)
		e.dragVertex = idx
		e.lastDrag = p
		return
	}

	if poly != nil && poly.Closed {
		if poly.Contains(p) {
			e.History.Push(poly)
			e.dragShape = true
			e.lastDrag = p
		}
		return
	}

	// Open (or absent) polygon: append a vertex.
	e.History.Push(poly)
	if poly == nil {
		e.Polygon = NewPolygon(p)
	} else {
		poly.Append(p)
	}
}

// PointerMove handles a drag to an image-space point.
func (e *Editor) PointerMove(p geometry.Point2D) {
	switch {
	case e.boxActive:
		e.boxEnd = p
	case e.dragVertex >= 0 && e.Polygon != nil:
		e.Polygon.MoveVertex(e.dragVertex, p)
		e.lastDrag = p
	case e.dragShape && e.Polygon != nil:
		e.Polygon.Translate(p.Sub(e.lastDrag))
		e.lastDrag = p
	}
}

// PointerUp ends the active gesture. For a smart-box drag it returns the
// completed box in image coordinates; otherwise nil. History entries were
// already pushed at gesture start, so a whole drag is one undo step.
func (e *Editor) PointerUp(p geometry.Point2D) *geometry.Rect {
	if e.boxActive {
		e.boxActive = false
		e.boxEnd = p
		box := e.SelectionBox()
		return box
	}
	e.endDrags()
	return nil
}

// SelectionBox returns the current box-drag rectangle normalized to positive
// size, or nil when no box gesture is active or the box is empty.
func (e *Editor) SelectionBox() *geometry.Rect {
	r := geometry.Rect{
		X:      e.boxStart.X,
		Y:      e.boxStart.Y,
		Width:  e.boxEnd.X - e.boxStart.X,
		Height: e.boxEnd.Y - e.boxStart.Y,
	}.Normalized()
	if r.Width < 1 || r.Height < 1 {
		return nil
	}
	return &r
}

// BoxDragActive reports whether a smart-box drag is in progress.
func (e *Editor) BoxDragActive() bool { return e.boxActive }

// Undo restores the previous snapshot. No-op with an empty undo stack.
func (e *Editor) Undo() bool {
	snap, ok := e.History.Undo(e.Polygon)
	if !ok {
		return false
	}
	e.Polygon = snap
	e.endDrags()
	return true
}

// Redo reapplies the most recently undone edit.
func (e *Editor) Redo() bool {
	snap, ok := e.History.Redo(e.Polygon)
	if !ok {
		return false
	}
	e.Polygon = snap
	e.endDrags()
	return true
}

// SetPolygon replaces the current polygon, recording the old state so the
// replacement is undoable. Used by the smart-select flow.
func (e *Editor) SetPolygon(p *Polygon) {
	e.History.Push(e.Polygon)
	e.Polygon = p
	e.endDrags()
}

// Reset discards the polygon, history, and any active gesture.
func (e *Editor) Reset() {
	e.Polygon = nil
	e.History.Clear()
	e.endDrags()
	e.boxActive = false
}

func (e *Editor) endDrags() {
	e.dragVertex = -1
	e.dragShape = false
}
