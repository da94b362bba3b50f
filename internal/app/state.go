// Package app holds the shared application state and the event bus the
// UI layers subscribe to.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"

	"cutout/internal/backend"
	"cutout/internal/extract"
	"cutout/internal/imageio"
	"cutout/internal/mask"
	"cutout/internal/selection"
	"cutout/internal/viewport"
	"cutout/pkg/geometry"
)

var (
	// ErrNoSelection is returned when an operation needs a closed polygon
	// and none exists.
	ErrNoSelection = errors.New("no closed selection")
	// ErrBusy is returned when a long-running request is already in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrEmptyPrompt is returned when generation is requested with a blank prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrNoImage is returned when an operation needs a working image.
	ErrNoImage = errors.New("no image loaded")
)

// SimplifyTolerance is the curve simplification tolerance, in image pixels,
// applied to traced smart-select outlines.
const SimplifyTolerance = 2.0

// State is the central application state. All mutation goes through its
// methods; UI components observe changes via On.
type State struct {
	mu sync.RWMutex

	editor *selection.Editor
	view   *viewport.Viewport

	img       *image.RGBA
	imgPNG    []byte // lazy cache of img encoded as PNG for collaborator calls
	extracted *image.RGBA

	backend   backend.Backend
	segmenter backend.Segmenter
	extractor *extract.Extractor

	segBusy bool
	genBusy bool

	// epoch invalidates in-flight async results after Reset or image swap.
	epoch uint64

	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventImageChanged EventType = iota
	EventPolygonChanged
	EventModeChanged
	EventViewChanged
	EventBusyChanged
	EventExtractionDone
	EventError
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state backed by the given collaborator
// set. Box segmentation uses b unless SetSegmenter overrides it.
func NewState(b backend.Backend) *State {
	return &State{
		editor:    selection.NewEditor(),
		view:      viewport.New(),
		backend:   b,
		segmenter: b,
		extractor: extract.New(b),
		listeners: make(map[EventType][]EventListener),
	}
}

// SetSegmenter replaces the segmenter used for smart box selection, e.g.
// with the local GrabCut implementation.
func (s *State) SetSegmenter(seg backend.Segmenter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segmenter = seg
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Image returns the current working image, or nil.
func (s *State) Image() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

// Extracted returns the most recent extraction result, or nil.
func (s *State) Extracted() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extracted
}

// SetImage replaces the working image. Any selection and pending async
// work against the previous image is discarded.
func (s *State) SetImage(img *image.RGBA) {
	s.mu.Lock()
	s.img = img
	s.imgPNG = nil
	s.extracted = nil
	s.epoch++
	s.editor.Reset()
	s.editor.SetBusy(false)
	s.segBusy = false
	s.mu.Unlock()

	s.Emit(EventImageChanged, img)
	s.Emit(EventPolygonChanged, nil)
}

// LoadImage loads an image file and makes it the working image.
func (s *State) LoadImage(path string) error {
	img, err := imageio.Load(path)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	s.SetImage(img)
	return nil
}

// Polygon returns a snapshot of the current selection polygon, or nil.
func (s *State) Polygon() *selection.Polygon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editor.Polygon.Clone()
}

// Mode returns the active editing mode.
func (s *State) Mode() selection.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editor.Mode()
}

// SetMode switches the editing mode. Switching to idle discards the
// selection and its history.
func (s *State) SetMode(m selection.Mode) {
	s.mu.Lock()
	if m == s.editor.Mode() {
		s.mu.Unlock()
		return
	}
	s.editor.SetMode(m)
	if m == selection.ModeIdle {
		s.epoch++
	}
	s.mu.Unlock()

	s.Emit(EventModeChanged, m)
	s.Emit(EventPolygonChanged, nil)
}

// View returns the viewport. The viewport is only mutated through State
// methods, so reads from the render path are safe without extra locking.
func (s *State) View() *viewport.Viewport {
	return s.view
}

// Zoom adjusts the zoom level around a screen-space anchor point.
func (s *State) Zoom(delta float64, anchor geometry.Point2D) {
	s.mu.Lock()
	s.view.Zoom(delta, anchor)
	s.editor.SetScale(s.view.Scale)
	s.mu.Unlock()
	s.Emit(EventViewChanged, nil)
}

// Pan shifts the viewport by a screen-space delta.
func (s *State) Pan(dx, dy float64) {
	s.mu.Lock()
	s.view.Pan(dx, dy)
	s.mu.Unlock()
	s.Emit(EventViewChanged, nil)
}

// FitToView frames the working image inside the given view size.
func (s *State) FitToView(viewSize geometry.Size) {
	s.mu.Lock()
	if s.img == nil {
		s.mu.Unlock()
		return
	}
	b := s.img.Bounds()
	imgSize := geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	s.view.FitToView(imgSize, viewSize, 10)
	s.editor.SetScale(s.view.Scale)
	s.mu.Unlock()
	s.Emit(EventViewChanged, nil)
}

// PointerDown forwards a press at screen coordinates to the editor.
func (s *State) PointerDown(screen geometry.Point2D) {
	s.mu.Lock()
	if s.img == nil {
		s.mu.Unlock()
		return
	}
	s.editor.SetScale(s.view.Scale)
	s.editor.PointerDown(s.view.ToImageSpace(screen))
	s.mu.Unlock()
	s.Emit(EventPolygonChanged, nil)
}

// PointerMove forwards a drag motion at screen coordinates to the editor.
func (s *State) PointerMove(screen geometry.Point2D) {
	s.mu.Lock()
	if s.img == nil {
		s.mu.Unlock()
		return
	}
	s.editor.PointerMove(s.view.ToImageSpace(screen))
	s.mu.Unlock()
	s.Emit(EventPolygonChanged, nil)
}

// PointerUp forwards a release at screen coordinates to the editor. A
// completed smart box kicks off segmentation.
func (s *State) PointerUp(screen geometry.Point2D) {
	s.mu.Lock()
	if s.img == nil {
		s.mu.Unlock()
		return
	}
	box := s.editor.PointerUp(s.view.ToImageSpace(screen))
	s.mu.Unlock()
	s.Emit(EventPolygonChanged, nil)

	if box != nil {
		s.smartSelect(*box)
	}
}

// SelectionBox returns the in-progress smart box in image coordinates, or
// nil when no box drag is active.
func (s *State) SelectionBox() *geometry.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.editor.BoxDragActive() {
		return nil
	}
	return s.editor.SelectionBox()
}

// Undo reverts the last selection change.
func (s *State) Undo() {
	s.mu.Lock()
	ok := s.editor.Undo()
	s.mu.Unlock()
	if ok {
		s.Emit(EventPolygonChanged, nil)
	}
}

// Redo reapplies the last undone selection change.
func (s *State) Redo() {
	s.mu.Lock()
	ok := s.editor.Redo()
	s.mu.Unlock()
	if ok {
		s.Emit(EventPolygonChanged, nil)
	}
}

// CanUndo reports whether an undo step is available.
func (s *State) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editor.History.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (s *State) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editor.History.CanRedo()
}

// Busy reports whether a long-running request is in flight.
func (s *State) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.segBusy || s.genBusy || s.extractor.Busy()
}

// Reset discards the selection, its history and any in-flight async work.
func (s *State) Reset() {
	s.mu.Lock()
	s.editor.Reset()
	s.editor.SetBusy(false)
	s.segBusy = false
	s.epoch++
	s.mu.Unlock()
	s.Emit(EventPolygonChanged, nil)
}

// Generate requests a new working image from the generation collaborator.
// The request runs asynchronously; completion is reported through
// EventImageChanged or EventError.
func (s *State) Generate(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	s.mu.Lock()
	if s.genBusy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.genBusy = true
	epoch := s.epoch
	gen := s.backend
	s.mu.Unlock()
	s.Emit(EventBusyChanged, true)

	go func() {
		data, err := gen.Generate(context.Background(), prompt)

		s.mu.Lock()
		s.genBusy = false
		stale := epoch != s.epoch
		s.mu.Unlock()
		s.Emit(EventBusyChanged, false)
		if stale {
			return
		}
		if err != nil {
			log.Printf("generate failed: %v", err)
			s.Emit(EventError, fmt.Errorf("generate: %w", err))
			return
		}

		img, err := imageio.Decode(data)
		if err != nil {
			log.Printf("generate returned undecodable image: %v", err)
			s.Emit(EventError, fmt.Errorf("generate: %w", err))
			return
		}
		s.SetImage(img)
	}()
	return nil
}

// Extract runs the extraction pipeline on the current selection. The
// result is reported through EventExtractionDone or EventError.
func (s *State) Extract(opts extract.Options) error {
	s.mu.RLock()
	img := s.img
	poly := s.editor.Polygon.Clone()
	epoch := s.epoch
	s.mu.RUnlock()

	if img == nil {
		return ErrNoImage
	}
	if poly == nil || !poly.Closed {
		return ErrNoSelection
	}

	go func() {
		s.Emit(EventBusyChanged, true)
		result, err := s.extractor.Extract(context.Background(), img, poly, opts)
		s.Emit(EventBusyChanged, false)
		if err != nil {
			if !errors.Is(err, extract.ErrBusy) {
				log.Printf("extract failed: %v", err)
			}
			s.Emit(EventError, fmt.Errorf("extract: %w", err))
			return
		}

		s.mu.Lock()
		stale := epoch != s.epoch
		if !stale {
			s.extracted = result
		}
		s.mu.Unlock()
		if !stale {
			s.Emit(EventExtractionDone, result)
		}
	}()
	return nil
}

// smartSelect segments the boxed region asynchronously and installs the
// resulting outline as the selection polygon. On any failure the box
// itself becomes the polygon.
func (s *State) smartSelect(box geometry.Rect) {
	s.mu.Lock()
	if s.segBusy {
		s.mu.Unlock()
		return
	}
	s.segBusy = true
	s.editor.SetBusy(true)
	epoch := s.epoch
	seg := s.segmenter
	s.mu.Unlock()
	s.Emit(EventBusyChanged, true)

	go func() {
		poly := selection.NewClosedPolygon(box.Corners())

		data, err := s.encodedImage()
		if err == nil {
			var res *backend.SegmentResult
			res, err = seg.Segment(context.Background(), data, backend.BoxFromRect(box))
			if err == nil {
				poly = BuildSelection(res, box, SimplifyTolerance)
			}
		}
		if err != nil {
			log.Printf("segmentation failed, falling back to box: %v", err)
		}

		s.mu.Lock()
		s.segBusy = false
		stale := epoch != s.epoch
		if !stale {
			s.editor.SetBusy(false)
			s.editor.SetPolygon(poly)
		}
		s.mu.Unlock()
		s.Emit(EventBusyChanged, false)
		if !stale {
			s.Emit(EventPolygonChanged, nil)
		}
	}()
}

// encodedImage returns the working image as PNG, caching the encoding.
func (s *State) encodedImage() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return nil, ErrNoImage
	}
	if s.imgPNG != nil {
		return s.imgPNG, nil
	}
	data, err := imageio.EncodePNG(s.img)
	if err != nil {
		return nil, err
	}
	s.imgPNG = data
	return data, nil
}

// BuildSelection turns a segmentation mask into a closed selection polygon
// positioned over the boxed image region. A mask that yields fewer than
// three outline points degrades to the box corners.
func BuildSelection(res *backend.SegmentResult, box geometry.Rect, tolerance float64) *selection.Polygon {
	fallback := selection.NewClosedPolygon(box.Corners())

	bm, err := mask.FromBytes(res.Mask, res.Width, res.Height)
	if err != nil {
		log.Printf("segmentation mask rejected: %v", err)
		return fallback
	}
	bm = mask.Clean(bm, 3)

	outline := mask.TraceBoundary(bm)
	if len(outline) < 3 {
		return fallback
	}

	// Map mask pixel coordinates onto the boxed image region. The corner
	// correspondence absorbs any anisotropy in the mask resolution.
	src := geometry.Rect{Width: float64(res.Width), Height: float64(res.Height)}.Corners()
	tr, err := geometry.EstimateAffine(src, box.Corners())
	if err != nil {
		return fallback
	}

	pts := geometry.Simplify(tr.ApplyAll(mask.ToPoints(outline)), tolerance)
	poly := selection.NewClosedPolygon(pts)
	if poly == nil {
		return fallback
	}
	return poly
}
