// Package selection holds the polygon selection model, its edit history,
// and the pointer-driven edit engine.
package selection

import (
	"cutout/pkg/geometry"
)

// Polygon is an ordered vertex sequence in image coordinates. Bounds is the
// exact min/max box of the points and is recomputed on every mutation.
// A closed polygon always has at least 3 vertices.
type Polygon struct {
	Points []geometry.Point2D `json:"points"`
	Closed bool               `json:"closed"`
	Bounds geometry.Rect      `json:"bounds"`
}

// NewPolygon creates an open polygon from the given points.
func NewPolygon(points ...geometry.Point2D) *Polygon {
	p := &Polygon{Points: points}
	p.recomputeBounds()
	return p
}

// NewClosedPolygon creates a closed polygon. Returns nil for fewer than 3 points.
func NewClosedPolygon(points []geometry.Point2D) *Polygon {
	if len(points) < 3 {
		return nil
	}
	p := &Polygon{Points: points, Closed: true}
	p.recomputeBounds()
	return p
}

// Clone returns a deep copy.
func (p *Polygon) Clone() *Polygon {
	if p == nil {
		return nil
	}
	pts := make([]geometry.Point2D, len(p.Points))
	copy(pts, p.Points)
	return &Polygon{Points: pts, Closed: p.Closed, Bounds: p.Bounds}
}

// Append adds a vertex to an open polygon.
func (p *Polygon) Append(pt geometry.Point2D) {
	p.Points = append(p.Points, pt)
	p.recomputeBounds()
}

// MoveVertex replaces the vertex at index with pt.
func (p *Polygon) MoveVertex(index int, pt geometry.Point2D) {
	if index < 0 || index >= len(p.Points) {
		return
	}
	p.Points[index] = pt
	p.recomputeBounds()
}

// Translate shifts every vertex by delta.
func (p *Polygon) Translate(delta geometry.Point2D) {
	p.Points = geometry.TranslatePoints(p.Points, delta)
	p.recomputeBounds()
}

// Close marks the polygon closed. It is a no-op below 3 vertices.
func (p *Polygon) Close() {
	if len(p.Points) < 3 {
		return
	}
	p.Closed = true
	p.recomputeBounds()
}

// Contains reports whether an image-space point lies inside a closed polygon.
func (p *Polygon) Contains(pt geometry.Point2D) bool {
	if p == nil || !p.Closed {
		return false
	}
	return geometry.PointInPolygon(pt, p.Points)
}

// Equal reports whether two polygons have identical vertices and closed state.
func (p *Polygon) Equal(other *Polygon) bool {
	if p == nil || other == nil {
		return p == nil && other == nil
	}
	if p.Closed != other.Closed || len(p.Points) != len(other.Points) {
		return false
	}
	for i := range p.Points {
		if p.Points[i] != other.Points[i] {
			return false
		}
	}
	return true
}

func (p *Polygon) recomputeBounds() {
	p.Bounds = geometry.BoundingBox(p.Points)
}
