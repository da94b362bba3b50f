package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Scaling returns a scaling transform.
func Scaling(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// ApplyAll applies the transform to every point in a slice.
func (t AffineTransform) ApplyAll(points []Point2D) []Point2D {
	out := make([]Point2D, len(points))
	for i, p := range points {
		out[i] = t.Apply(p)
	}
	return out
}

// Compose returns this transform composed with another (this * other).
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// Inverse returns the inverse transform, if it exists.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-10 {
		return AffineTransform{}, false
	}

	invDet := 1.0 / det
	return AffineTransform{
		A:  t.D * invDet,
		B:  -t.B * invDet,
		TX: (t.B*t.TY - t.D*t.TX) * invDet,
		C:  -t.C * invDet,
		D:  t.A * invDet,
		TY: (t.C*t.TX - t.A*t.TY) * invDet,
	}, true
}

// EstimateAffine computes the least-squares affine transform mapping
// srcPoints onto dstPoints. Requires at least 3 non-collinear correspondences.
func EstimateAffine(srcPoints, dstPoints []Point2D) (AffineTransform, error) {
	if len(srcPoints) != len(dstPoints) {
		return AffineTransform{}, fmt.Errorf("point count mismatch: %d vs %d", len(srcPoints), len(dstPoints))
	}
	if len(srcPoints) < 3 {
		return AffineTransform{}, fmt.Errorf("need at least 3 points, got %d", len(srcPoints))
	}

	n := len(srcPoints)
	a := mat.NewDense(2*n, 6, nil)
	b := mat.NewVecDense(2*n, nil)

	for i, s := range srcPoints {
		d := dstPoints[i]
		a.SetRow(2*i, []float64{s.X, s.Y, 1, 0, 0, 0})
		a.SetRow(2*i+1, []float64{0, 0, 0, s.X, s.Y, 1})
		b.SetVec(2*i, d.X)
		b.SetVec(2*i+1, d.Y)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return AffineTransform{}, fmt.Errorf("affine solve failed: %w", err)
	}

	return AffineTransform{
		A: x.AtVec(0), B: x.AtVec(1), TX: x.AtVec(2),
		C: x.AtVec(3), D: x.AtVec(4), TY: x.AtVec(5),
	}, nil
}
