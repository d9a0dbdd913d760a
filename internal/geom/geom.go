// Package geom provides the 2D primitives the arm model is written in:
// - Point arithmetic and vector operations
// - Axis-aligned boxes (workspace, viewport, obstacle bounds)
// - 2D affine transformations for mapping the workspace onto the screen
package geom

import (
	"fmt"
	"math"
)

// Point represents a 2D point or vector in Cartesian coordinates. Points are
// values; equality is exact.
type Point struct {
	X float64
	Y float64
}

// Box represents an axis-aligned rectangle with its top-left corner at (X, Y).
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Affine represents a 2D affine transform in row-major form:
// [ a b c ]
// [ d e f ]
// where (x', y') = (a*x + b*y + c, d*x + e*y + f)
type Affine struct {
	A float64
	B float64
	C float64
	D float64
	E float64
	F float64
}

func MakePoint(x, y float64) Point               { return Point{X: x, Y: y} }
func MakeBox(x, y, w, h float64) Box             { return Box{X: x, Y: y, W: w, H: h} }
func MakeAffine(a, b, c, d, e, f float64) Affine { return Affine{A: a, B: b, C: c, D: d, E: e, F: f} }

// Identity is the identity transform.
var Identity = MakeAffine(1, 0, 0, 0, 1, 0)

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Len returns the Euclidean length of p taken as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// IsNaN reports whether either coordinate is NaN.
func (p Point) IsNaN() bool { return math.IsNaN(p.X) || math.IsNaN(p.Y) }

func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

func Dot(p, q Point) float64 { return p.X*q.X + p.Y*q.Y }

func Dist(p, q Point) float64 { return p.Sub(q).Len() }

// Polar returns the vector of length r at angle theta (radians).
func Polar(r, theta float64) Point {
	return Point{r * math.Cos(theta), r * math.Sin(theta)}
}

// Center returns the midpoint of the box.
func (b Box) Center() Point { return Point{b.X + 0.5*b.W, b.Y + 0.5*b.H} }

// Min returns the top-left corner, Max the bottom-right one.
func (b Box) Min() Point { return Point{b.X, b.Y} }
func (b Box) Max() Point { return Point{b.X + b.W, b.Y + b.H} }

// Contains reports whether p lies inside the box or on its boundary. Boxes
// with negative extents contain nothing.
func (b Box) Contains(p Point) bool {
	if b.W < 0 || b.H < 0 {
		return false
	}
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Corners returns the corners in clockwise order (screen coordinates, y down)
// starting at the top-left.
func (b Box) Corners() [4]Point {
	return [4]Point{
		{b.X, b.Y},
		{b.X + b.W, b.Y},
		{b.X + b.W, b.Y + b.H},
		{b.X, b.Y + b.H},
	}
}

// MulPoint applies the affine transform to a point.
func (t Affine) MulPoint(p Point) Point {
	return Point{
		X: t.A*p.X + t.B*p.Y + t.C,
		Y: t.D*p.X + t.E*p.Y + t.F,
	}
}

// Mul composes two affine transforms (applies u then t).
func (t Affine) Mul(u Affine) Affine {
	return MakeAffine(
		t.A*u.A+t.B*u.D,
		t.A*u.B+t.B*u.E,
		t.A*u.C+t.B*u.F+t.C,
		t.D*u.A+t.E*u.D,
		t.D*u.B+t.E*u.E,
		t.D*u.C+t.E*u.F+t.F,
	)
}

// Inv returns the inverse of the affine transform.
// Returns an error if the transform is not invertible (determinant is zero).
func (t Affine) Inv() (Affine, error) {
	det := t.A*t.E - t.B*t.D
	if math.Abs(det) < 1e-10 {
		return Affine{}, fmt.Errorf("affine transform is not invertible (determinant ≈ 0)")
	}
	return MakeAffine(
		t.E/det, -t.B/det, (t.B*t.F-t.C*t.E)/det,
		-t.D/det, t.A/det, (t.C*t.D-t.A*t.F)/det,
	), nil
}

// Translate returns a pure translation by (dx, dy).
func Translate(dx, dy float64) Affine { return MakeAffine(1, 0, dx, 0, 1, dy) }

// ScaleAbout returns a uniform scale by s around the point c.
func ScaleAbout(s float64, c Point) Affine {
	return Translate(c.X, c.Y).Mul(MakeAffine(s, 0, 0, 0, s, 0)).Mul(Translate(-c.X, -c.Y))
}

// FillBox returns a transform that maps box b1 centered into b2, scaled
// uniformly so that b1 fits entirely. Degenerate boxes yield an error.
func FillBox(b1, b2 Box) (Affine, error) {
	if b1.W <= 0 || b1.H <= 0 {
		return Affine{}, fmt.Errorf("source box must have positive width and height, got W=%v H=%v", b1.W, b1.H)
	}
	if b2.W <= 0 || b2.H <= 0 {
		return Affine{}, fmt.Errorf("destination box must have positive width and height, got W=%v H=%v", b2.W, b2.H)
	}

	sc := math.Min(b2.W/b1.W, b2.H/b1.H)
	c1, c2 := b1.Center(), b2.Center()
	centerDst := Translate(c2.X, c2.Y)
	centerSrc := Translate(-c1.X, -c1.Y)
	return centerDst.Mul(MakeAffine(sc, 0, 0, 0, sc, 0)).Mul(centerSrc), nil
}
