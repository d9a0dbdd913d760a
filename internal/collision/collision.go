// Package collision tests arm segments against axis-aligned rectangular
// obstacles.
package collision

import (
	"github.com/irfansharif/armsim/internal/geom"
)

// Obstacle is an axis-aligned rectangle. Position is its top-left corner and
// Size its (width, height).
type Obstacle interface {
	Position() geom.Point
	Size() geom.Point
	Contains(p geom.Point) bool
}

// Rect is the concrete obstacle used throughout the repo.
type Rect struct {
	Box geom.Box
}

var _ Obstacle = Rect{}

func MakeRect(x, y, w, h float64) Rect { return Rect{Box: geom.MakeBox(x, y, w, h)} }

func (r Rect) Position() geom.Point { return r.Box.Min() }
func (r Rect) Size() geom.Point     { return geom.MakePoint(r.Box.W, r.Box.H) }

// Contains reports whether p is inside the rectangle, edges included.
func (r Rect) Contains(p geom.Point) bool { return r.Box.Contains(p) }

// Segment is a line segment between two points.
type Segment struct {
	P, Q geom.Point
}

// SegmentsIntersect reports whether segment p1-p2 crosses segment q1-q2.
//
// Parallel and collinear segments never intersect, even when they overlap.
func SegmentsIntersect(p1, p2, q1, q2 geom.Point) bool {
	d := (p2.X-p1.X)*(q2.Y-q1.Y) - (p2.Y-p1.Y)*(q2.X-q1.X)
	if d == 0 {
		return false
	}

	r := ((p1.Y-q1.Y)*(q2.X-q1.X) - (p1.X-q1.X)*(q2.Y-q1.Y)) / d
	s := ((p1.Y-q1.Y)*(p2.X-p1.X) - (p1.X-q1.X)*(p2.Y-p1.Y)) / d
	return r >= 0 && r <= 1 && s >= 0 && s <= 1
}

// Edges returns the obstacle's four edges: top, right, bottom, left.
func Edges(o Obstacle) [4]Segment {
	pos, size := o.Position(), o.Size()
	tl := pos
	tr := geom.MakePoint(pos.X+size.X, pos.Y)
	br := geom.MakePoint(pos.X+size.X, pos.Y+size.Y)
	bl := geom.MakePoint(pos.X, pos.Y+size.Y)
	return [4]Segment{
		{tl, tr},
		{tr, br},
		{bl, br},
		{tl, bl},
	}
}

// SegmentIntersectsRectangle reports whether segment p1-p2 touches the
// obstacle: it crosses one of the edges, or one of its endpoints lies inside.
// The containment clause catches segments wholly inside the rectangle.
func SegmentIntersectsRectangle(p1, p2 geom.Point, o Obstacle) bool {
	for _, e := range Edges(o) {
		if SegmentsIntersect(p1, p2, e.P, e.Q) {
			return true
		}
	}
	return o.Contains(p1) || o.Contains(p2)
}

// ArmHits returns the indices (ascending) of the obstacles touched by either
// link of the arm base-joint-end.
func ArmHits[O Obstacle](base, joint, end geom.Point, obstacles []O) []int {
	var hits []int
	for i, o := range obstacles {
		if SegmentIntersectsRectangle(base, joint, o) || SegmentIntersectsRectangle(joint, end, o) {
			hits = append(hits, i)
		}
	}
	return hits
}
