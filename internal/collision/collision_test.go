package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/irfansharif/armsim/internal/geom"
)

func pt(x, y float64) geom.Point { return geom.MakePoint(x, y) }

func TestSegmentsIntersect(t *testing.T) {
	cases := []struct {
		name           string
		p1, p2, q1, q2 geom.Point
		want           bool
	}{
		{"crossing diagonals", pt(0, 0), pt(2, 2), pt(0, 2), pt(2, 0), true},
		{"parallel", pt(0, 0), pt(1, 0), pt(0, 1), pt(1, 1), false},
		{"collinear overlap", pt(0, 0), pt(2, 0), pt(1, 0), pt(3, 0), false},
		{"touching at endpoint", pt(0, 0), pt(1, 1), pt(1, 1), pt(2, 0), true},
		{"t-junction", pt(0, 0), pt(2, 0), pt(1, 0), pt(1, 5), true},
		{"lines cross beyond segments", pt(0, 0), pt(1, 1), pt(3, 0), pt(2, 1), false},
		{"short of the other", pt(0, 0), pt(0.9, 0), pt(1, -1), pt(1, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SegmentsIntersect(tc.p1, tc.p2, tc.q1, tc.q2))
			// Argument order does not matter.
			assert.Equal(t, tc.want, SegmentsIntersect(tc.q1, tc.q2, tc.p1, tc.p2))
			assert.Equal(t, tc.want, SegmentsIntersect(tc.p2, tc.p1, tc.q2, tc.q1))
		})
	}
}

func TestSegmentIntersectsRectangle(t *testing.T) {
	r := MakeRect(0, 0, 10, 10)

	cases := []struct {
		name   string
		p1, p2 geom.Point
		want   bool
	}{
		{"degenerate segment inside", pt(5, 5), pt(5, 5), true},
		{"wholly inside", pt(2, 2), pt(8, 3), true},
		{"one endpoint inside", pt(5, 5), pt(20, 5), true},
		{"passes through", pt(-5, 5), pt(15, 5), true},
		{"crosses a corner", pt(-1, 1), pt(1, -1), true},
		{"misses", pt(11, 0), pt(11, 10), false},
		{"diagonal miss", pt(-5, 4), pt(4, -5), false},
		{"degenerate outside", pt(20, 20), pt(20, 20), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SegmentIntersectsRectangle(tc.p1, tc.p2, r))
		})
	}
}

func TestRectObstacle(t *testing.T) {
	r := MakeRect(1, 2, 3, 4)
	assert.Equal(t, pt(1, 2), r.Position())
	assert.Equal(t, pt(3, 4), r.Size())
	assert.True(t, r.Contains(pt(4, 6)))
	assert.False(t, r.Contains(pt(4.1, 6)))

	edges := Edges(r)
	assert.Equal(t, Segment{pt(1, 2), pt(4, 2)}, edges[0])
	assert.Equal(t, Segment{pt(4, 2), pt(4, 6)}, edges[1])
	assert.Equal(t, Segment{pt(1, 6), pt(4, 6)}, edges[2])
	assert.Equal(t, Segment{pt(1, 2), pt(1, 6)}, edges[3])
}

func TestArmHits(t *testing.T) {
	obstacles := []Rect{
		MakeRect(4, -1, 1, 2),    // across the first link
		MakeRect(9, 4, 2, 2),     // around the end effector
		MakeRect(-10, -10, 1, 1), // nowhere near
	}
	hits := ArmHits(pt(0, 0), pt(8, 0), pt(10, 5), obstacles)
	assert.Equal(t, []int{0, 1}, hits)

	assert.Empty(t, ArmHits(pt(0, 0), pt(8, 0), pt(10, 5), obstacles[2:]))
}
