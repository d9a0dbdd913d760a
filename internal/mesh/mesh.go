// Package mesh turns a snapshot of the arm and its obstacles into triangle
// vertex data ready for upload.
//
// Every shape is a polygon in workspace coordinates, triangulated with
// earcut. Vertices are laid out as [x, y, r, g, b, a] float32s, the format the
// renderer's shader consumes. Shapes are emitted back to front.
package mesh

import (
	"fmt"
	"image/color"
	"math"

	"github.com/irfansharif/armsim/internal/collision"
	"github.com/irfansharif/armsim/internal/geom"
	"github.com/irfansharif/armsim/internal/palette"
	"github.com/irfansharif/armsim/internal/robot"
)

// FloatsPerVertex is the stride of the generated vertex data.
const FloatsPerVertex = 6

const (
	circleSegments = 64   // segments for the workspace annulus
	markerSegments = 16   // segments for joint discs
	minHoleRadius  = 1e-6 // below this the annulus has no hole
)

// Style sizes the drawn shapes, in workspace units.
type Style struct {
	LinkWidth    float64
	JointRadius  float64
	MarkerRadius float64
}

// DefaultStyle suits a workspace of a few hundred units.
var DefaultStyle = Style{LinkWidth: 10, JointRadius: 8, MarkerRadius: 6}

// Frame is everything drawn in one frame.
type Frame struct {
	Pose      robot.Pose
	Obstacles []collision.Rect
	Hits      []int // indices into Obstacles touched by the arm
	Selected  []int // indices into Obstacles to outline
	Animating bool  // draw the animation arm
	Palette   palette.Palette
	Style     Style
}

// Build generates the vertex data for the frame.
func Build(f Frame) ([]float32, error) {
	b := builder{vertices: make([]float32, 0, 4096)}
	p := f.Pose

	if p.Ready() {
		if err := b.annulus(p.Zero, p.MinRange/2, p.MaxRange/2, f.Palette[palette.Workspace]); err != nil {
			return nil, fmt.Errorf("workspace: %w", err)
		}
	}

	hit, selected := indexSet(f.Hits), indexSet(f.Selected)
	for i, o := range f.Obstacles {
		c := f.Palette[palette.Obstacle]
		if hit[i] {
			c = palette.Highlighted(f.Palette[palette.Hit])
		}
		corners := o.Box.Corners()
		if err := b.polygon(corners[:], c); err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		if selected[i] {
			if err := b.outline(corners[:], f.Style.LinkWidth*0.3, palette.Highlighted(f.Palette[palette.Obstacle])); err != nil {
				return nil, fmt.Errorf("obstacle %d outline: %w", i, err)
			}
		}
	}

	w := f.Style.LinkWidth
	if p.Ready() {
		if err := b.arm(p.Zero, p.Third, p.Second, w*0.6, f.Palette[palette.Ghost]); err != nil {
			return nil, fmt.Errorf("ghost arm: %w", err)
		}
	}
	if f.Animating {
		if err := b.arm(p.Zero, p.AnimationFirst, p.AnimationSecond, w*0.8, f.Palette[palette.Animation]); err != nil {
			return nil, fmt.Errorf("animation arm: %w", err)
		}
	}
	if err := b.arm(p.Zero, p.First, p.Second, w, f.Palette[palette.Link]); err != nil {
		return nil, fmt.Errorf("arm: %w", err)
	}

	for _, j := range []geom.Point{p.Zero, p.First, p.Second} {
		if err := b.disc(j, f.Style.JointRadius, markerSegments, f.Palette[palette.Joint]); err != nil {
			return nil, fmt.Errorf("joint: %w", err)
		}
	}
	if err := b.diamond(p.Destination, f.Style.MarkerRadius, f.Palette[palette.Destination]); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	return b.vertices, nil
}

func indexSet(indices []int) map[int]bool {
	set := make(map[int]bool, len(indices))
	for _, i := range indices {
		set[i] = true
	}
	return set
}

type builder struct {
	vertices []float32
}

// polygon triangulates and appends a simple polygon.
func (b *builder) polygon(ring []geom.Point, c color.RGBA, holes ...[]geom.Point) error {
	triangles, err := triangulate(ring, holes...)
	if err != nil {
		return err
	}
	rgba := palette.Floats(c)
	for _, tri := range triangles {
		for _, v := range tri {
			b.vertices = append(b.vertices,
				float32(v.X), float32(v.Y), // position
				rgba[0], rgba[1], rgba[2], rgba[3], // color
			)
		}
	}
	return nil
}

// arm draws both links as thick segments.
func (b *builder) arm(base, joint, end geom.Point, width float64, c color.RGBA) error {
	if err := b.segment(base, joint, width, c); err != nil {
		return err
	}
	return b.segment(joint, end, width, c)
}

// outline strokes a closed ring.
func (b *builder) outline(ring []geom.Point, width float64, c color.RGBA) error {
	for i := range ring {
		if err := b.segment(ring[i], ring[(i+1)%len(ring)], width, c); err != nil {
			return err
		}
	}
	return nil
}

// segment draws p-q as a quad of the given width. Zero-length segments draw
// nothing.
func (b *builder) segment(p, q geom.Point, width float64, c color.RGBA) error {
	quad, ok := segmentQuad(p, q, width)
	if !ok {
		return nil
	}
	return b.polygon(quad[:], c)
}

func segmentQuad(p, q geom.Point, width float64) ([4]geom.Point, bool) {
	d := q.Sub(p)
	l := d.Len()
	if l == 0 || width <= 0 || math.IsNaN(l) {
		return [4]geom.Point{}, false
	}
	n := geom.MakePoint(-d.Y, d.X).Scale(width / (2 * l))
	return [4]geom.Point{p.Add(n), q.Add(n), q.Sub(n), p.Sub(n)}, true
}

// disc draws a filled circle.
func (b *builder) disc(center geom.Point, radius float64, segments int, c color.RGBA) error {
	if radius <= 0 {
		return nil
	}
	return b.polygon(circle(center, radius, segments), c)
}

// annulus draws the ring between the two radii, or a disc when the inner
// radius vanishes.
func (b *builder) annulus(center geom.Point, inner, outer float64, c color.RGBA) error {
	if outer <= 0 || math.IsNaN(outer) {
		return nil
	}
	if inner < minHoleRadius || math.IsNaN(inner) {
		return b.polygon(circle(center, outer, circleSegments), c)
	}
	return b.polygon(circle(center, outer, circleSegments), c, circle(center, inner, circleSegments))
}

func (b *builder) diamond(center geom.Point, radius float64, c color.RGBA) error {
	if radius <= 0 {
		return nil
	}
	return b.polygon([]geom.Point{
		center.Add(geom.MakePoint(0, -radius)),
		center.Add(geom.MakePoint(radius, 0)),
		center.Add(geom.MakePoint(0, radius)),
		center.Add(geom.MakePoint(-radius, 0)),
	}, c)
}

func circle(center geom.Point, radius float64, segments int) []geom.Point {
	ring := make([]geom.Point, segments)
	for i := range ring {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		ring[i] = center.Add(geom.Polar(radius, theta))
	}
	return ring
}
