// Package palette provides the colours the arm viewer draws with. Palettes are
// generated in HSV space so the links, obstacles and markers stay distinct
// from one another.
package palette

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Role names what a colour is used for.
type Role int

const (
	Background Role = iota
	Workspace       // reachable annulus
	Link            // the driven arm
	Ghost           // the mirrored elbow branch
	Animation       // the animation arm
	Joint           // joint and base markers
	Obstacle
	Hit         // obstacle touched by the arm
	Destination // animation target marker

	numRoles
)

// Palette maps every role to an RGBA colour.
type Palette [numRoles]color.RGBA

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// hsb converts hue/saturation/brightness given in 0-100 ranges to RGBA.
func hsb(h, s, b float64, alpha uint8) color.RGBA {
	hue := clamp(h, 0, 100) * 3.6
	sat := clamp(s/100.0, 0, 1)
	bright := clamp(b/100.0, 0, 1)

	c := colorful.Hsv(hue, sat, bright)
	red, green, blue := c.RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: alpha}
}

// Default is the fixed palette used when no seed is given.
func Default() Palette {
	return Palette{
		Background:  {R: 255, G: 255, B: 255, A: 255},
		Workspace:   hsb(58, 12, 97, 255),
		Link:        hsb(60, 70, 45, 255),
		Ghost:       hsb(60, 25, 80, 255),
		Animation:   hsb(30, 65, 75, 255),
		Joint:       hsb(0, 0, 15, 255),
		Obstacle:    hsb(8, 15, 55, 255),
		Hit:         hsb(0, 85, 85, 255),
		Destination: hsb(92, 80, 70, 255),
	}
}

// Random returns a palette with a random link hue. The workspace and ghost
// share the link's hue at lower saturation so the three read as one arm.
func Random(r *rand.Rand) Palette {
	p := Default()
	hue := r.Float64() * 100
	p[Link] = hsb(hue, r.Float64()*30+55, r.Float64()*20+35, 255)
	p[Ghost] = hsb(hue, 25, 80, 255)
	p[Workspace] = hsb(hue, 10, 97, 255)
	p[Animation] = hsb(math.Mod(hue+50, 100), r.Float64()*30+50, r.Float64()*20+65, 255) // opposite hue
	p[Obstacle] = hsb(r.Float64()*100, r.Float64()*20+5, r.Float64()*30+40, 255)
	return p
}

// Highlighted returns c with boosted saturation and dimmed brightness, for
// obstacles the arm currently touches.
func Highlighted(c color.RGBA) color.RGBA {
	col := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, v := col.Hsv()
	out := colorful.Hsv(h, clamp(s+0.4, 0, 1), clamp(v*0.8, 0, 1))
	red, green, blue := out.RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: c.A}
}

// Floats returns c as normalised RGBA components.
func Floats(c color.RGBA) [4]float32 {
	return [4]float32{
		float32(c.R) / 255.0,
		float32(c.G) / 255.0,
		float32(c.B) / 255.0,
		float32(c.A) / 255.0,
	}
}
