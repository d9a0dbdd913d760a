// Package kinematics implements forward and inverse kinematics for a planar
// two-link arm.
//
// Angles are in radians. alpha is the absolute angle of the first link; beta
// is the bend of the second link relative to the first, measured so that the
// second link points along alpha-beta (see ForwardLink2). For a reachable
// target there are two elbow branches, mirror images of each other about the
// base-to-target line.
package kinematics

import (
	"math"

	"github.com/irfansharif/armsim/internal/geom"
)

// Angles holds a joint-space configuration.
type Angles struct {
	Alpha float64 // first link, absolute
	Beta  float64 // second link, relative to the first
}

// ForwardLink1 returns the endpoint of the first link.
func ForwardLink1(base geom.Point, l1, alpha float64) geom.Point {
	return base.Add(geom.Polar(l1, alpha))
}

// ForwardLink2 returns the endpoint of the second link given the joint it
// hangs off.
func ForwardLink2(joint geom.Point, l2, alpha, beta float64) geom.Point {
	return geom.Point{
		X: joint.X + l2*(math.Cos(beta)*math.Cos(alpha)+math.Sin(beta)*math.Sin(alpha)),
		Y: joint.Y + l2*(-math.Sin(beta)*math.Cos(alpha)+math.Cos(beta)*math.Sin(alpha)),
	}
}

// Forward composes both links from the base.
func Forward(base geom.Point, l1, l2 float64, a Angles) (joint, end geom.Point) {
	joint = ForwardLink1(base, l1, a.Alpha)
	return joint, ForwardLink2(joint, l2, a.Alpha, a.Beta)
}

// Reachable reports whether the offset (x, y) from the base lies in the
// annulus |l1-l2| <= r <= l1+l2.
func Reachable(x, y, l1, l2 float64) bool {
	r := math.Hypot(x, y)
	return r >= math.Abs(l1-l2) && r <= l1+l2
}

// InverseBranchA solves for the elbow branch with beta <= 0. ok is false when
// the target is out of reach or the geometry is degenerate; the returned
// angles must not be used in that case.
func InverseBranchA(x, y, l1, l2 float64) (Angles, bool) {
	cosBeta, r, ok := solve(x, y, l1, l2)
	if !ok {
		return Angles{}, false
	}
	beta := -math.Acos(cosBeta)
	alpha := math.Asin(clamp(l2*math.Sin(beta)/r)) + math.Atan2(y, x)
	return Angles{Alpha: alpha, Beta: beta}, true
}

// InverseBranchB solves for the mirrored elbow branch, beta >= 0.
func InverseBranchB(x, y, l1, l2 float64) (Angles, bool) {
	cosBeta, r, ok := solve(x, y, l1, l2)
	if !ok {
		return Angles{}, false
	}
	beta := math.Acos(cosBeta)
	alpha := -math.Asin(clamp(l2*math.Sin(-beta)/r)) + math.Atan2(y, x)
	return Angles{Alpha: alpha, Beta: beta}, true
}

// solve validates the target and returns cos(beta) and the target distance.
//
// The target at the base and zero-length links leave the base angle
// undefined, so they are reported as unsolvable alongside out-of-reach
// targets.
func solve(x, y, l1, l2 float64) (cosBeta, r float64, ok bool) {
	if math.IsNaN(l1) || math.IsNaN(l2) || l1 <= 0 || l2 <= 0 {
		return 0, 0, false
	}
	r = math.Hypot(x, y)
	if r == 0 || math.IsNaN(r) || !Reachable(x, y, l1, l2) {
		return 0, 0, false
	}
	return clamp((x*x + y*y - l1*l1 - l2*l2) / (2 * l1 * l2)), r, true
}

// clamp pins acos/asin arguments to [-1, 1]; on the annulus boundary rounding
// can push them just outside.
func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
