// Package robot holds the state of a planar two-link arm and reconciles it
// after its endpoints are moved from outside.
//
// The arm is described by three driven points (base, joint, end effector) and
// the two link lengths derived from them. Lengths start out unset (NaN); the
// first recalculation establishes L1 from base and joint, the next one L2 from
// joint and end effector. From then on every recalculation also solves the
// mirrored elbow branch for the current end effector and stores its joint as
// ThirdPosition.
//
// A Robot is not safe for concurrent use. Exactly one driver is expected to
// move it, one interaction step at a time.
package robot

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/irfansharif/armsim/internal/collision"
	"github.com/irfansharif/armsim/internal/geom"
	"github.com/irfansharif/armsim/internal/kinematics"
)

// ErrInvalidLength is returned when a link length is set to a negative value
// or back to unset.
var ErrInvalidLength = errors.New("invalid link length")

// Robot is the arm's pose. The zero value is not usable; construct with New.
type Robot struct {
	workspace geom.Box

	zeroPosition            geom.Point // arm base
	firstPosition           geom.Point // joint, end of the first link
	secondPosition          geom.Point // end effector
	thirdPosition           geom.Point // joint of the mirrored elbow branch
	animationFirstPosition  geom.Point
	animationSecondPosition geom.Point
	destinationPosition     geom.Point

	l1, l2 float64 // NaN while unset

	notifier notifier
	logger   *zap.Logger
}

// Option configures a Robot.
type Option func(*Robot)

// WithLogger sets the logger recalculations report to.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Robot) { r.logger = logger }
}

// New creates a robot for a workspace of the given dimensions. Every position
// starts at the workspace center and both lengths are unset.
func New(width, height float64, opts ...Option) *Robot {
	r := &Robot{
		workspace: geom.MakeBox(0, 0, width, height),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.init()
	return r
}

func (r *Robot) init() {
	center := r.workspace.Center()
	r.zeroPosition = center
	r.firstPosition = center
	r.secondPosition = center
	r.thirdPosition = center
	r.animationFirstPosition = center
	r.animationSecondPosition = center
	r.destinationPosition = center
	r.l1, r.l2 = math.NaN(), math.NaN()
}

// Workspace returns the box the robot was created for.
func (r *Robot) Workspace() geom.Box { return r.workspace }

// Observe registers fn to be called with every field that changes. Calls
// happen synchronously, after the field is updated, in registration order.
// The returned function unregisters fn.
func (r *Robot) Observe(fn func(Field)) (cancel func()) {
	return r.notifier.add(fn)
}

func (r *Robot) ZeroPosition() geom.Point            { return r.zeroPosition }
func (r *Robot) FirstPosition() geom.Point           { return r.firstPosition }
func (r *Robot) SecondPosition() geom.Point          { return r.secondPosition }
func (r *Robot) ThirdPosition() geom.Point           { return r.thirdPosition }
func (r *Robot) AnimationFirstPosition() geom.Point  { return r.animationFirstPosition }
func (r *Robot) AnimationSecondPosition() geom.Point { return r.animationSecondPosition }
func (r *Robot) DestinationPosition() geom.Point     { return r.destinationPosition }

// SetZeroPosition moves the base of the arm.
func (r *Robot) SetZeroPosition(p geom.Point) { r.setPoint(&r.zeroPosition, p, FieldZeroPosition) }

// SetFirstPosition moves the joint between the two links.
func (r *Robot) SetFirstPosition(p geom.Point) { r.setPoint(&r.firstPosition, p, FieldFirstPosition) }

// SetSecondPosition moves the end effector.
func (r *Robot) SetSecondPosition(p geom.Point) {
	r.setPoint(&r.secondPosition, p, FieldSecondPosition)
}

func (r *Robot) SetThirdPosition(p geom.Point) { r.setPoint(&r.thirdPosition, p, FieldThirdPosition) }

func (r *Robot) SetAnimationFirstPosition(p geom.Point) {
	r.setPoint(&r.animationFirstPosition, p, FieldAnimationFirstPosition)
}

func (r *Robot) SetAnimationSecondPosition(p geom.Point) {
	r.setPoint(&r.animationSecondPosition, p, FieldAnimationSecondPosition)
}

func (r *Robot) SetDestinationPosition(p geom.Point) {
	r.setPoint(&r.destinationPosition, p, FieldDestinationPosition)
}

func (r *Robot) setPoint(dst *geom.Point, p geom.Point, f Field) {
	if *dst == p {
		return
	}
	*dst = p
	r.notifier.notify(f)
}

// L1 returns the length of the first link, NaN while unset.
func (r *Robot) L1() float64 { return r.l1 }

// L2 returns the length of the second link, NaN while unset.
func (r *Robot) L2() float64 { return r.l2 }

func (r *Robot) L1Set() bool { return !math.IsNaN(r.l1) }
func (r *Robot) L2Set() bool { return !math.IsNaN(r.l2) }

// SetL1 sets the length of the first link.
func (r *Robot) SetL1(v float64) error { return r.setLength(&r.l1, v, FieldL1) }

// SetL2 sets the length of the second link.
func (r *Robot) SetL2(v float64) error { return r.setLength(&r.l2, v, FieldL2) }

func (r *Robot) setLength(dst *float64, v float64, f Field) error {
	if math.IsNaN(v) {
		if math.IsNaN(*dst) {
			return nil // unset -> unset
		}
		return fmt.Errorf("%w: %s cannot revert to unset", ErrInvalidLength, f)
	}
	if v < 0 || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidLength, f, v)
	}
	r.storeLength(dst, v, f)
	return nil
}

// storeLength writes a length without validation and notifies the length and
// both derived ranges if it changed.
func (r *Robot) storeLength(dst *float64, v float64, f Field) {
	if *dst == v || (math.IsNaN(*dst) && math.IsNaN(v)) {
		return
	}
	*dst = v
	r.notifier.notify(f)
	r.notifier.notify(FieldMaxRange)
	r.notifier.notify(FieldMinRange)
}

// MaxRange is the diameter of the circle the end effector can reach at most,
// 2·(L1+L2). NaN while either length is unset.
func (r *Robot) MaxRange() float64 { return (r.l1 + r.l2) * 2 }

// MinRange is the diameter of the dead zone around the base, 2·|L2-L1|. NaN
// while either length is unset.
func (r *Robot) MinRange() float64 { return 2 * math.Abs(r.l2-r.l1) }

// RecalculateRobot derives the link lengths and the mirrored elbow from the
// current positions. Call it after every external write to the zero, first or
// second position.
//
// L2 is only derived once L1 exists, so a freshly constructed robot needs two
// calls before both lengths are known.
func (r *Robot) RecalculateRobot() {
	if r.L1Set() {
		r.storeLength(&r.l2, r.secondPosition.Sub(r.firstPosition).Len(), FieldL2)
	}
	r.storeLength(&r.l1, r.firstPosition.Sub(r.zeroPosition).Len(), FieldL1)

	if !r.L2Set() {
		return
	}
	delta := r.secondPosition.Sub(r.zeroPosition)
	angles, ok := kinematics.InverseBranchB(delta.X, delta.Y, r.l1, r.l2)
	if !ok {
		r.logger.Debug("no inverse kinematics solution for end effector",
			zap.Stringer("end", r.secondPosition),
			zap.Float64("l1", r.l1),
			zap.Float64("l2", r.l2),
		)
		return
	}
	r.SetThirdPosition(kinematics.ForwardLink1(r.zeroPosition, r.l1, angles.Alpha))
}

// Reset returns the robot to its freshly constructed state, notifying every
// field that changes. It is the only way lengths go back to unset.
func (r *Robot) Reset() {
	center := r.workspace.Center()
	r.SetZeroPosition(center)
	r.SetFirstPosition(center)
	r.SetSecondPosition(center)
	r.SetThirdPosition(center)
	r.SetAnimationFirstPosition(center)
	r.SetAnimationSecondPosition(center)
	r.SetDestinationPosition(r.zeroPosition)
	r.storeLength(&r.l1, math.NaN(), FieldL1)
	r.storeLength(&r.l2, math.NaN(), FieldL2)
	r.logger.Debug("robot reset", zap.Stringer("center", center))
}

// CalculateFirstPosition returns the joint position for first-link angle
// alpha.
func (r *Robot) CalculateFirstPosition(alpha float64) geom.Point {
	return kinematics.ForwardLink1(r.zeroPosition, r.l1, alpha)
}

// CalculateSecondPosition returns the end effector position for the given
// joint and angles.
func (r *Robot) CalculateSecondPosition(first geom.Point, alpha, beta float64) geom.Point {
	return kinematics.ForwardLink2(first, r.l2, alpha, beta)
}

// ReverseKinematicsFirst solves elbow branch A for the offset (x, y) from the
// base using the robot's link lengths.
func (r *Robot) ReverseKinematicsFirst(x, y float64) (kinematics.Angles, bool) {
	return kinematics.InverseBranchA(x, y, r.l1, r.l2)
}

// ReverseKinematicsSecond solves elbow branch B, the one ThirdPosition shows.
func (r *Robot) ReverseKinematicsSecond(x, y float64) (kinematics.Angles, bool) {
	return kinematics.InverseBranchB(x, y, r.l1, r.l2)
}

// Links returns the arm's two links, base to joint and joint to end effector.
func (r *Robot) Links() [2]collision.Segment {
	return [2]collision.Segment{
		{P: r.zeroPosition, Q: r.firstPosition},
		{P: r.firstPosition, Q: r.secondPosition},
	}
}

// Pose is a copy of the robot's state, taken with Snapshot.
type Pose struct {
	Zero, First, Second, Third geom.Point
	AnimationFirst             geom.Point
	AnimationSecond            geom.Point
	Destination                geom.Point
	L1, L2                     float64
	MaxRange, MinRange         float64
}

// Snapshot copies the current state.
func (r *Robot) Snapshot() Pose {
	return Pose{
		Zero:            r.zeroPosition,
		First:           r.firstPosition,
		Second:          r.secondPosition,
		Third:           r.thirdPosition,
		AnimationFirst:  r.animationFirstPosition,
		AnimationSecond: r.animationSecondPosition,
		Destination:     r.destinationPosition,
		L1:              r.l1,
		L2:              r.l2,
		MaxRange:        r.MaxRange(),
		MinRange:        r.MinRange(),
	}
}

// Ready reports whether both lengths are established.
func (p Pose) Ready() bool { return !math.IsNaN(p.L1) && !math.IsNaN(p.L2) }
