package app

import (
	"math"

	"go.uber.org/zap"

	"github.com/irfansharif/armsim/internal/collision"
	"github.com/irfansharif/armsim/internal/geom"
	"github.com/irfansharif/armsim/internal/robot"
)

// reachTolerance is how far, relative to the arm's full reach, a solved end
// effector may sit from its waypoint.
const reachTolerance = 1e-6

// AnimationState is where the animator is in moving the animation arm to the
// destination.
type AnimationState int

const (
	Idle        AnimationState = iota // never started, or stopped
	Running                           // moving towards the destination
	Arrived                           // reached the destination
	Unreachable                       // a waypoint was outside the workspace
	Blocked                           // a waypoint would hit an obstacle
)

func (s AnimationState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Arrived:
		return "arrived"
	case Unreachable:
		return "unreachable"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Animator moves the animation arm's end effector along the straight line
// from the end effector to the destination, a fixed distance per step. Each
// waypoint is solved with the elbow branch the arm started on. The animation
// stops at the first waypoint that cannot be reached or that would make
// either link touch an obstacle; it does not search for a way around.
//
// A waypoint counts as reached only if the solved pose puts the end effector
// on it. The closed-form solution misses targets where the base angle
// opposite the second link is obtuse (possible when L2 > L1), so those stop
// the animation as unreachable.
type Animator struct {
	robot     *robot.Robot
	obstacles *ObstacleManager
	stepSize  float64
	logger    *zap.Logger

	state     AnimationState
	from, to  geom.Point
	travelled float64
	branchA   bool
	blockedBy ObstacleID
}

// NewAnimator creates an animator advancing stepSize workspace units per
// step.
func NewAnimator(r *robot.Robot, obstacles *ObstacleManager, stepSize float64, logger *zap.Logger) *Animator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Animator{
		robot:     r,
		obstacles: obstacles,
		stepSize:  stepSize,
		logger:    logger,
		blockedBy: -1,
	}
}

// State returns the animator's state.
func (a *Animator) State() AnimationState { return a.state }

// Running reports whether the animation is in progress.
func (a *Animator) Running() bool { return a.state == Running }

// BlockedBy returns the obstacle that stopped the animation, if it was
// blocked.
func (a *Animator) BlockedBy() (ObstacleID, bool) {
	return a.blockedBy, a.state == Blocked
}

// CanStart reports whether an animation can begin: both link lengths must be
// known and the stepping distance positive.
func (a *Animator) CanStart() bool {
	return a.robot.L1Set() && a.robot.L2Set() && a.stepSize > 0
}

// Start begins animating from the current end effector to the destination.
// The animation arm is first snapped onto the driven arm.
func (a *Animator) Start() bool {
	if !a.CanStart() {
		return false
	}
	r := a.robot
	a.from, a.to = r.SecondPosition(), r.DestinationPosition()
	a.travelled = 0
	a.blockedBy = -1
	a.branchA = a.pickBranch()
	r.SetAnimationFirstPosition(r.FirstPosition())
	r.SetAnimationSecondPosition(r.SecondPosition())
	a.state = Running

	a.logger.Debug("animation started",
		zap.Stringer("from", a.from),
		zap.Stringer("to", a.to),
		zap.Bool("branch-a", a.branchA),
	)
	return true
}

// Stop abandons any animation and returns to idle.
func (a *Animator) Stop() {
	a.state = Idle
	a.blockedBy = -1
}

// pickBranch chooses the elbow branch whose joint is closest to the driven
// arm's joint, so the animation starts without a jump.
func (a *Animator) pickBranch() bool {
	r := a.robot
	jointA, _, okA := a.reach(true, a.from)
	jointB, _, okB := a.reach(false, a.from)
	switch {
	case okA && okB:
		return geom.Dist(jointA, r.FirstPosition()) <= geom.Dist(jointB, r.FirstPosition())
	default:
		return !okB
	}
}

// reach solves the given elbow branch for target and returns the resulting
// joint and end effector. ok is false when there is no solution or the
// solution leaves the end effector off the target.
func (a *Animator) reach(branchA bool, target geom.Point) (joint, end geom.Point, ok bool) {
	r := a.robot
	delta := target.Sub(r.ZeroPosition())
	solve := r.ReverseKinematicsSecond
	if branchA {
		solve = r.ReverseKinematicsFirst
	}
	angles, ok := solve(delta.X, delta.Y)
	if !ok {
		return geom.Point{}, geom.Point{}, false
	}
	joint = r.CalculateFirstPosition(angles.Alpha)
	end = r.CalculateSecondPosition(joint, angles.Alpha, angles.Beta)
	tolerance := reachTolerance * math.Max(1, r.L1()+r.L2())
	if geom.Dist(end, target) > tolerance {
		return geom.Point{}, geom.Point{}, false
	}
	return joint, end, true
}

// Step advances the animation by one step and returns the resulting state.
// Steps outside a running animation do nothing.
func (a *Animator) Step() AnimationState {
	if a.state != Running {
		return a.state
	}
	r := a.robot

	distance := geom.Dist(a.from, a.to)
	a.travelled = math.Min(a.travelled+a.stepSize, distance)
	target := a.to
	if distance > 0 {
		target = a.from.Add(a.to.Sub(a.from).Scale(a.travelled / distance))
	}

	joint, end, ok := a.reach(a.branchA, target)
	if !ok {
		a.state = Unreachable
		a.logger.Debug("animation stopped: waypoint out of reach", zap.Stringer("waypoint", target))
		return a.state
	}

	ids, rects := a.obstacles.Rects()
	if hits := collision.ArmHits(r.ZeroPosition(), joint, end, rects); len(hits) > 0 {
		a.state = Blocked
		a.blockedBy = ids[hits[0]]
		a.logger.Debug("animation stopped: obstacle in the way",
			zap.Stringer("waypoint", target),
			zap.Int("obstacle", int(a.blockedBy)),
		)
		return a.state
	}

	r.SetAnimationFirstPosition(joint)
	r.SetAnimationSecondPosition(end)
	if a.travelled >= distance {
		a.state = Arrived
		a.logger.Debug("animation arrived", zap.Stringer("at", end))
	}
	return a.state
}

// Commit moves the driven arm onto the animation arm and recalculates.
func (a *Animator) Commit() {
	r := a.robot
	r.SetFirstPosition(r.AnimationFirstPosition())
	r.SetSecondPosition(r.AnimationSecondPosition())
	r.RecalculateRobot()
}
