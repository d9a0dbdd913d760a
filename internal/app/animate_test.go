package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/irfansharif/armsim/internal/collision"
	"github.com/irfansharif/armsim/internal/geom"
	"github.com/irfansharif/armsim/internal/robot"
)

// posedRobot returns an arm based at (100, 100) with L1 = 60 along +x and
// L2 = 40 along +y.
func posedRobot(t *testing.T) *robot.Robot {
	t.Helper()
	r := robot.New(200, 200, robot.WithLogger(zaptest.NewLogger(t)))
	r.SetFirstPosition(geom.MakePoint(160, 100))
	r.RecalculateRobot()
	r.SetSecondPosition(geom.MakePoint(160, 140))
	r.RecalculateRobot()
	require.InDelta(t, 60, r.L1(), 1e-9)
	require.InDelta(t, 40, r.L2(), 1e-9)
	return r
}

func runAnimation(t *testing.T, a *Animator) AnimationState {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if s := a.Step(); s != Running {
			return s
		}
	}
	t.Fatal("animation did not finish")
	return Running
}

func TestAnimatorArrives(t *testing.T) {
	r := posedRobot(t)
	dest := geom.MakePoint(100, 180)
	r.SetDestinationPosition(dest)

	a := NewAnimator(r, NewObstacleManager(), 4, zaptest.NewLogger(t))
	assert.Equal(t, Idle, a.State())
	require.True(t, a.Start())
	assert.True(t, a.Running())

	// The first step keeps the elbow on the side it started on.
	require.Equal(t, Running, a.Step())
	assert.Less(t, geom.Dist(r.AnimationFirstPosition(), r.FirstPosition()), 10.0)

	assert.Equal(t, Arrived, runAnimation(t, a))
	assertPoint(t, dest, r.AnimationSecondPosition())
	assert.InDelta(t, 60, geom.Dist(r.ZeroPosition(), r.AnimationFirstPosition()), 1e-9)
	assert.InDelta(t, 40, geom.Dist(r.AnimationFirstPosition(), r.AnimationSecondPosition()), 1e-9)

	// The driven arm is untouched until committed.
	assertPoint(t, geom.MakePoint(160, 140), r.SecondPosition())
	a.Commit()
	assertPoint(t, dest, r.SecondPosition())
	assert.InDelta(t, 60, r.L1(), 1e-9)
	assert.InDelta(t, 40, r.L2(), 1e-9)
}

func TestAnimatorAtDestination(t *testing.T) {
	r := posedRobot(t)
	r.SetDestinationPosition(r.SecondPosition())

	a := NewAnimator(r, NewObstacleManager(), 4, nil)
	require.True(t, a.Start())
	assert.Equal(t, Arrived, a.Step())
	assertPoint(t, r.SecondPosition(), r.AnimationSecondPosition())
}

func TestAnimatorUnreachable(t *testing.T) {
	r := posedRobot(t)
	// Inside the inner radius of 20 around the base.
	r.SetDestinationPosition(geom.MakePoint(105, 100))

	a := NewAnimator(r, NewObstacleManager(), 4, zaptest.NewLogger(t))
	require.True(t, a.Start())
	assert.Equal(t, Unreachable, runAnimation(t, a))
	assert.False(t, a.Running())

	// The animation arm rests at the last reachable waypoint.
	assert.GreaterOrEqual(t, geom.Dist(r.ZeroPosition(), r.AnimationSecondPosition()), 20-1e-9)

	// Further steps do nothing.
	before := r.AnimationSecondPosition()
	assert.Equal(t, Unreachable, a.Step())
	assert.Equal(t, before, r.AnimationSecondPosition())
}

func TestAnimatorBlocked(t *testing.T) {
	r := posedRobot(t)
	r.SetDestinationPosition(geom.MakePoint(100, 180))

	om := NewObstacleManager()
	om.Add(collision.MakeRect(0, 0, 5, 5))
	id := om.Add(collision.MakeRect(125, 155, 10, 10)) // on the path
	_, rects := om.Rects()
	require.Empty(t, collision.ArmHits(r.ZeroPosition(), r.FirstPosition(), r.SecondPosition(), rects))

	a := NewAnimator(r, om, 4, zaptest.NewLogger(t))
	require.True(t, a.Start())
	assert.Equal(t, Blocked, runAnimation(t, a))

	blocker, ok := a.BlockedBy()
	require.True(t, ok)
	assert.Equal(t, id, blocker)

	// The animation arm never entered the obstacle.
	assert.Empty(t, collision.ArmHits(r.ZeroPosition(), r.AnimationFirstPosition(), r.AnimationSecondPosition(), rects))

	a.Stop()
	assert.Equal(t, Idle, a.State())
	_, ok = a.BlockedBy()
	assert.False(t, ok)
}

func TestAnimatorNeedsLengths(t *testing.T) {
	r := robot.New(200, 200)
	a := NewAnimator(r, NewObstacleManager(), 4, nil)
	assert.False(t, a.CanStart())
	assert.False(t, a.Start())
	assert.Equal(t, Idle, a.Step())

	a = NewAnimator(posedRobot(t), NewObstacleManager(), 0, nil)
	assert.False(t, a.CanStart())
}

func TestAnimationStateString(t *testing.T) {
	for s, want := range map[AnimationState]string{
		Idle:               "idle",
		Running:            "running",
		Arrived:            "arrived",
		Unreachable:        "unreachable",
		Blocked:            "blocked",
		AnimationState(42): "unknown",
	} {
		assert.Equal(t, want, s.String())
	}
}

// With L2 > L1 the closed-form solution cannot place the end effector on
// targets near the base, even though they are within the annulus.
func TestAnimatorStopsWhenSolutionMissesWaypoint(t *testing.T) {
	r := robot.New(400, 400, robot.WithLogger(zaptest.NewLogger(t)))
	r.SetFirstPosition(geom.MakePoint(250, 200))
	r.RecalculateRobot()
	r.SetSecondPosition(geom.MakePoint(250, 300))
	r.RecalculateRobot()
	require.InDelta(t, 50, r.L1(), 1e-9)
	require.InDelta(t, 100, r.L2(), 1e-9)

	dest := geom.MakePoint(260, 200)
	r.SetDestinationPosition(dest)
	a := NewAnimator(r, NewObstacleManager(), 4, zaptest.NewLogger(t))
	require.True(t, a.Start())

	from := r.SecondPosition()
	dir := dest.Sub(from).Scale(1 / geom.Dist(from, dest))
	for a.Running() {
		a.Step()
		// Every pose shown lies on the way to the destination.
		off := r.AnimationSecondPosition().Sub(from)
		assert.InDelta(t, 0, off.X*dir.Y-off.Y*dir.X, 1e-6)
	}
	assert.Equal(t, Unreachable, a.State())
	assert.Greater(t, geom.Dist(r.AnimationSecondPosition(), dest), 1.0)
	assertPoint(t, geom.MakePoint(250, 300), r.SecondPosition())
}
