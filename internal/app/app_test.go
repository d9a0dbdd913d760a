package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/irfansharif/armsim/internal/collision"
	"github.com/irfansharif/armsim/internal/geom"
	"github.com/irfansharif/armsim/internal/palette"
	"github.com/irfansharif/armsim/internal/robot"
)

func newTestApp(t *testing.T, r *robot.Robot, rects ...collision.Rect) *App {
	t.Helper()
	a := NewApp(r, rects, NewView(200, 200), palette.Default(), zaptest.NewLogger(t))
	t.Cleanup(a.Close)
	return a
}

func TestAppDirtyTracking(t *testing.T) {
	r := robot.New(200, 200)
	a := newTestApp(t, r)
	assert.True(t, a.TakeDirty())
	assert.False(t, a.TakeDirty())

	r.SetDestinationPosition(geom.MakePoint(1, 2))
	assert.True(t, a.TakeDirty())

	a.MarkDirty()
	assert.True(t, a.TakeDirty())

	a.Close()
	r.SetDestinationPosition(geom.MakePoint(3, 4))
	assert.False(t, a.TakeDirty())
}

func TestAppCommandGuards(t *testing.T) {
	a := newTestApp(t, robot.New(200, 200))

	assert.False(t, a.Animate.Allowed(), "lengths unknown")
	assert.False(t, a.DeleteObstacle.Allowed(), "no obstacles")
	assert.True(t, a.Reset.Allowed())

	a.Cursor = geom.MakePoint(-10, 50)
	assert.False(t, a.AddObstacle.Execute(), "cursor outside the workspace")
	assert.Zero(t, a.Obstacles.Len())

	a.Cursor = geom.MakePoint(50, 50)
	assert.True(t, a.AddObstacle.Execute())
	assert.True(t, a.DeleteObstacle.Allowed())
}

func TestAppAddDeleteObstacle(t *testing.T) {
	a := newTestApp(t, robot.New(200, 200), collision.MakeRect(0, 0, 10, 10))

	a.Cursor = geom.MakePoint(100, 50)
	require.True(t, a.AddObstacle.Execute())
	current, ok := a.Obstacles.Current()
	require.True(t, ok)
	rect, _ := a.Obstacles.Get(current)
	assert.Equal(t, collision.MakeRect(70, 30, 60, 40), rect)

	// The selection goes first.
	a.Cursor = geom.MakePoint(0, 0)
	require.True(t, a.DeleteObstacle.Execute())
	assert.Equal(t, []ObstacleID{0}, a.Obstacles.IDs())

	// Then whatever is closest to the cursor.
	a.Obstacles.Add(collision.MakeRect(150, 150, 10, 10))
	a.Cursor = geom.MakePoint(140, 140)
	require.True(t, a.DeleteObstacle.Execute())
	assert.Equal(t, []ObstacleID{0}, a.Obstacles.IDs())
}

func TestAppGrabAndDrag(t *testing.T) {
	r := robot.New(200, 200)
	a := newTestApp(t, r)

	// A folded arm hands out its outermost handle.
	h, ok := a.Grab()
	require.True(t, ok)
	assert.Equal(t, HandleSecond, h)

	// Unfold it by dragging: first the end effector, then the joint.
	a.Cursor = geom.MakePoint(160, 100)
	a.Drag(HandleSecond)
	h, ok = a.Grab()
	require.True(t, ok)
	assert.Equal(t, HandleSecond, h)

	a.Cursor = geom.MakePoint(100, 100)
	h, ok = a.Grab()
	require.True(t, ok)
	assert.Equal(t, HandleFirst, h)
	a.Cursor = geom.MakePoint(130, 100)
	a.Drag(HandleFirst)

	assert.Equal(t, geom.MakePoint(130, 100), r.FirstPosition())
	assert.InDelta(t, 30, r.L1(), 1e-9)
	assert.InDelta(t, 30, r.L2(), 1e-9)

	a.Cursor = geom.MakePoint(500, 500)
	_, ok = a.Grab()
	assert.False(t, ok)
}

func TestAppGrabDestination(t *testing.T) {
	r := posedRobot(t)
	a := newTestApp(t, r)
	r.SetDestinationPosition(geom.MakePoint(40, 40))

	a.Cursor = geom.MakePoint(42, 41)
	h, ok := a.Grab()
	require.True(t, ok)
	assert.Equal(t, HandleDestination, h)

	a.Cursor = geom.MakePoint(20, 30)
	a.Drag(h)
	assert.Equal(t, geom.MakePoint(20, 30), r.DestinationPosition())
	assert.InDelta(t, 60, r.L1(), 1e-9)
}

func TestAppAnimateToCursor(t *testing.T) {
	r := posedRobot(t)
	a := newTestApp(t, r)
	a.Cursor = geom.MakePoint(100, 180)

	require.True(t, a.Animate.Execute())
	assert.False(t, a.Animate.Allowed(), "already running")
	assert.Equal(t, a.Cursor, r.DestinationPosition())

	state := Running
	for i := 0; i < 1000 && state == Running; i++ {
		state = a.Tick()
	}
	require.Equal(t, Arrived, state)
	assertPoint(t, geom.MakePoint(100, 180), r.SecondPosition())
	assert.InDelta(t, 60, r.L1(), 1e-6)
	assert.InDelta(t, 40, r.L2(), 1e-6)
	assert.True(t, a.Frame().Animating)
	assert.Equal(t, Arrived, a.Tick())
}

func TestAppReset(t *testing.T) {
	r := posedRobot(t)
	a := newTestApp(t, r)
	a.View.SetZoom(3)
	a.Cursor = geom.MakePoint(100, 180)
	require.True(t, a.Animate.Execute())
	a.Tick()

	require.True(t, a.Reset.Execute())
	assert.False(t, r.L1Set())
	assert.False(t, r.L2Set())
	assert.Equal(t, geom.MakePoint(100, 100), r.SecondPosition())
	assert.Equal(t, Idle, a.Animator.State())
	assert.Equal(t, 1.0, a.View.Zoom)
}

func TestAppFrameAndHits(t *testing.T) {
	r := posedRobot(t)
	a := newTestApp(t, r,
		collision.MakeRect(120, 95, 10, 10), // across the first link
		collision.MakeRect(0, 0, 10, 10),
		collision.MakeRect(155, 120, 10, 5), // across the second link
	)
	assert.Equal(t, []ObstacleID{0, 2}, a.Hits())

	f := a.Frame()
	assert.Equal(t, []int{0, 2}, f.Hits)
	assert.Empty(t, f.Selected)
	assert.False(t, f.Animating)
	assert.True(t, f.Pose.Ready())
	assert.Len(t, f.Obstacles, 3)

	a.Obstacles.Remove(0)
	id, ok := a.SelectNext(true)
	require.True(t, ok)
	assert.Equal(t, ObstacleID(1), id)
	f = a.Frame()
	assert.Equal(t, []int{1}, f.Hits) // indices follow the remaining obstacles
	assert.Equal(t, []int{0}, f.Selected)
}

func TestAppMoveCursor(t *testing.T) {
	a := newTestApp(t, robot.New(200, 100))
	// The 200x100 workspace sits centered in the 200x200 viewport.
	require.NoError(t, a.MoveCursor(geom.MakePoint(50, 110)))
	assertPoint(t, geom.MakePoint(50, 60), a.Cursor)

	a.View.SetViewport(0, 0)
	require.Error(t, a.MoveCursor(geom.MakePoint(1, 1)))
}

func TestHandleString(t *testing.T) {
	assert.Equal(t, "zero", HandleZero.String())
	assert.Equal(t, "first", HandleFirst.String())
	assert.Equal(t, "second", HandleSecond.String())
	assert.Equal(t, "destination", HandleDestination.String())
	assert.Equal(t, "unknown", Handle(9).String())
}
