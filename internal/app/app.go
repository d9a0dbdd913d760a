package app

import (
	"math"

	"go.uber.org/zap"

	"github.com/irfansharif/armsim/internal/collision"
	"github.com/irfansharif/armsim/internal/command"
	"github.com/irfansharif/armsim/internal/geom"
	"github.com/irfansharif/armsim/internal/mesh"
	"github.com/irfansharif/armsim/internal/palette"
	"github.com/irfansharif/armsim/internal/robot"
)

const (
	animationStep = 4.0 // workspace units the animation advances per frame
	grabSlack     = 2.0 // handles can be grabbed this many joint radii away
)

// Handle is a point of the arm the user can drag.
type Handle int

const (
	HandleZero Handle = iota
	HandleFirst
	HandleSecond
	HandleDestination
)

func (h Handle) String() string {
	switch h {
	case HandleZero:
		return "zero"
	case HandleFirst:
		return "first"
	case HandleSecond:
		return "second"
	case HandleDestination:
		return "destination"
	default:
		return "unknown"
	}
}

// App encapsulates the session state and the actions the user can take on
// it. It holds no window or GL state.
type App struct {
	Robot     *robot.Robot
	Obstacles *ObstacleManager
	View      *View
	Animator  *Animator
	Palette   palette.Palette
	Style     mesh.Style

	// ObstacleSize is the size of obstacles placed by AddObstacle.
	ObstacleSize geom.Point
	// Cursor is the last pointer position in workspace coordinates. The
	// commands that place or pick things act on it.
	Cursor geom.Point

	Reset          command.Command
	Animate        command.Command
	AddObstacle    command.Command
	DeleteObstacle command.Command

	logger *zap.Logger
	dirty  bool
	cancel func()
}

// NewApp creates a new session around an arm and its obstacles.
func NewApp(r *robot.Robot, rects []collision.Rect, view *View, pal palette.Palette, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	obstacles := NewObstacleManager(rects...)
	a := &App{
		Robot:        r,
		Obstacles:    obstacles,
		View:         view,
		Animator:     NewAnimator(r, obstacles, animationStep, logger.Named("animator")),
		Palette:      pal,
		Style:        mesh.DefaultStyle,
		ObstacleSize: geom.MakePoint(60, 40),
		Cursor:       r.Workspace().Center(),
		logger:       logger,
		dirty:        true,
	}
	a.cancel = r.Observe(func(robot.Field) { a.dirty = true })

	a.Reset = command.New(a.reset, nil)
	a.Animate = command.New(a.animate, func() bool {
		return a.Animator.CanStart() && !a.Animator.Running()
	})
	a.AddObstacle = command.New(a.addObstacle, func() bool {
		return a.Robot.Workspace().Contains(a.Cursor) && a.ObstacleSize.X > 0 && a.ObstacleSize.Y > 0
	})
	a.DeleteObstacle = command.New(a.deleteObstacle, func() bool {
		return a.Obstacles.Len() > 0
	})
	return a
}

// Close detaches the session from the robot.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

func (a *App) reset() {
	a.Animator.Stop()
	a.Robot.Reset()
	a.View.Reset()
	a.dirty = true
	a.logger.Info("reset")
}

func (a *App) animate() {
	a.Robot.SetDestinationPosition(a.Cursor)
	a.Animator.Start()
}

func (a *App) addObstacle() {
	size := a.ObstacleSize
	corner := a.Cursor.Sub(size.Scale(0.5))
	id := a.Obstacles.Add(collision.MakeRect(corner.X, corner.Y, size.X, size.Y))
	a.Obstacles.SetCurrent(id)
	a.dirty = true
	a.logger.Debug("obstacle added", zap.Int("id", int(id)), zap.Stringer("at", corner))
}

// deleteObstacle removes the selected obstacle, or the one closest to the
// cursor when nothing is selected.
func (a *App) deleteObstacle() {
	id, ok := a.Obstacles.Current()
	if !ok {
		closest := a.Obstacles.FindClosest(a.Cursor)
		if len(closest) == 0 {
			return
		}
		id = closest[0]
	}
	a.Obstacles.Remove(id)
	a.Obstacles.SetCurrent(-1)
	a.dirty = true
	a.logger.Debug("obstacle removed", zap.Int("id", int(id)))
}

// SelectNext moves the obstacle selection forwards or backwards.
func (a *App) SelectNext(next bool) (ObstacleID, bool) {
	a.dirty = true
	return a.Obstacles.Iter(next)
}

// MoveCursor records the pointer position, given in framebuffer pixels.
func (a *App) MoveCursor(screen geom.Point) error {
	p, err := a.View.ScreenToWorkspace(a.Robot.Workspace(), screen)
	if err != nil {
		return err
	}
	a.Cursor = p
	return nil
}

// Grab returns the handle nearest the cursor, if one is close enough to pick
// up. The destination is only grabbed when no arm handle is in reach.
func (a *App) Grab() (Handle, bool) {
	reach := a.Style.JointRadius * grabSlack
	best, bestDist := Handle(-1), math.Inf(1)
	for h, p := range map[Handle]geom.Point{
		HandleZero:   a.Robot.ZeroPosition(),
		HandleFirst:  a.Robot.FirstPosition(),
		HandleSecond: a.Robot.SecondPosition(),
	} {
		d := geom.Dist(p, a.Cursor)
		if d > reach {
			continue
		}
		// Fully folded arms stack their handles; prefer the outermost.
		if d < bestDist || (d == bestDist && h > best) {
			best, bestDist = h, d
		}
	}
	if best >= 0 {
		return best, true
	}
	if geom.Dist(a.Robot.DestinationPosition(), a.Cursor) <= reach {
		return HandleDestination, true
	}
	return -1, false
}

// Drag moves a handle to the cursor and recalculates the arm. Dragging stops
// any running animation.
func (a *App) Drag(h Handle) {
	a.Animator.Stop()
	switch h {
	case HandleZero:
		a.Robot.SetZeroPosition(a.Cursor)
	case HandleFirst:
		a.Robot.SetFirstPosition(a.Cursor)
	case HandleSecond:
		a.Robot.SetSecondPosition(a.Cursor)
	case HandleDestination:
		a.Robot.SetDestinationPosition(a.Cursor)
		return
	default:
		return
	}
	a.Robot.RecalculateRobot()
}

// Tick advances a running animation by one step. An animation that arrives
// moves the driven arm onto the destination.
func (a *App) Tick() AnimationState {
	if !a.Animator.Running() {
		return a.Animator.State()
	}
	state := a.Animator.Step()
	switch state {
	case Arrived:
		a.Animator.Commit()
		a.logger.Info("arrived", zap.Stringer("at", a.Robot.SecondPosition()))
	case Unreachable, Blocked:
		a.logger.Info("animation stopped", zap.Stringer("reason", state))
	}
	return state
}

// Hits returns the obstacles the driven arm currently touches.
func (a *App) Hits() []ObstacleID {
	ids, rects := a.Obstacles.Rects()
	p := a.Robot.Snapshot()
	var out []ObstacleID
	for _, i := range collision.ArmHits(p.Zero, p.First, p.Second, rects) {
		out = append(out, ids[i])
	}
	return out
}

// Frame assembles everything to draw.
func (a *App) Frame() mesh.Frame {
	ids, rects := a.Obstacles.Rects()
	pose := a.Robot.Snapshot()
	var selected []int
	if current, ok := a.Obstacles.Current(); ok {
		for i, id := range ids {
			if id == current {
				selected = append(selected, i)
			}
		}
	}
	return mesh.Frame{
		Pose:      pose,
		Obstacles: rects,
		Hits:      collision.ArmHits(pose.Zero, pose.First, pose.Second, rects),
		Selected:  selected,
		Animating: a.Animator.State() != Idle,
		Palette:   a.Palette,
		Style:     a.Style,
	}
}

// MarkDirty flags the frame for regeneration.
func (a *App) MarkDirty() { a.dirty = true }

// TakeDirty reports whether the frame needs regenerating and clears the flag.
func (a *App) TakeDirty() bool {
	d := a.dirty
	a.dirty = false
	return d
}
