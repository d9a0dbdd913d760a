// Package scene loads the initial arm pose and obstacle layout from YAML.
package scene

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/irfansharif/armsim/internal/collision"
	"github.com/irfansharif/armsim/internal/geom"
	"github.com/irfansharif/armsim/internal/robot"
)

// ErrInvalidScene is wrapped by every validation failure.
var ErrInvalidScene = errors.New("invalid scene")

// Scene describes a workspace, an arm and the obstacles around it.
type Scene struct {
	Workspace   Size       `yaml:"workspace"`
	Arm         *Arm       `yaml:"arm,omitempty"`
	Destination *Point     `yaml:"destination,omitempty"`
	Obstacles   []Obstacle `yaml:"obstacles,omitempty"`
}

type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Arm places the base, joint and end effector. The base defaults to the
// workspace center when omitted.
type Arm struct {
	Base  *Point `yaml:"base,omitempty"`
	Joint Point  `yaml:"joint"`
	End   Point  `yaml:"end"`
}

type Obstacle struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func (p Point) point() geom.Point { return geom.MakePoint(p.X, p.Y) }

// Default is the scene used when none is given.
func Default(width, height float64) *Scene {
	return &Scene{Workspace: Size{Width: width, Height: height}}
}

// Load decodes a scene from YAML and validates it.
func Load(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a scene from the named file.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scene: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks dimensions are positive and finite.
func (s *Scene) Validate() error {
	if !positive(s.Workspace.Width) || !positive(s.Workspace.Height) {
		return fmt.Errorf("%w: workspace must have positive size, got %vx%v",
			ErrInvalidScene, s.Workspace.Width, s.Workspace.Height)
	}
	for i, o := range s.Obstacles {
		if !positive(o.Width) || !positive(o.Height) {
			return fmt.Errorf("%w: obstacle %d must have positive size, got %vx%v",
				ErrInvalidScene, i, o.Width, o.Height)
		}
		if !finite(o.X) || !finite(o.Y) {
			return fmt.Errorf("%w: obstacle %d has non-finite position", ErrInvalidScene, i)
		}
	}
	if a := s.Arm; a != nil {
		points := []Point{a.Joint, a.End}
		if a.Base != nil {
			points = append(points, *a.Base)
		}
		for _, p := range points {
			if !finite(p.X) || !finite(p.Y) {
				return fmt.Errorf("%w: arm has non-finite position", ErrInvalidScene)
			}
		}
	}
	if d := s.Destination; d != nil && (!finite(d.X) || !finite(d.Y)) {
		return fmt.Errorf("%w: destination is non-finite", ErrInvalidScene)
	}
	return nil
}

// Build creates the robot and obstacles the scene describes. The arm is
// placed link by link with a recalculation after each, so both lengths are
// established on return.
func (s *Scene) Build(logger *zap.Logger) (*robot.Robot, []collision.Rect, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := robot.New(s.Workspace.Width, s.Workspace.Height, robot.WithLogger(logger))
	if a := s.Arm; a != nil {
		if a.Base != nil {
			r.SetZeroPosition(a.Base.point())
		}
		r.SetFirstPosition(a.Joint.point())
		r.RecalculateRobot()
		r.SetSecondPosition(a.End.point())
		r.RecalculateRobot()
	}
	if s.Destination != nil {
		r.SetDestinationPosition(s.Destination.point())
	}

	obstacles := make([]collision.Rect, 0, len(s.Obstacles))
	for _, o := range s.Obstacles {
		obstacles = append(obstacles, collision.MakeRect(o.X, o.Y, o.Width, o.Height))
	}

	logger.Info("scene built",
		zap.Float64("width", s.Workspace.Width),
		zap.Float64("height", s.Workspace.Height),
		zap.Float64("l1", r.L1()),
		zap.Float64("l2", r.L2()),
		zap.Int("obstacles", len(obstacles)),
	)
	return r, obstacles, nil
}

func finite(v float64) bool   { return !math.IsNaN(v) && !math.IsInf(v, 0) }
func positive(v float64) bool { return finite(v) && v > 0 }
