package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/irfansharif/armsim/internal/collision"
	"github.com/irfansharif/armsim/internal/geom"
)

const sample = `
workspace: {width: 800, height: 600}
arm:
  base:  {x: 400, y: 300}
  joint: {x: 500, y: 300}
  end:   {x: 500, y: 350}
destination: {x: 300, y: 200}
obstacles:
  - {x: 100, y: 100, width: 80, height: 40}
  - {x: 600, y: 400, width: 20, height: 20}
`

func TestLoadAndBuild(t *testing.T) {
	s, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	r, obstacles, err := s.Build(zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, geom.MakeBox(0, 0, 800, 600), r.Workspace())
	assert.Equal(t, geom.MakePoint(400, 300), r.ZeroPosition())
	assert.Equal(t, geom.MakePoint(500, 350), r.SecondPosition())
	assert.Equal(t, geom.MakePoint(300, 200), r.DestinationPosition())
	assert.Equal(t, 100.0, r.L1())
	assert.Equal(t, 50.0, r.L2())
	assert.Equal(t, []collision.Rect{
		collision.MakeRect(100, 100, 80, 40),
		collision.MakeRect(600, 400, 20, 20),
	}, obstacles)

	// The mirrored elbow sits on the other side of the base-to-end line.
	third := r.ThirdPosition()
	assert.InDelta(t, 100, geom.Dist(r.ZeroPosition(), third), 1e-9)
	assert.InDelta(t, 50, geom.Dist(third, r.SecondPosition()), 1e-9)
	assert.Greater(t, third.Y, 300.0)
}

func TestBuildWithoutArm(t *testing.T) {
	r, obstacles, err := Default(10, 10).Build(nil)
	require.NoError(t, err)

	assert.Equal(t, geom.MakePoint(5, 5), r.FirstPosition())
	assert.False(t, r.L1Set())
	assert.Empty(t, obstacles)
}

func TestBaseDefaultsToCenter(t *testing.T) {
	s, err := Load(strings.NewReader(`
workspace: {width: 10, height: 10}
arm:
  joint: {x: 7, y: 5}
  end: {x: 7, y: 7}
`))
	require.NoError(t, err)
	r, _, err := s.Build(nil)
	require.NoError(t, err)

	assert.Equal(t, geom.MakePoint(5, 5), r.ZeroPosition())
	assert.Equal(t, 2.0, r.L1())
	assert.Equal(t, 2.0, r.L2())
}

func TestLoadRejectsInvalidScenes(t *testing.T) {
	cases := map[string]string{
		"zero workspace":    `workspace: {width: 0, height: 10}`,
		"missing workspace": `obstacles: []`,
		"flat obstacle":     "workspace: {width: 10, height: 10}\nobstacles: [{x: 1, y: 1, width: 0, height: 2}]",
		"negative obstacle": "workspace: {width: 10, height: 10}\nobstacles: [{x: 1, y: 1, width: 2, height: -2}]",
		"infinite arm":      "workspace: {width: 10, height: 10}\narm: {joint: {x: .inf, y: 1}, end: {x: 1, y: 1}}",
		"nan destination":   "workspace: {width: 10, height: 10}\ndestination: {x: .nan, y: 1}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			require.ErrorIs(t, err, ErrInvalidScene)
		})
	}

	_, err := Load(strings.NewReader("workspace: {width: 10, height: 10}\nwat: 1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidScene)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Obstacles, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestShippedScenesLoad(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "scenes", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		s, err := LoadFile(path)
		require.NoError(t, err, path)
		_, _, err = s.Build(nil)
		require.NoError(t, err, path)
	}
}
