package app

import (
	"github.com/irfansharif/armsim/internal/geom"
)

const (
	minZoom = 0.1
	maxZoom = 8.0
)

// View manages the current view state including zoom, pan, and viewport.
type View struct {
	Zoom          float64
	PanX, PanY    float64
	Width, Height int
}

// NewView creates a new view state with default values.
func NewView(width, height int) *View {
	return &View{
		Zoom:   1.0,
		Width:  width,
		Height: height,
	}
}

// SetZoom sets the zoom level, clamping to valid range.
func (vs *View) SetZoom(zoom float64) {
	if zoom < minZoom {
		vs.Zoom = minZoom
	} else if zoom > maxZoom {
		vs.Zoom = maxZoom
	} else {
		vs.Zoom = zoom
	}
}

// SetPan sets the pan position to the given coordinates.
func (vs *View) SetPan(x, y float64) {
	vs.PanX = x
	vs.PanY = y
}

// SetViewport updates the viewport dimensions.
func (vs *View) SetViewport(width, height int) {
	vs.Width = width
	vs.Height = height
}

// Reset drops any zoom and pan.
func (vs *View) Reset() {
	vs.Zoom = 1.0
	vs.PanX, vs.PanY = 0, 0
}

// WorkspaceToScreen returns the transform from workspace coordinates to
// framebuffer pixels: the workspace is fitted into the viewport, then zoomed
// around the viewport center and panned.
func (vs *View) WorkspaceToScreen(workspace geom.Box) (geom.Affine, error) {
	viewport := geom.MakeBox(0, 0, float64(vs.Width), float64(vs.Height))
	fit, err := geom.FillBox(workspace, viewport)
	if err != nil {
		return geom.Affine{}, err
	}
	zoom := geom.ScaleAbout(vs.Zoom, viewport.Center())
	pan := geom.Translate(vs.PanX, vs.PanY)
	return pan.Mul(zoom.Mul(fit)), nil
}

// ScreenToWorkspace maps a framebuffer pixel back into the workspace.
func (vs *View) ScreenToWorkspace(workspace geom.Box, p geom.Point) (geom.Point, error) {
	t, err := vs.WorkspaceToScreen(workspace)
	if err != nil {
		return geom.Point{}, err
	}
	inv, err := t.Inv()
	if err != nil {
		return geom.Point{}, err
	}
	return inv.MulPoint(p), nil
}
