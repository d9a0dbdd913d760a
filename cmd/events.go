package main

import (
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/irfansharif/armsim/internal/app"
	"github.com/irfansharif/armsim/internal/geom"
	"github.com/irfansharif/armsim/internal/render"
)

const repeatInterval = 125 * time.Millisecond // time between successive pans when held down
const basePanDistance = 100.0

// EventHandlers manages all event handling for the application.
type EventHandlers struct {
	window      *glfw.Window
	application *app.App
	renderer    *render.Renderer
	logger      *zap.Logger

	// J/K/H/L allow panning across through keypresses. They also do so
	// continuously if held.
	panKeyHeld                   bool
	panDirectionX, panDirectionY float64
	lastPanTime                  time.Time

	// A left press on an arm handle drags it; anywhere else it pans.
	grabbed                          app.Handle
	isGrabbing, isPanning            bool
	dragStartMouseX, dragStartMouseY float64
	dragStartPanX, dragStartPanY     float64
}

// NewEventHandlers creates a new event handlers manager.
func NewEventHandlers(window *glfw.Window, application *app.App, renderer *render.Renderer, logger *zap.Logger) *EventHandlers {
	eh := &EventHandlers{
		window:      window,
		application: application,
		renderer:    renderer,
		logger:      logger,
		lastPanTime: time.Now(),
	}
	eh.SetupCallbacks(window)
	return eh
}

// SetupCallbacks configures all GLFW event callbacks.
func (eh *EventHandlers) SetupCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(wnd *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleKey(key, action, mods) // for various actions
	})
	window.SetMouseButtonCallback(func(wnd *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleMouseButton(button, action) // for dragging handles and panning
	})
	window.SetCursorPosCallback(func(wnd *glfw.Window, xpos, ypos float64) {
		eh.handleCursorPos(xpos, ypos) // for tracking where the mouse currently is
	})
	window.SetScrollCallback(func(wnd *glfw.Window, _, zoomDelta float64) {
		eh.performZoom(zoomDelta) // for zooming
	})
	window.SetFramebufferSizeCallback(func(wnd *glfw.Window, newW, newH int) {
		eh.handleFramebufferSize(newW, newH) // for window resize
	})
}

// updateRendererView updates the renderer with the current view state and
// framebuffer size.
func (eh *EventHandlers) updateRendererView() {
	view := eh.application.View
	cw, ch := eh.window.GetFramebufferSize()
	if cw <= 0 || ch <= 0 {
		return // minimized
	}
	transform, err := view.WorkspaceToScreen(eh.application.Robot.Workspace())
	if err != nil {
		eh.logger.Warn("cannot map workspace to screen", zap.Error(err))
		return
	}
	eh.renderer.SetView(cw, ch, transform)
}

// handleFramebufferSize handles window resize events.
func (eh *EventHandlers) handleFramebufferSize(newW, newH int) {
	eh.application.View.SetViewport(newW, newH)
	eh.updateRendererView()
}

// handleKey handles keyboard input events.
func (eh *EventHandlers) handleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	switch key {
	case glfw.KeySpace:
		if action == glfw.Press {
			eh.handleAnimateKey(mods)
		}
	case glfw.KeyR:
		if action == glfw.Press {
			eh.run("reset", eh.application.Reset.Execute)
			eh.updateRendererView()
		}
	case glfw.KeyC:
		if action == glfw.Press {
			eh.run("add obstacle", eh.application.AddObstacle.Execute)
		}
	case glfw.KeyD:
		if action == glfw.Press {
			eh.run("delete obstacle", eh.application.DeleteObstacle.Execute)
		}
	case glfw.KeyTab:
		if action == glfw.Press {
			next := true
			if (mods & glfw.ModShift) != 0 {
				next = false
			}
			eh.application.SelectNext(next)
		}
	case glfw.KeyEscape:
		if action == glfw.Press {
			eh.application.Obstacles.SetCurrent(-1)
			eh.application.MarkDirty()
		}
	case glfw.KeyJ:
		eh.handlePanKeys(action, 0 /*dx*/, -1 /*dy*/) // pan down
	case glfw.KeyK:
		eh.handlePanKeys(action, 0 /*dx*/, 1 /*dy*/) // pan up
	case glfw.KeyH:
		eh.handlePanKeys(action, 1 /*dx*/, 0 /*dy*/) // pan right
	case glfw.KeyL:
		eh.handlePanKeys(action, -1 /*dx*/, 0 /*dy*/) // pan left
	case glfw.KeyEqual:
		if action == glfw.Press && (mods&glfw.ModSuper) != 0 {
			eh.performZoom(1) // zoom in
		}
	case glfw.KeyMinus:
		if action == glfw.Press && (mods&glfw.ModSuper) != 0 {
			eh.performZoom(-1) // zoom out
		}
	}
}

// run executes a command, noting when its guard refused.
func (eh *EventHandlers) run(name string, execute func() bool) {
	if !execute() {
		eh.logger.Debug("command not allowed", zap.String("command", name))
	}
}

// handleAnimateKey handles space (animate to the cursor) and shift+space
// (stop the animation).
func (eh *EventHandlers) handleAnimateKey(mods glfw.ModifierKey) {
	if (mods & glfw.ModShift) != 0 {
		eh.application.Animator.Stop()
		eh.application.MarkDirty()
		return
	}
	eh.run("animate", eh.application.Animate.Execute)
}

// handlePanKeys handles j/k/h/l key presses, and also releases for
// continuous panning.
func (eh *EventHandlers) handlePanKeys(action glfw.Action, dx, dy float64) {
	switch action {
	case glfw.Press:
		eh.panKeyHeld = true
		eh.panDirectionX = dx
		eh.panDirectionY = dy
		eh.performPan(dx, dy)
		eh.lastPanTime = time.Now()

	case glfw.Release:
		eh.panKeyHeld = false

	case glfw.Repeat:
		// Ignore repeat events - we handle continuous panning ourselves to
		// ensure consistent timing.
	}
}

// performPan executes a single pan operation.
func (eh *EventHandlers) performPan(dx, dy float64) {
	// Scale by inverse of zoom: when zoomed out (zoom < 1), we move further in
	// workspace terms and vice-versa.
	view := eh.application.View
	scaledDistance := basePanDistance / view.Zoom

	view.SetPan(view.PanX+dx*scaledDistance, view.PanY+dy*scaledDistance)
	eh.updateRendererView()

	mouseX, mouseY := eh.window.GetCursorPos()
	eh.updateCursor(mouseX, mouseY)
}

// handleContinuousPanning handles continuous panning while pan keys are held.
func (eh *EventHandlers) handleContinuousPanning() {
	if !eh.panKeyHeld {
		return // nothing to do
	}

	now := time.Now()
	if now.Sub(eh.lastPanTime) < repeatInterval {
		return // not enough time has passed since the last pan
	}

	eh.performPan(eh.panDirectionX, eh.panDirectionY)
	eh.lastPanTime = now
}

// handleMouseButton handles left presses and releases: grabbing a handle
// under the cursor, or panning when there is none.
func (eh *EventHandlers) handleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return // nothing to do
	}

	switch action {
	case glfw.Press:
		if h, ok := eh.application.Grab(); ok {
			eh.isGrabbing, eh.grabbed = true, h
			eh.logger.Debug("grabbed handle", zap.Stringer("handle", h))
			return
		}
		eh.startPanning()
	case glfw.Release:
		eh.isGrabbing = false
		eh.stopPanning()
	}
}

// framebufferPos converts a cursor position in window coordinates into
// framebuffer pixels.
func (eh *EventHandlers) framebufferPos(mouseX, mouseY float64) geom.Point {
	scaleX, scaleY := eh.window.GetContentScale()
	return geom.MakePoint(mouseX*float64(scaleX), mouseY*float64(scaleY))
}

// updateCursor recalculates the workspace cursor after the mouse or the view
// moved.
func (eh *EventHandlers) updateCursor(mouseX, mouseY float64) {
	if err := eh.application.MoveCursor(eh.framebufferPos(mouseX, mouseY)); err != nil {
		eh.logger.Debug("cursor outside a valid view", zap.Error(err))
	}
}

// handleCursorPos handles mouse movement for dragging and panning.
func (eh *EventHandlers) handleCursorPos(xpos, ypos float64) {
	eh.updateCursor(xpos, ypos)
	if eh.isGrabbing {
		eh.application.Drag(eh.grabbed)
		return
	}
	eh.updatePanning(xpos, ypos)
}

// startPanning starts the panning operation.
func (eh *EventHandlers) startPanning() {
	eh.isPanning = true
	eh.dragStartMouseX, eh.dragStartMouseY = eh.window.GetCursorPos()
	view := eh.application.View
	eh.dragStartPanX, eh.dragStartPanY = view.PanX, view.PanY
}

// stopPanning ends panning operation.
func (eh *EventHandlers) stopPanning() {
	eh.isPanning = false
}

// updatePanning updates pan position based on mouse movement.
func (eh *EventHandlers) updatePanning(xpos, ypos float64) {
	if !eh.isPanning {
		return
	}

	scaleX, scaleY := eh.window.GetContentScale()
	dx := (xpos - eh.dragStartMouseX) * float64(scaleX)
	dy := (ypos - eh.dragStartMouseY) * float64(scaleY)

	eh.application.View.SetPan(eh.dragStartPanX+dx, eh.dragStartPanY+dy)
	eh.updateRendererView() // direct update for maximum smoothness
}

// performZoom handles zoom operations with cursor-centered zooming.
func (eh *EventHandlers) performZoom(zoomDelta float64) {
	cw, ch := eh.window.GetFramebufferSize()
	centerX, centerY := float64(cw)/2, float64(ch)/2
	fb := eh.framebufferPos(eh.window.GetCursorPos())

	zoomFactor := 1.0 + zoomDelta*0.15
	view := eh.application.View
	oldZoom := view.Zoom

	// Cursor position relative to viewport center.
	cursorOffsetX, cursorOffsetY := fb.X-centerX, fb.Y-centerY

	// What unzoomed point (relative to center) is under the cursor right now?
	offsetX, offsetY := (cursorOffsetX-view.PanX)/oldZoom, (cursorOffsetY-view.PanY)/oldZoom

	view.SetZoom(oldZoom * zoomFactor)

	// Calculate new pan to keep that point at the cursor.
	newZoom := view.Zoom
	view.SetPan(cursorOffsetX-offsetX*newZoom, cursorOffsetY-offsetY*newZoom)
	eh.updateRendererView() // direct update for maximum smoothness
}
