// Package render draws arm frames with OpenGL.
//
// Geometry is generated in workspace coordinates by the mesh package and
// uploaded to a single vertex buffer whenever the frame changes. The view
// (fit, zoom and pan) is applied by the shader's transform uniform, so panning
// and zooming never regenerate geometry.
package render

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/irfansharif/armsim/internal/geom"
	"github.com/irfansharif/armsim/internal/mesh"
)

type Renderer struct {
	w, h              int
	workspaceToScreen geom.Affine

	shaderManager *ShaderManager
	buffer        *vertexBuffer
	logger        *zap.Logger
	stats         Stats
}

// Stats tracks rendering performance metrics.
type Stats struct {
	Triangles         int     // triangles in the uploaded frame
	GPUBytes          int     // vertex storage allocated
	Uploads           int     // frames uploaded so far
	Grows             int     // times the vertex storage grew
	LastPrepareTimeMs float64 // time spent in last Prepare() call in milliseconds
	LastDrawTimeUs    float64 // time spent in last Draw() call in microseconds
}

// NewRenderer sets up the shader program and vertex buffer. A GL context
// must be current.
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sm, err := NewShaderManager()
	if err != nil {
		return nil, err
	}
	return &Renderer{
		workspaceToScreen: geom.Identity,
		shaderManager:     sm,
		buffer:            newVertexBuffer(),
		logger:            logger,
	}, nil
}

// SetView sets the framebuffer size and the workspace-to-pixel transform.
func (r *Renderer) SetView(w, h int, workspaceToScreen geom.Affine) {
	r.w, r.h = w, h
	r.workspaceToScreen = workspaceToScreen
}

// Prepare generates and uploads the geometry for a frame.
func (r *Renderer) Prepare(f mesh.Frame) error {
	startTime := time.Now()

	vertices, err := mesh.Build(f)
	if err != nil {
		return fmt.Errorf("building mesh: %w", err)
	}
	grows := r.buffer.grows
	r.buffer.upload(vertices)
	if r.buffer.grows != grows {
		r.logger.Debug("vertex buffer grew",
			zap.Int("vertices", r.buffer.vertexCount),
			zap.Int("capacity", r.buffer.vertexCapacity),
		)
	}

	r.stats.Triangles = r.buffer.vertexCount / 3
	r.stats.GPUBytes = r.buffer.gpuBytes()
	r.stats.Uploads = r.buffer.uploads
	r.stats.Grows = r.buffer.grows
	r.stats.LastPrepareTimeMs = float64(time.Since(startTime).Microseconds()) / 1000.0
	return nil
}

func (r *Renderer) Draw() {
	if r.w <= 0 || r.h <= 0 {
		return // minimized
	}
	startTime := time.Now()

	r.shaderManager.SetTransform(affineToMatrix4(r.computeTransform()))
	r.buffer.draw()

	r.stats.LastDrawTimeUs = float64(time.Since(startTime).Microseconds())
}

// Stats returns the current performance statistics
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Delete releases the GL resources.
func (r *Renderer) Delete() {
	r.buffer.delete()
	r.shaderManager.Delete()
}

// computeTransform composes the view with the conversion from framebuffer
// pixels to OpenGL NDC.
func (r *Renderer) computeTransform() geom.Affine {
	screenToNDC := geom.MakeAffine(
		2.0/float64(r.w), 0, -1,
		0, -2.0/float64(r.h), 1,
	)
	return screenToNDC.Mul(r.workspaceToScreen)
}

// affineToMatrix4 converts an affine transform to OpenGL 4x4 matrix format.
func affineToMatrix4(transform geom.Affine) [16]float32 {
	return [16]float32{
		float32(transform.A), float32(transform.D), 0, 0,
		float32(transform.B), float32(transform.E), 0, 0,
		0, 0, 1, 0,
		float32(transform.C), float32(transform.F), 0, 1,
	}
}
