package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/irfansharif/armsim/internal/mesh"
)

const (
	bytesPerFloat      = 4
	vertexStride       = mesh.FloatsPerVertex * bytesPerFloat
	minVertexCapacity  = 4096 // vertices allocated up front
	vertexGrowthFactor = 2
	positionComponents = 2
	colorComponents    = 4
	colorOffset        = positionComponents * bytesPerFloat
)

// vertexBuffer is a single dynamic VAO/VBO pair holding one frame of
// triangles. The whole frame is re-uploaded on change; storage only grows,
// doubling until the frame fits.
type vertexBuffer struct {
	vao, vbo       uint32
	vertexCapacity int // allocated, in vertices
	vertexCount    int // uploaded, in vertices

	uploads, grows int
}

func newVertexBuffer() *vertexBuffer {
	b := &vertexBuffer{}
	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	b.allocate(minVertexCapacity)

	// - Attribute 0: position (vec2)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, positionComponents, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	// - Attribute 1: color (vec4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, colorComponents, gl.FLOAT, false, vertexStride, gl.PtrOffset(colorOffset))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return b
}

// allocate (re)specifies the VBO's storage. The VBO must be bound.
func (b *vertexBuffer) allocate(vertices int) {
	gl.BufferData(gl.ARRAY_BUFFER, vertices*vertexStride, nil, gl.DYNAMIC_DRAW)
	b.vertexCapacity = vertices
}

// upload replaces the buffer contents with the given interleaved vertex data.
func (b *vertexBuffer) upload(data []float32) {
	count := len(data) / mesh.FloatsPerVertex
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	if count > b.vertexCapacity {
		capacity := b.vertexCapacity
		for capacity < count {
			capacity *= vertexGrowthFactor
		}
		b.allocate(capacity)
		b.grows++
	}
	if count > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, count*vertexStride, gl.Ptr(data))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	b.vertexCount = count
	b.uploads++
}

func (b *vertexBuffer) draw() {
	if b.vertexCount == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(b.vertexCount))
	gl.BindVertexArray(0)
}

func (b *vertexBuffer) gpuBytes() int { return b.vertexCapacity * vertexStride }

func (b *vertexBuffer) delete() {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
}
