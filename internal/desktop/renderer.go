//go:build !android

package desktop

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"ambient/internal/installation"
)

// glOffset converts a byte offset to unsafe.Pointer for OpenGL VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

// Renderer draws the particle field as additive point sprites.
type Renderer struct {
	prog   uint32
	vao    uint32
	posVBO uint32
	colVBO uint32
	count  int32

	uModel      int32
	uView       int32
	uProj       int32
	uSize       int32
	uScale      int32
	uFogDensity int32
	uOpacity    int32
}

// NewRenderer allocates buffers for n particles.
func NewRenderer(n int) (*Renderer, error) {
	prog, err := linkProgram(cloudVertSrc, cloudFragSrc)
	if err != nil {
		return nil, fmt.Errorf("cloud program: %w", err)
	}
	r := &Renderer{prog: prog, count: int32(n)}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.posVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.posVBO)
	gl.BufferData(gl.ARRAY_BUFFER, n*3*4, nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, glOffset(0))

	gl.GenBuffers(1, &r.colVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.colVBO)
	gl.BufferData(gl.ARRAY_BUFFER, n*3*4, nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 3*4, glOffset(0))
	gl.BindVertexArray(0)

	gl.UseProgram(prog)
	r.uModel = gl.GetUniformLocation(prog, gl.Str("uModel\x00"))
	r.uView = gl.GetUniformLocation(prog, gl.Str("uView\x00"))
	r.uProj = gl.GetUniformLocation(prog, gl.Str("uProj\x00"))
	r.uSize = gl.GetUniformLocation(prog, gl.Str("uSize\x00"))
	r.uScale = gl.GetUniformLocation(prog, gl.Str("uScale\x00"))
	r.uFogDensity = gl.GetUniformLocation(prog, gl.Str("uFogDensity\x00"))
	r.uOpacity = gl.GetUniformLocation(prog, gl.Str("uOpacity\x00"))
	gl.Uniform1f(r.uSize, installation.ParticleSize)
	gl.Uniform1f(r.uFogDensity, installation.FogDensity)
	gl.Uniform1f(r.uOpacity, installation.PointOpacity)

	return r, nil
}

// Upload replaces both vertex streams with the live buffers.
func (r *Renderer) Upload(pos, col []float32) {
	if r.count == 0 || len(pos) < int(r.count)*3 || len(col) < int(r.count)*3 {
		return
	}
	size := int(r.count) * 3 * 4
	gl.BindBuffer(gl.ARRAY_BUFFER, r.posVBO)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.STREAM_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(&pos[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, r.colVBO)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.STREAM_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(&col[0]))
}

// Draw renders the cloud with the camera's object transform.
func (r *Renderer) Draw(cam *installation.CameraState, fbW, fbH int) {
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if r.count == 0 {
		return
	}

	model := cam.Model()
	view, proj := installation.ViewProjection(float32(fbW) / float32(fbH))

	gl.UseProgram(r.prog)
	gl.UniformMatrix4fv(r.uModel, 1, false, &model[0])
	gl.UniformMatrix4fv(r.uView, 1, false, &view[0])
	gl.UniformMatrix4fv(r.uProj, 1, false, &proj[0])
	gl.Uniform1f(r.uScale, installation.PointScale(fbH))

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.POINTS, 0, r.count)
	gl.BindVertexArray(0)
}

func (r *Renderer) Destroy() {
	gl.DeleteBuffers(1, &r.posVBO)
	gl.DeleteBuffers(1, &r.colVBO)
	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteProgram(r.prog)
}
