package scene

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/splay-terrain/internal/engine/debug"
	"github.com/Faultbox/splay-terrain/internal/engine/shader"
)

const overlayVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aColor;

uniform mat4 uMVP;

out vec3 vColor;

void main() {
    vColor = aColor;
    gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

const overlayFragmentShader = `#version 410 core
in vec3 vColor;
out vec4 fragColor;

void main() {
    fragColor = vec4(vColor, 1.0);
}
`

// OverlayRenderer draws debug line lists on top of the terrain.
type OverlayRenderer struct {
	program uint32
	locs    *shader.Locations
	vao     uint32
	vbo     uint32

	count    int32
	capacity int
}

// NewOverlayRenderer compiles the line program.
func NewOverlayRenderer() (*OverlayRenderer, error) {
	program, err := shader.CompileProgram(overlayVertexShader, overlayFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}
	o := &OverlayRenderer{program: program, locs: shader.NewLocations(program)}

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, debug.LineVertexStride, 0)
	gl.EnableVertexAttribArray(0)

	// Color (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, debug.LineVertexStride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return o, nil
}

// SetLines replaces the line list.
func (o *OverlayRenderer) SetLines(verts []debug.LineVertex) {
	o.count = int32(len(verts))
	if len(verts) == 0 {
		return
	}
	data := debug.Flatten(verts)
	size := len(data) * 4

	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	if size > o.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, unsafe.Pointer(&data[0]), gl.DYNAMIC_DRAW)
		o.capacity = size
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, unsafe.Pointer(&data[0]))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Render draws the lines with the given model-view-projection matrix.
func (o *OverlayRenderer) Render(mvp mgl32.Mat4) {
	if o.count == 0 {
		return
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.UseProgram(o.program)
	shader.SetMat4(o.locs, "uMVP", mvp)
	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.LINES, 0, o.count)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// Destroy releases GPU resources.
func (o *OverlayRenderer) Destroy() {
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
	}
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
	}
	if o.program != 0 {
		gl.DeleteProgram(o.program)
	}
}
