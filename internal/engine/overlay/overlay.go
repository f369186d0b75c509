// Package overlay draws region outlines and a ground grid with OpenGL. It
// is the viewer's region.BoundaryFactory: boundaries are kept in a
// scene.Boundaries set and drawn each frame.
package overlay

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/worldedit/internal/engine/scene"
	"github.com/Faultbox/worldedit/internal/engine/shader"
	"github.com/Faultbox/worldedit/internal/region"
	"github.com/Faultbox/worldedit/pkg/math"
)

const vertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aColor;

uniform mat4 uViewProj;
uniform vec3 uEye;

out vec3 vColor;
out float vDistance;

void main() {
    vColor = aColor;
    vDistance = distance(aPosition, uEye);
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

const fragmentShader = `#version 410 core
in vec3 vColor;
in float vDistance;

uniform int uFogEnabled;
uniform vec3 uFogColor;
uniform float uFogNear;
uniform float uFogFar;

out vec4 FragColor;

void main() {
    vec3 color = vColor;
    if (uFogEnabled != 0 && uFogFar > uFogNear) {
        float f = clamp((vDistance - uFogNear) / (uFogFar - uFogNear), 0.0, 1.0);
        color = mix(color, uFogColor, f);
    }
    FragColor = vec4(color, 1.0);
}
`

// GridStep is the spacing of ground grid lines in world units.
const GridStep = 10

// Overlay draws live boundaries. It must be created and used on the GL thread.
type Overlay struct {
	*scene.Boundaries

	program  *shader.Program
	vao, vbo uint32
	capacity int
	vertices []Vertex
}

// New creates the overlay's GL resources. A GL context must be current.
func New() (*Overlay, error) {
	prog, err := shader.New(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}

	o := &Overlay{Boundaries: scene.NewBoundaries(), program: prog}

	gl.GenVertexArrays(1, &o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)

	stride := int32(unsafe.Sizeof(Vertex{}))
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return o, nil
}

// Draw renders the ground grid and every live boundary. Boundaries of regions
// in active are drawn in the active color; fog follows env.
func (o *Overlay) Draw(viewProj mgl32.Mat4, eye math.Vec3, env *scene.Environment, active []*region.Region) {
	activeIDs := make(map[uuid.UUID]bool, len(active))
	for _, r := range active {
		activeIDs[r.ID()] = true
	}

	o.vertices = o.vertices[:0]
	gridColor := [3]float32{env.AmbientColor[0] * 0.8, env.AmbientColor[1] * 0.8, env.AmbientColor[2] * 0.8}
	o.vertices = append(o.vertices, GridLines(eye.X, eye.Z, eye.Y*3, GridStep, gridColor)...)
	o.vertices = append(o.vertices, BoundaryLines(o.Live(), activeIDs)...)
	if len(o.vertices) == 0 {
		return
	}

	o.upload()

	o.program.Use()
	gl.UniformMatrix4fv(o.program.Uniform("uViewProj"), 1, false, &viewProj[0])
	gl.Uniform3f(o.program.Uniform("uEye"), eye.X, eye.Y, eye.Z)
	fogOn := int32(0)
	if env.FogEnabled {
		fogOn = 1
	}
	gl.Uniform1i(o.program.Uniform("uFogEnabled"), fogOn)
	gl.Uniform3f(o.program.Uniform("uFogColor"), env.FogColor[0], env.FogColor[1], env.FogColor[2])
	gl.Uniform1f(o.program.Uniform("uFogNear"), env.FogNear)
	gl.Uniform1f(o.program.Uniform("uFogFar"), env.FogFar)

	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.LINES, 0, int32(len(o.vertices)))
	gl.BindVertexArray(0)
}

func (o *Overlay) upload() {
	size := len(o.vertices) * int(unsafe.Sizeof(Vertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	if len(o.vertices) > o.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(&o.vertices[0]), gl.DYNAMIC_DRAW)
		o.capacity = len(o.vertices)
		return
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(&o.vertices[0]))
}

// Destroy releases the GL resources.
func (o *Overlay) Destroy() {
	gl.DeleteBuffers(1, &o.vbo)
	gl.DeleteVertexArrays(1, &o.vao)
	o.program.Delete()
}
