// Package camera provides the viewer's top-down camera.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/worldedit/pkg/math"
)

// PanCamera hovers above a ground target and looks down at it from the south.
// The target is the point regions are resolved against.
type PanCamera struct {
	Target math.Vec3

	Height float32 // Height above the target
	Back   float32 // Horizontal distance behind the target (towards +Z)
	FOV    float32 // Vertical field of view, degrees

	MinHeight float32
	MaxHeight float32

	// Sensitivity
	ZoomSensitivity float32
}

// NewPanCamera creates a camera with editor defaults.
func NewPanCamera() *PanCamera {
	return &PanCamera{
		Height:          120,
		Back:            60,
		FOV:             60,
		MinHeight:       10,
		MaxHeight:       2000,
		ZoomSensitivity: 0.1,
	}
}

// Eye returns the camera position in world space.
func (c *PanCamera) Eye() math.Vec3 {
	return math.Vec3{X: c.Target.X, Y: c.Target.Y + c.Height, Z: c.Target.Z + c.Back}
}

// ViewMatrix returns the view matrix for this camera.
func (c *PanCamera) ViewMatrix() mgl32.Mat4 {
	eye := c.Eye()
	return mgl32.LookAtV(
		mgl32.Vec3{eye.X, eye.Y, eye.Z},
		mgl32.Vec3{c.Target.X, c.Target.Y, c.Target.Z},
		mgl32.Vec3{0, 1, 0},
	)
}

// ProjectionMatrix returns a perspective projection for the given aspect ratio.
func (c *PanCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	far := (c.Height + c.Back) * 20
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, 1, far)
}

// ViewProjection returns projection * view.
func (c *PanCamera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}

// HandleMovement pans the target over the ground plane. forward moves
// towards -Z, right towards +X. The step is scaled by the zoom level so
// panning feels the same at any height.
func (c *PanCamera) HandleMovement(forward, right, speed, dt float32) {
	step := speed * dt * (c.Height / 120)
	c.Target.X += right * step
	c.Target.Z -= forward * step
}

// HandleZoom changes the height based on scroll wheel delta.
func (c *PanCamera) HandleZoom(delta float32) {
	scale := 1 - delta*c.ZoomSensitivity
	c.Height *= scale
	c.Back *= scale
	if c.Height < c.MinHeight {
		c.Back *= c.MinHeight / c.Height
		c.Height = c.MinHeight
	}
	if c.Height > c.MaxHeight {
		c.Back *= c.MaxHeight / c.Height
		c.Height = c.MaxHeight
	}
}

// FitToBounds centers the target on a ground rectangle and zooms out to show it.
func (c *PanCamera) FitToBounds(minX, minZ, maxX, maxZ float32) {
	c.Target.X = (minX + maxX) / 2
	c.Target.Z = (minZ + maxZ) / 2

	size := maxX - minX
	if maxZ-minZ > size {
		size = maxZ - minZ
	}
	h := size * 0.9
	if h < c.MinHeight {
		h = c.MinHeight
	}
	if h > c.MaxHeight {
		h = c.MaxHeight
	}
	c.Back = h / 2
	c.Height = h
}
