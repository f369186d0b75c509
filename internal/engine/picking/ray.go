// Package picking turns cursor positions into points on the ground plane.
package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/worldedit/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, viewProj mgl32.Mat4) Ray {
	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH // Flip Y

	inv := viewProj.Inv()
	near := unproject(inv, mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(inv, mgl32.Vec4{ndcX, ndcY, 1, 1})

	dir := far.Sub(near)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return Ray{Origin: near, Direction: dir}
}

func unproject(inv mgl32.Mat4, ndc mgl32.Vec4) mgl32.Vec3 {
	p := inv.Mul4x1(ndc)
	if p[3] != 0 {
		return p.Vec3().Mul(1 / p[3])
	}
	return p.Vec3()
}

// IntersectPlaneY intersects a ray with a horizontal plane at the given Y level.
// Returns false if the ray is parallel to the plane or points away from it.
func (r Ray) IntersectPlaneY(planeY float32) (math.Vec3, bool) {
	if gomath.Abs(float64(r.Direction[1])) < 0.001 {
		return math.Vec3{}, false
	}

	t := (planeY - r.Origin[1]) / r.Direction[1]
	if t < 0 {
		return math.Vec3{}, false
	}

	return math.Vec3{
		X: r.Origin[0] + t*r.Direction[0],
		Y: planeY,
		Z: r.Origin[2] + t*r.Direction[2],
	}, true
}

// Ground returns the point on the plane Y = planeY under the cursor.
func Ground(screenX, screenY, viewportW, viewportH float32, viewProj mgl32.Mat4, planeY float32) (math.Vec3, bool) {
	if viewportW <= 0 || viewportH <= 0 {
		return math.Vec3{}, false
	}
	return ScreenToRay(screenX, screenY, viewportW, viewportH, viewProj).IntersectPlaneY(planeY)
}
