// Package math provides the small vector types shared by the region engine and the viewer.
// Ground-plane geometry uses Vec2 with Y holding the world Z axis.
package math

import "math"

// Vec2 is a point or direction on the ground plane (X, Z).
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Normalize returns a unit vector, or the zero vector for a zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

// ToVec3 lifts a ground point to 3D at height y.
func (v Vec2) ToVec3(y float32) Vec3 {
	return Vec3{X: v.X, Y: y, Z: v.Y}
}

// Float64 returns the components widened to float64.
func (v Vec2) Float64() (float64, float64) {
	return float64(v.X), float64(v.Y)
}
