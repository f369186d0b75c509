package overlay

import (
	gomath "math"

	"github.com/google/uuid"

	"github.com/Faultbox/worldedit/internal/engine/scene"
)

// Vertex is one line endpoint: position then color.
type Vertex struct {
	X, Y, Z float32
	R, G, B float32
}

// Outline colors.
var (
	ColorBoundary = [3]float32{0.9, 0.8, 0.2}
	ColorActive   = [3]float32{0.3, 0.9, 0.4}
	ColorSelected = [3]float32{1.0, 0.3, 0.3}
)

// outlineLift raises outlines above the ground grid to avoid z-fighting.
const outlineLift = 0.05

// BoundaryLines returns line-list vertices for the closed outline of every
// boundary. Highlighted boundaries take precedence over active ones.
// Boundaries with fewer than two points produce nothing.
func BoundaryLines(bs []*scene.Boundary, active map[uuid.UUID]bool) []Vertex {
	var out []Vertex
	for _, b := range bs {
		n := len(b.Points)
		if n < 2 {
			continue
		}
		color := ColorBoundary
		switch {
		case b.Highlighted:
			color = ColorSelected
		case active[b.ID]:
			color = ColorActive
		}

		segments := n
		if n == 2 {
			segments = 1
		}
		for i := 0; i < segments; i++ {
			p, q := b.Points[i], b.Points[(i+1)%n]
			out = append(out,
				Vertex{p.X, p.Y + outlineLift, p.Z, color[0], color[1], color[2]},
				Vertex{q.X, q.Y + outlineLift, q.Z, color[0], color[1], color[2]},
			)
		}
	}
	return out
}

// GridLines returns a square ground grid of the given half size centered on
// (cx, cz), snapped to step so it does not swim while the camera pans.
func GridLines(cx, cz, half, step float32, color [3]float32) []Vertex {
	if step <= 0 || half <= 0 {
		return nil
	}
	snap := func(v float32) float32 { return float32(gomath.Floor(float64(v/step))) * step }
	minX, maxX := snap(cx-half), snap(cx+half)+step
	minZ, maxZ := snap(cz-half), snap(cz+half)+step

	var out []Vertex
	for x := minX; x <= maxX; x += step {
		out = append(out,
			Vertex{x, 0, minZ, color[0], color[1], color[2]},
			Vertex{x, 0, maxZ, color[0], color[1], color[2]},
		)
	}
	for z := minZ; z <= maxZ; z += step {
		out = append(out,
			Vertex{minX, 0, z, color[0], color[1], color[2]},
			Vertex{maxX, 0, z, color[0], color[1], color[2]},
		)
	}
	return out
}
