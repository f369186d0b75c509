package region

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/Faultbox/worldedit/pkg/math"
)

// MinPolygonPoints is the number of points a polygon needs before it can contain anything.
const MinPolygonPoints = 3

// Polygon is an ordered ring of ground-plane points in region-local space.
// Points lying exactly on an edge or vertex are inside.
type Polygon struct {
	points  []math.Vec2
	version uint64

	// Derived data, rebuilt lazily after a mutation.
	valid    bool
	ring     orb.Ring
	centroid math.Vec2
	radius   float32
}

// NewPolygon creates a polygon from the given points.
func NewPolygon(points ...math.Vec2) *Polygon {
	p := &Polygon{}
	p.points = append(p.points, points...)
	return p
}

// Len returns the number of points.
func (p *Polygon) Len() int {
	return len(p.points)
}

// Points returns a copy of the point list.
func (p *Polygon) Points() []math.Vec2 {
	out := make([]math.Vec2, len(p.points))
	copy(out, p.points)
	return out
}

// Point returns the point at index i.
func (p *Polygon) Point(i int) (math.Vec2, bool) {
	if i < 0 || i >= len(p.points) {
		return math.Vec2{}, false
	}
	return p.points[i], true
}

// Version changes every time the point list is mutated.
func (p *Polygon) Version() uint64 {
	return p.version
}

// AddPoint appends a point and returns its index. Duplicates are allowed.
func (p *Polygon) AddPoint(pt math.Vec2) int {
	p.points = append(p.points, pt)
	p.invalidate()
	return len(p.points) - 1
}

// RemovePoint removes the point at index i. Returns false if i is out of range.
func (p *Polygon) RemovePoint(i int) bool {
	if i < 0 || i >= len(p.points) {
		return false
	}
	p.points = append(p.points[:i], p.points[i+1:]...)
	p.invalidate()
	return true
}

// SetPoint replaces the point at index i. Returns false if i is out of range.
func (p *Polygon) SetPoint(i int, pt math.Vec2) bool {
	if i < 0 || i >= len(p.points) {
		return false
	}
	p.points[i] = pt
	p.invalidate()
	return true
}

// Contains reports whether pt lies inside the polygon or on its boundary.
// Polygons with fewer than MinPolygonPoints points contain nothing.
func (p *Polygon) Contains(pt math.Vec2) bool {
	x, y := pt.Float64()
	return p.containsXY(x, y)
}

func (p *Polygon) containsXY(x, y float64) bool {
	if len(p.points) < MinPolygonPoints {
		return false
	}
	p.rebuild()
	return planar.RingContains(p.ring, orb.Point{x, y})
}

// Centroid returns the average of the polygon's points.
func (p *Polygon) Centroid() math.Vec2 {
	p.rebuild()
	return p.centroid
}

// BoundingRadius returns the largest distance from the centroid to any point.
func (p *Polygon) BoundingRadius() float32 {
	p.rebuild()
	return p.radius
}

// Bound returns the axis-aligned bounds of the points.
func (p *Polygon) Bound() orb.Bound {
	p.rebuild()
	return p.ring.Bound()
}

func (p *Polygon) invalidate() {
	p.version++
	p.valid = false
}

func (p *Polygon) rebuild() {
	if p.valid {
		return
	}

	p.ring = p.ring[:0]
	var sumX, sumY float32
	for _, pt := range p.points {
		x, y := pt.Float64()
		p.ring = append(p.ring, orb.Point{x, y})
		sumX += pt.X
		sumY += pt.Y
	}

	p.centroid = math.Vec2{}
	p.radius = 0
	if n := len(p.points); n > 0 {
		p.centroid = math.Vec2{X: sumX / float32(n), Y: sumY / float32(n)}
		for _, pt := range p.points {
			if d := pt.Distance(p.centroid); d > p.radius {
				p.radius = d
			}
		}
	}
	p.valid = true
}

func (p *Polygon) clone() *Polygon {
	return NewPolygon(p.points...)
}
