package region

import (
	"fmt"

	"github.com/Faultbox/worldedit/pkg/math"
)

// Kind identifies the type of a region child.
type Kind int

const (
	KindFog Kind = iota + 1
	KindAmbientLight
	KindDirectionalLight
	KindForest
	KindWater
	KindSound
	KindGrass
	KindSpawnGen
	KindMarker
	KindPoints
	KindRegion
)

// String returns the element name used for the kind in world files and tree labels.
func (k Kind) String() string {
	switch k {
	case KindFog:
		return "Fog"
	case KindAmbientLight:
		return "AmbientLight"
	case KindDirectionalLight:
		return "DirectionalLight"
	case KindForest:
		return "Forest"
	case KindWater:
		return "Water"
	case KindSound:
		return "Sound"
	case KindGrass:
		return "Grass"
	case KindSpawnGen:
		return "SpawnGen"
	case KindMarker:
		return "Marker"
	case KindPoints:
		return "Points"
	case KindRegion:
		return "Boundary"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is anything a region can own as a child.
type Node interface {
	Kind() Kind
}

// Color is an RGB color with components in 0-1.
type Color [3]float32

// Fog is a linear fog setting a region wants while it is active.
type Fog struct {
	Color Color
	Near  float32
	Far   float32
}

// AmbientLight is the ambient light color a region wants while it is active.
type AmbientLight struct {
	Color Color
}

// DirectionalLight is the sun/moon light a region wants while it is active.
type DirectionalLight struct {
	Direction math.Vec3
	Diffuse   Color
	Specular  Color
}

// Forest places procedurally scattered trees inside the region.
type Forest struct {
	Name    string
	Density float32
	Seed    int64
	Meshes  []string
}

// Water is a flat water plane clipped to the region.
type Water struct {
	Name     string
	Level    float32
	Material string
}

// Sound is an ambient sound loop audible inside the region.
type Sound struct {
	Name   string
	File   string
	Volume float32
	Range  float32
	Loop   bool
}

// Grass covers the region with a grass layer.
type Grass struct {
	Name    string
	Density float32
	Texture string
}

// SpawnGen spawns creatures from a template inside the region.
type SpawnGen struct {
	Name     string
	Template string
	Count    int
	Interval float32
}

// Marker is a named point of interest.
type Marker struct {
	Name     string
	Type     string
	Position math.Vec3
}

// PointSet provides the polygon for the region that owns it.
type PointSet struct {
	Polygon *Polygon
}

// NewPointSet creates a point set holding the given points.
func NewPointSet(points ...math.Vec2) *PointSet {
	return &PointSet{Polygon: NewPolygon(points...)}
}

func (*Fog) Kind() Kind              { return KindFog }
func (*AmbientLight) Kind() Kind     { return KindAmbientLight }
func (*DirectionalLight) Kind() Kind { return KindDirectionalLight }
func (*Forest) Kind() Kind           { return KindForest }
func (*Water) Kind() Kind            { return KindWater }
func (*Sound) Kind() Kind            { return KindSound }
func (*Grass) Kind() Kind            { return KindGrass }
func (*SpawnGen) Kind() Kind         { return KindSpawnGen }
func (*Marker) Kind() Kind           { return KindMarker }
func (*PointSet) Kind() Kind         { return KindPoints }

// Label returns the tree label for a node, e.g. "Forest: Pines".
func Label(n Node) string {
	var name string
	switch v := n.(type) {
	case *Region:
		return v.Name()
	case *Forest:
		name = v.Name
	case *Water:
		name = v.Name
	case *Sound:
		name = v.Name
	case *Grass:
		name = v.Name
	case *SpawnGen:
		name = v.Name
	case *Marker:
		name = v.Name
	}
	if name == "" {
		return n.Kind().String()
	}
	return n.Kind().String() + ": " + name
}

// cloneNode deep-copies a child. Nested regions get a fresh identity.
func cloneNode(n Node) Node {
	switch v := n.(type) {
	case *Region:
		return v.Clone()
	case *PointSet:
		return &PointSet{Polygon: v.Polygon.clone()}
	case *Forest:
		c := *v
		c.Meshes = append([]string(nil), v.Meshes...)
		return &c
	case *Fog:
		c := *v
		return &c
	case *AmbientLight:
		c := *v
		return &c
	case *DirectionalLight:
		c := *v
		return &c
	case *Water:
		c := *v
		return &c
	case *Sound:
		c := *v
		return &c
	case *Grass:
		c := *v
		return &c
	case *SpawnGen:
		c := *v
		return &c
	case *Marker:
		c := *v
		return &c
	default:
		return n
	}
}
