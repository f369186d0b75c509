package worldfile

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/worldedit/internal/region"
	"github.com/Faultbox/worldedit/pkg/math"
)

// colorAttr is an RGB color stored as one "r g b" attribute.
type colorAttr region.Color

func (c colorAttr) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	parts := make([]string, 3)
	for i, v := range c {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	return xml.Attr{Name: name, Value: strings.Join(parts, " ")}, nil
}

func (c *colorAttr) UnmarshalXMLAttr(attr xml.Attr) error {
	fields := strings.Fields(attr.Value)
	if len(fields) != 3 {
		return fmt.Errorf("%s: want 3 components, got %q", attr.Name.Local, attr.Value)
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", attr.Name.Local, err)
		}
		c[i] = float32(v)
	}
	return nil
}

type vec3Element struct {
	X float32 `xml:"X,attr"`
	Y float32 `xml:"Y,attr"`
	Z float32 `xml:"Z,attr"`
}

func (v vec3Element) vec() math.Vec3 { return math.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func newVec3Element(v math.Vec3) vec3Element { return vec3Element{X: v.X, Y: v.Y, Z: v.Z} }

type propertyElement struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:"Value,attr"`
}

type propertiesElement struct {
	Items []propertyElement `xml:"Property"`
}

type pointElement struct {
	X float32 `xml:"X,attr"`
	Z float32 `xml:"Z,attr"`
}

type pointsElement struct {
	Points []pointElement `xml:"Point"`
}

type fogElement struct {
	Color colorAttr `xml:"Color,attr"`
	Near  float32   `xml:"Near,attr"`
	Far   float32   `xml:"Far,attr"`
}

type ambientElement struct {
	Color colorAttr `xml:"Color,attr"`
}

type directionalElement struct {
	Direction vec3Element `xml:"Direction"`
	Diffuse   colorAttr   `xml:"Diffuse,attr"`
	Specular  colorAttr   `xml:"Specular,attr"`
}

type forestElement struct {
	Name    string   `xml:"Name,attr,omitempty"`
	Density float32  `xml:"Density,attr"`
	Seed    int64    `xml:"Seed,attr"`
	Meshes  []string `xml:"Mesh"`
}

type waterElement struct {
	Name     string  `xml:"Name,attr,omitempty"`
	Level    float32 `xml:"Level,attr"`
	Material string  `xml:"Material,attr,omitempty"`
}

type soundElement struct {
	Name   string  `xml:"Name,attr,omitempty"`
	File   string  `xml:"File,attr"`
	Volume float32 `xml:"Volume,attr"`
	Range  float32 `xml:"Range,attr"`
	Loop   bool    `xml:"Loop,attr"`
}

type grassElement struct {
	Name    string  `xml:"Name,attr,omitempty"`
	Density float32 `xml:"Density,attr"`
	Texture string  `xml:"Texture,attr,omitempty"`
}

type spawnGenElement struct {
	Name     string  `xml:"Name,attr,omitempty"`
	Template string  `xml:"Template,attr"`
	Count    int     `xml:"Count,attr"`
	Interval float32 `xml:"Interval,attr"`
}

type markerElement struct {
	Name     string      `xml:"Name,attr,omitempty"`
	Type     string      `xml:"Type,attr,omitempty"`
	Position vec3Element `xml:"Position"`
}

// attachmentElement converts a non-region child to its XML form.
func attachmentElement(n region.Node) (any, bool) {
	switch v := n.(type) {
	case *region.Fog:
		return fogElement{Color: colorAttr(v.Color), Near: v.Near, Far: v.Far}, true
	case *region.AmbientLight:
		return ambientElement{Color: colorAttr(v.Color)}, true
	case *region.DirectionalLight:
		return directionalElement{Direction: newVec3Element(v.Direction), Diffuse: colorAttr(v.Diffuse), Specular: colorAttr(v.Specular)}, true
	case *region.Forest:
		return forestElement{Name: v.Name, Density: v.Density, Seed: v.Seed, Meshes: v.Meshes}, true
	case *region.Water:
		return waterElement{Name: v.Name, Level: v.Level, Material: v.Material}, true
	case *region.Sound:
		return soundElement{Name: v.Name, File: v.File, Volume: v.Volume, Range: v.Range, Loop: v.Loop}, true
	case *region.Grass:
		return grassElement{Name: v.Name, Density: v.Density, Texture: v.Texture}, true
	case *region.SpawnGen:
		return spawnGenElement{Name: v.Name, Template: v.Template, Count: v.Count, Interval: v.Interval}, true
	case *region.Marker:
		return markerElement{Name: v.Name, Type: v.Type, Position: newVec3Element(v.Position)}, true
	case *region.PointSet:
		var pe pointsElement
		if v.Polygon != nil {
			for _, p := range v.Polygon.Points() {
				pe.Points = append(pe.Points, pointElement{X: p.X, Z: p.Y})
			}
		}
		return pe, true
	}
	return nil, false
}

// decodeAttachment decodes one child element of a boundary. ok is false for
// element names that are not attachments.
func decodeAttachment(d *xml.Decoder, start *xml.StartElement) (n region.Node, ok bool, err error) {
	switch start.Name.Local {
	case region.KindFog.String():
		var e fogElement
		err = d.DecodeElement(&e, start)
		n = &region.Fog{Color: region.Color(e.Color), Near: e.Near, Far: e.Far}
	case region.KindAmbientLight.String():
		var e ambientElement
		err = d.DecodeElement(&e, start)
		n = &region.AmbientLight{Color: region.Color(e.Color)}
	case region.KindDirectionalLight.String():
		var e directionalElement
		err = d.DecodeElement(&e, start)
		n = &region.DirectionalLight{Direction: e.Direction.vec(), Diffuse: region.Color(e.Diffuse), Specular: region.Color(e.Specular)}
	case region.KindForest.String():
		var e forestElement
		err = d.DecodeElement(&e, start)
		n = &region.Forest{Name: e.Name, Density: e.Density, Seed: e.Seed, Meshes: e.Meshes}
	case region.KindWater.String():
		var e waterElement
		err = d.DecodeElement(&e, start)
		n = &region.Water{Name: e.Name, Level: e.Level, Material: e.Material}
	case region.KindSound.String():
		var e soundElement
		err = d.DecodeElement(&e, start)
		n = &region.Sound{Name: e.Name, File: e.File, Volume: e.Volume, Range: e.Range, Loop: e.Loop}
	case region.KindGrass.String():
		var e grassElement
		err = d.DecodeElement(&e, start)
		n = &region.Grass{Name: e.Name, Density: e.Density, Texture: e.Texture}
	case region.KindSpawnGen.String():
		var e spawnGenElement
		err = d.DecodeElement(&e, start)
		n = &region.SpawnGen{Name: e.Name, Template: e.Template, Count: e.Count, Interval: e.Interval}
	case region.KindMarker.String():
		var e markerElement
		err = d.DecodeElement(&e, start)
		n = &region.Marker{Name: e.Name, Type: e.Type, Position: e.Position.vec()}
	case region.KindPoints.String():
		var e pointsElement
		err = d.DecodeElement(&e, start)
		pts := make([]math.Vec2, len(e.Points))
		for i, p := range e.Points {
			pts[i] = math.Vec2{X: p.X, Y: p.Z}
		}
		n = region.NewPointSet(pts...)
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, true, fmt.Errorf("decoding %s: %w", start.Name.Local, err)
	}
	return n, true, nil
}
