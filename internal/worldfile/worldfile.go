// Package worldfile reads and writes the region state of world files.
//
// A world file is XML. Boundaries carry Name and Priority attributes, an
// optional Position, a Properties block, and their children in order:
//
//	<World Name="fens">
//	  <Fog Color="0.5 0.5 0.5" Near="50" Far="400"/>
//	  <Boundary Name="Swamp" Priority="42">
//	    <Position X="0" Y="0" Z="0"/>
//	    <Properties><Property Name="music" Value="swamp.ogg"/></Properties>
//	    <Points><Point X="0" Z="0"/><Point X="10" Z="0"/><Point X="10" Z="10"/></Points>
//	    <Fog Color="0.3 0.4 0.3" Near="5" Far="80"/>
//	    <Boundary Name="Pond" Priority="1">...</Boundary>
//	  </Boundary>
//	</World>
//
// Points are persisted by the Points child, not by the boundary itself.
package worldfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Faultbox/worldedit/internal/region"
	"github.com/Faultbox/worldedit/pkg/math"
)

// World file errors.
var (
	ErrNotWorld    = errors.New("root element is not World")
	ErrMissingName = errors.New("boundary has no Name attribute")
)

const (
	elemWorld      = "World"
	elemBoundary   = "Boundary"
	elemPosition   = "Position"
	elemProperties = "Properties"
)

// Load reads a world file from disk.
func Load(path string) (*region.World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading world %s: %w", path, err)
	}
	defer f.Close()

	w, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading world %s: %w", path, err)
	}
	return w, nil
}

// Save writes a world file, creating parent directories as needed.
func Save(path string, w *region.World) error {
	var buf bytes.Buffer
	if err := Encode(&buf, w); err != nil {
		return fmt.Errorf("saving world %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("saving world %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("saving world %s: %w", path, err)
	}
	return nil
}

// Decode reads a world from r. Unknown elements are skipped.
func Decode(r io.Reader) (*region.World, error) {
	d := xml.NewDecoder(r)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, ErrNotWorld
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != elemWorld {
			return nil, fmt.Errorf("%w: got %s", ErrNotWorld, start.Name.Local)
		}
		return decodeWorld(d, start)
	}
}

func decodeWorld(d *xml.Decoder, start xml.StartElement) (*region.World, error) {
	w := region.NewWorld(attr(start, "Name"))
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == elemBoundary {
				r, err := decodeBoundary(d, t)
				if err != nil {
					return nil, err
				}
				if err := w.AddRegion(r); err != nil {
					return nil, err
				}
				continue
			}
			n, ok, err := decodeAttachment(d, &t)
			if err != nil {
				return nil, err
			}
			if !ok {
				if err := d.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			switch v := n.(type) {
			case *region.Fog:
				w.Fog = v
			case *region.AmbientLight:
				w.Ambient = v
			case *region.DirectionalLight:
				w.Directional = v
			}
		case xml.EndElement:
			return w, nil
		}
	}
}

func decodeBoundary(d *xml.Decoder, start xml.StartElement) (*region.Region, error) {
	name, ok := lookupAttr(start, "Name")
	if !ok {
		return nil, ErrMissingName
	}
	priority := 0
	if s, ok := lookupAttr(start, "Priority"); ok {
		p, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("boundary %q priority: %w", name, err)
		}
		priority = p
	}

	r := region.NewEmpty(name, priority)
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("boundary %q: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := decodeBoundaryChild(d, t, r); err != nil {
				return nil, fmt.Errorf("boundary %q: %w", name, err)
			}
		case xml.EndElement:
			if r.FirstChild(region.KindPoints) == nil {
				_ = r.AddChild(region.NewPointSet())
			}
			return r, nil
		}
	}
}

func decodeBoundaryChild(d *xml.Decoder, t xml.StartElement, r *region.Region) error {
	switch t.Name.Local {
	case elemBoundary:
		sub, err := decodeBoundary(d, t)
		if err != nil {
			return err
		}
		return r.AddChild(sub)
	case elemPosition:
		var v vec3Element
		if err := d.DecodeElement(&v, &t); err != nil {
			return err
		}
		r.SetOrigin(v.vec())
		return nil
	case elemProperties:
		var props propertiesElement
		if err := d.DecodeElement(&props, &t); err != nil {
			return err
		}
		for _, p := range props.Items {
			r.SetProperty(p.Name, p.Value)
		}
		return nil
	}

	n, ok, err := decodeAttachment(d, &t)
	if err != nil {
		return err
	}
	if !ok {
		return d.Skip()
	}
	return r.AddChild(n)
}

// Encode writes w to out as indented XML.
func Encode(out io.Writer, w *region.World) error {
	e := xml.NewEncoder(out)
	e.Indent("", "  ")

	start := xml.StartElement{Name: xml.Name{Local: elemWorld}}
	if w.Name != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "Name"}, Value: w.Name})
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	var defaults []region.Node
	if w.Fog != nil {
		defaults = append(defaults, w.Fog)
	}
	if w.Ambient != nil {
		defaults = append(defaults, w.Ambient)
	}
	if w.Directional != nil {
		defaults = append(defaults, w.Directional)
	}
	for _, n := range defaults {
		if err := encodeAttachment(e, n); err != nil {
			return err
		}
	}

	for _, r := range w.Regions() {
		if err := encodeBoundary(e, r); err != nil {
			return err
		}
	}

	if err := e.EncodeToken(start.End()); err != nil {
		return err
	}
	if err := e.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(out, "\n")
	return err
}

func encodeBoundary(e *xml.Encoder, r *region.Region) error {
	start := xml.StartElement{
		Name: xml.Name{Local: elemBoundary},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "Name"}, Value: r.Name()},
			{Name: xml.Name{Local: "Priority"}, Value: strconv.Itoa(r.Priority())},
		},
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if o := r.Origin(); o != (math.Vec3{}) {
		if err := e.EncodeElement(newVec3Element(o), xml.StartElement{Name: xml.Name{Local: elemPosition}}); err != nil {
			return err
		}
	}
	if props := r.Properties(); len(props) > 0 {
		var pe propertiesElement
		for _, p := range props {
			pe.Items = append(pe.Items, propertyElement{Name: p.Name, Value: p.Value})
		}
		if err := e.EncodeElement(pe, xml.StartElement{Name: xml.Name{Local: elemProperties}}); err != nil {
			return err
		}
	}

	for _, c := range r.Children() {
		if sub, ok := c.(*region.Region); ok {
			if err := encodeBoundary(e, sub); err != nil {
				return err
			}
			continue
		}
		if err := encodeAttachment(e, c); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func encodeAttachment(e *xml.Encoder, n region.Node) error {
	v, ok := attachmentElement(n)
	if !ok {
		return fmt.Errorf("cannot encode %s", n.Kind())
	}
	return e.EncodeElement(v, xml.StartElement{Name: xml.Name{Local: n.Kind().String()}})
}

func lookupAttr(start xml.StartElement, name string) (string, bool) {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func attr(start xml.StartElement, name string) string {
	v, _ := lookupAttr(start, name)
	return v
}
