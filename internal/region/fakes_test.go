package region

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Faultbox/worldedit/pkg/math"
)

type fakeHandle struct {
	id        uuid.UUID
	points    []math.Vec3
	pushes    int
	highlight bool
	destroyed bool
}

func (h *fakeHandle) SetPoints(points []math.Vec3) {
	h.points = points
	h.pushes++
}

func (h *fakeHandle) SetHighlight(on bool) { h.highlight = on }
func (h *fakeHandle) Destroy()             { h.destroyed = true }

type fakeFactory struct {
	created []*fakeHandle
}

func (f *fakeFactory) CreateBoundary(id uuid.UUID, _ string) BoundaryHandle {
	h := &fakeHandle{id: id}
	f.created = append(f.created, h)
	return h
}

func (f *fakeFactory) live() int {
	n := 0
	for _, h := range f.created {
		if !h.destroyed {
			n++
		}
	}
	return n
}

var errRefused = errors.New("refused")

// refusingNode is a scene child whose instantiation always fails.
type refusingNode struct{}

func (*refusingNode) Kind() Kind              { return KindMarker }
func (*refusingNode) EnterScene(*Scene) error { return errRefused }
func (*refusingNode) LeaveScene()             {}
func (*refusingNode) Live() bool              { return false }

type fakeApplier struct {
	calls       []string
	fog         *Fog
	ambient     Color
	directional *DirectionalLight
}

func (a *fakeApplier) SetFog(color Color, near, far float32) {
	a.fog = &Fog{Color: color, Near: near, Far: far}
	a.calls = append(a.calls, "SetFog")
}

func (a *fakeApplier) ClearFog() {
	a.fog = nil
	a.calls = append(a.calls, "ClearFog")
}

func (a *fakeApplier) SetAmbientLight(color Color) {
	a.ambient = color
	a.calls = append(a.calls, "SetAmbientLight")
}

func (a *fakeApplier) SetDirectionalLight(direction math.Vec3, diffuse, specular Color) {
	a.directional = &DirectionalLight{Direction: direction, Diffuse: diffuse, Specular: specular}
	a.calls = append(a.calls, "SetDirectionalLight")
}

func (a *fakeApplier) ClearDirectionalLight() {
	a.directional = nil
	a.calls = append(a.calls, "ClearDirectionalLight")
}

type fakeTree struct {
	label    string
	node     Node
	parent   *fakeTree
	children []*fakeTree
}

func (t *fakeTree) SetLabel(label string) { t.label = label }

func (t *fakeTree) AddChild(label string, n Node) TreeNode {
	c := &fakeTree{label: label, node: n, parent: t}
	t.children = append(t.children, c)
	return c
}

func (t *fakeTree) Remove() {
	if t.parent == nil {
		return
	}
	for i, c := range t.parent.children {
		if c == t {
			t.parent.children = append(t.parent.children[:i], t.parent.children[i+1:]...)
			break
		}
	}
	t.parent = nil
}

func (t *fakeTree) dump() string {
	var b strings.Builder
	var walk func(n *fakeTree, depth int)
	walk = func(n *fakeTree, depth int) {
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", depth), n.label)
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	for _, c := range t.children {
		walk(c, 0)
	}
	return b.String()
}

func square(minX, minZ, size float32) []math.Vec2 {
	return []math.Vec2{
		{X: minX, Y: minZ},
		{X: minX + size, Y: minZ},
		{X: minX + size, Y: minZ + size},
		{X: minX, Y: minZ + size},
	}
}

func newTestScene() (*Scene, *fakeFactory, *Index) {
	f := &fakeFactory{}
	idx := NewIndex(nil)
	return &Scene{Boundaries: f, Listener: idx}, f, idx
}
