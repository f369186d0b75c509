package region

import (
	"github.com/google/uuid"

	"github.com/Faultbox/worldedit/pkg/math"
)

// BoundaryHandle is the renderer-side object backing one live region.
type BoundaryHandle interface {
	// SetPoints replaces the outline with world-space points.
	SetPoints(points []math.Vec3)
	SetHighlight(on bool)
	Destroy()
}

// BoundaryFactory creates renderer handles for regions entering the scene.
type BoundaryFactory interface {
	CreateBoundary(id uuid.UUID, name string) BoundaryHandle
}

// SceneListener is told when regions enter and leave the live scene.
type SceneListener interface {
	RegionEntered(r *Region)
	RegionLeft(r *Region)
}

// Scene bundles what a region needs while it is live.
type Scene struct {
	Boundaries BoundaryFactory
	Listener   SceneListener
}

func (sc *Scene) entered(r *Region) {
	if sc.Listener != nil {
		sc.Listener.RegionEntered(r)
	}
}

func (sc *Scene) left(r *Region) {
	if sc.Listener != nil {
		sc.Listener.RegionLeft(r)
	}
}

// SceneNode is a child that is instantiated in the scene with its parent.
type SceneNode interface {
	EnterScene(sc *Scene) error
	LeaveScene()
	Live() bool
}

// TreeNode is one node of an outline tree view.
type TreeNode interface {
	SetLabel(label string)
	// AddChild appends a child node and returns it.
	AddChild(label string, n Node) TreeNode
	// Remove detaches the node and its descendants from the tree.
	Remove()
}

// TreeAttachable is a child that manages its own subtree.
type TreeAttachable interface {
	AttachTree(parent TreeNode)
	DetachTree()
}

// Container owns child nodes.
type Container interface {
	Children() []Node
	AddChild(n Node) error
	RemoveChild(n Node) bool
}

// Capability is a set of editor capabilities a node supports.
type Capability uint16

const (
	CapContainer Capability = 1 << iota
	CapInsertable
	CapCutCopy
	CapDrag
	CapDelete
	CapCameraLock
)

// Has reports whether all bits of c2 are set.
func (c Capability) Has(c2 Capability) bool {
	return c&c2 == c2
}

// Capable nodes report what the editor may do with them.
type Capable interface {
	Capabilities() Capability
}
