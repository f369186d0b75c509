// Package region implements named, prioritized polygonal regions that drive the
// environment (fog, ambient and directional light) around the camera.
package region

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Faultbox/worldedit/pkg/math"
)

// Region errors.
var (
	ErrNotLive   = errors.New("region is not in the scene")
	ErrNilScene  = errors.New("scene has no boundary factory")
	ErrNilChild  = errors.New("nil child")
	ErrSelfChild = errors.New("region cannot contain itself")
	ErrCycle     = errors.New("region cannot contain one of its ancestors")
	ErrNotRegion = errors.New("world children must be regions")
)

var regionSeq atomic.Uint64

// Property is one name/value metadata pair.
type Property struct {
	Name  string
	Value string
}

// Region is a named, prioritized area of the world. Lower priority values take
// precedence where regions overlap.
type Region struct {
	id       uuid.UUID
	seq      uint64
	name     string
	priority int
	origin   math.Vec3

	children   []Node
	properties []Property

	// points is the adopted points provider; empty is used until one is adopted.
	points *PointSet
	empty  *Polygon

	parent Container

	// Live state.
	scene       *Scene
	handle      BoundaryHandle
	highlighted bool

	// Tree state.
	treeNode   TreeNode
	childNodes map[Node]TreeNode
}

// New creates a region with its own point set holding points.
func New(name string, priority int, points ...math.Vec2) *Region {
	r := newRegion(name, priority)
	_ = r.AddChild(NewPointSet(points...))
	return r
}

// NewEmpty creates a region without a points provider. The first PointSet
// added becomes its polygon. Decoders use this.
func NewEmpty(name string, priority int) *Region {
	return newRegion(name, priority)
}

func newRegion(name string, priority int) *Region {
	return &Region{
		id:       uuid.New(),
		seq:      regionSeq.Add(1),
		name:     name,
		priority: priority,
		empty:    NewPolygon(),
	}
}

// Kind implements Node.
func (*Region) Kind() Kind { return KindRegion }

// ID returns the stable identity of the region.
func (r *Region) ID() uuid.UUID { return r.id }

// Seq returns the creation sequence number, used to break priority ties.
func (r *Region) Seq() uint64 { return r.seq }

// Name returns the display name.
func (r *Region) Name() string { return r.name }

// SetName renames the region and relabels its tree node.
func (r *Region) SetName(name string) {
	r.name = name
	if r.treeNode != nil {
		r.treeNode.SetLabel(name)
	}
}

// Priority returns the priority. Lower values win.
func (r *Region) Priority() int { return r.priority }

// SetPriority changes the priority. Any value is accepted; it applies from the next resolution.
func (r *Region) SetPriority(p int) { r.priority = p }

// Origin returns the world position the polygon is relative to.
func (r *Region) Origin() math.Vec3 { return r.origin }

// SetOrigin moves the region and refreshes its live outline.
func (r *Region) SetOrigin(o math.Vec3) {
	r.origin = o
	if r.Live() {
		r.pushPoints()
	}
}

// Parent returns the owning container, or nil.
func (r *Region) Parent() Container { return r.parent }

// Live reports whether the region is instantiated in the scene.
func (r *Region) Live() bool { return r.handle != nil }

// Highlighted reports the current highlight state.
func (r *Region) Highlighted() bool { return r.highlighted }

// Capabilities implements Capable.
func (r *Region) Capabilities() Capability {
	return CapContainer | CapInsertable | CapCutCopy | CapDrag | CapDelete | CapCameraLock
}

// Precedes reports whether r wins over other: lower priority first, then earlier creation.
func (r *Region) Precedes(other *Region) bool {
	if r.priority != other.priority {
		return r.priority < other.priority
	}
	return r.seq < other.seq
}

// Properties returns a copy of the metadata pairs.
func (r *Region) Properties() []Property {
	return append([]Property(nil), r.properties...)
}

// Property returns the value of the first property with the given name.
func (r *Region) Property(name string) (string, bool) {
	for _, p := range r.properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// SetProperty sets or appends a metadata pair.
func (r *Region) SetProperty(name, value string) {
	for i := range r.properties {
		if r.properties[i].Name == name {
			r.properties[i].Value = value
			return
		}
	}
	r.properties = append(r.properties, Property{Name: name, Value: value})
}

// Polygon returns the region's polygon. It is never nil.
func (r *Region) Polygon() *Polygon {
	if r.points != nil && r.points.Polygon != nil {
		return r.points.Polygon
	}
	return r.empty
}

// Points returns the polygon's points in world space.
func (r *Region) Points() []math.Vec3 {
	local := r.Polygon().Points()
	out := make([]math.Vec3, len(local))
	for i, p := range local {
		out[i] = math.Vec3{X: p.X + r.origin.X, Y: r.origin.Y, Z: p.Y + r.origin.Z}
	}
	return out
}

// AddPoint appends a region-local point and refreshes the live outline.
// A point set is created on demand if the region has none.
func (r *Region) AddPoint(p math.Vec2) int {
	if r.points == nil {
		_ = r.AddChild(NewPointSet())
	}
	i := r.Polygon().AddPoint(p)
	if r.Live() {
		r.pushPoints()
	}
	return i
}

// RemovePoint removes a point and refreshes the live outline.
func (r *Region) RemovePoint(i int) bool {
	if !r.Polygon().RemovePoint(i) {
		return false
	}
	if r.Live() {
		r.pushPoints()
	}
	return true
}

// MovePoint replaces a point and refreshes the live outline.
func (r *Region) MovePoint(i int, p math.Vec2) bool {
	if !r.Polygon().SetPoint(i, p) {
		return false
	}
	if r.Live() {
		r.pushPoints()
	}
	return true
}

// PointIn reports whether the world position p lies inside the region.
// Regions outside the scene or with fewer than three points contain nothing.
func (r *Region) PointIn(p math.Vec3) bool {
	if !r.Live() {
		return false
	}
	poly := r.Polygon()
	if poly.Len() < MinPolygonPoints {
		return false
	}
	// Offsets are taken in float64, as the index builds its bounds, so the
	// broadphase never rejects a point this test accepts.
	x := float64(p.X) - float64(r.origin.X)
	z := float64(p.Z) - float64(r.origin.Z)
	return poly.containsXY(x, z)
}

// Children returns a copy of the child list.
func (r *Region) Children() []Node {
	return append([]Node(nil), r.children...)
}

// ChildrenOf returns the children of one kind in child order.
func (r *Region) ChildrenOf(k Kind) []Node {
	var out []Node
	for _, c := range r.children {
		if c.Kind() == k {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first child of kind k, or nil.
func (r *Region) FirstChild(k Kind) Node {
	for _, c := range r.children {
		if c.Kind() == k {
			return c
		}
	}
	return nil
}

// HasChild reports whether the region owns a child of kind k.
func (r *Region) HasChild(k Kind) bool {
	return r.FirstChild(k) != nil
}

// AddChild appends a child. The first PointSet becomes the region's polygon.
// If the region is live the child enters the scene, and if it is shown in a
// tree the child's node is attached, both before AddChild returns. A child
// that fails to enter the scene is not added; a region moved from another
// parent is then left without one.
func (r *Region) AddChild(n Node) error {
	if n == nil {
		return ErrNilChild
	}
	sub, isRegion := n.(*Region)
	if isRegion {
		if sub == r {
			return ErrSelfChild
		}
		if r.descendsFrom(sub) {
			return fmt.Errorf("adding %q to %q: %w", sub.name, r.name, ErrCycle)
		}
		if sub.parent != nil {
			sub.parent.RemoveChild(sub)
		}
		sub.parent = r
	}

	r.children = append(r.children, n)

	if r.Live() {
		if sn, ok := n.(SceneNode); ok {
			if err := sn.EnterScene(r.scene); err != nil {
				r.children = r.children[:len(r.children)-1]
				if isRegion {
					sub.parent = nil
				}
				return fmt.Errorf("child %s entering scene: %w", Label(n), err)
			}
		}
	}

	if ps, ok := n.(*PointSet); ok && r.points == nil {
		if ps.Polygon == nil {
			ps.Polygon = NewPolygon()
		}
		r.points = ps
	}
	if r.Live() && n == Node(r.points) {
		r.pushPoints()
	}
	if r.treeNode != nil {
		r.attachChildNode(n)
	}
	return nil
}

// RemoveChild detaches a child from the scene and tree, then drops it.
// Returns false if n is not a child.
func (r *Region) RemoveChild(n Node) bool {
	idx := -1
	for i, c := range r.children {
		if c == n {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	if sn, ok := n.(SceneNode); ok && sn.Live() {
		sn.LeaveScene()
	}
	r.detachChildNode(n)

	r.children = append(r.children[:idx], r.children[idx+1:]...)
	if sub, ok := n.(*Region); ok {
		sub.parent = nil
	}
	if ps, ok := n.(*PointSet); ok && ps == r.points {
		r.points = nil
		if next, ok := r.FirstChild(KindPoints).(*PointSet); ok {
			r.points = next
		}
		if r.Live() {
			r.pushPoints()
		}
	}
	return true
}

// EnterScene instantiates the region and its children. Calling it on a live
// region only refreshes the outline and recurses into children.
func (r *Region) EnterScene(sc *Scene) error {
	if r.Live() {
		r.pushPoints()
		return r.enterChildren()
	}
	if sc == nil || sc.Boundaries == nil {
		return ErrNilScene
	}

	r.scene = sc
	r.handle = sc.Boundaries.CreateBoundary(r.id, r.name)
	r.pushPoints()
	if err := r.enterChildren(); err != nil {
		r.abortEnter()
		return err
	}
	sc.entered(r)
	return nil
}

// abortEnter undoes a first EnterScene whose children failed. The region was
// never announced to the listener, so it is not told about leaving either.
func (r *Region) abortEnter() {
	for _, c := range r.children {
		if sn, ok := c.(SceneNode); ok && sn.Live() {
			sn.LeaveScene()
		}
	}
	r.handle.Destroy()
	r.handle = nil
	r.scene = nil
}

// descendsFrom reports whether anc is r's parent, grandparent and so on.
func (r *Region) descendsFrom(anc *Region) bool {
	for c := r.parent; c != nil; {
		p, ok := c.(*Region)
		if !ok {
			return false
		}
		if p == anc {
			return true
		}
		c = p.parent
	}
	return false
}

func (r *Region) enterChildren() error {
	for _, c := range r.children {
		sn, ok := c.(SceneNode)
		if !ok {
			continue
		}
		if err := sn.EnterScene(r.scene); err != nil {
			return fmt.Errorf("child %s entering scene: %w", Label(c), err)
		}
	}
	return nil
}

// LeaveScene removes the region and its children from the scene. It is a
// no-op for a region that is not live.
func (r *Region) LeaveScene() {
	if !r.Live() {
		return
	}
	if r.highlighted {
		r.handle.SetHighlight(false)
		r.highlighted = false
	}
	for _, c := range r.children {
		if sn, ok := c.(SceneNode); ok {
			sn.LeaveScene()
		}
	}

	r.handle.Destroy()
	r.handle = nil
	sc := r.scene
	r.scene = nil
	sc.left(r)
}

// SetHighlight toggles the selection highlight on the renderer handle.
func (r *Region) SetHighlight(on bool) error {
	if !r.Live() {
		return fmt.Errorf("highlighting %q: %w", r.name, ErrNotLive)
	}
	r.handle.SetHighlight(on)
	r.highlighted = on
	return nil
}

// PushPoints sends the current world-space outline to the renderer handle.
func (r *Region) PushPoints() error {
	if !r.Live() {
		return fmt.Errorf("pushing points of %q: %w", r.name, ErrNotLive)
	}
	r.pushPoints()
	return nil
}

func (r *Region) pushPoints() {
	r.handle.SetPoints(r.Points())
}

// AttachTree adds the region under parent and attaches all children.
func (r *Region) AttachTree(parent TreeNode) {
	if r.treeNode != nil {
		return
	}
	r.treeNode = parent.AddChild(r.name, r)
	for _, c := range r.children {
		r.attachChildNode(c)
	}
}

// DetachTree removes the region's node and all child nodes from the tree.
func (r *Region) DetachTree() {
	if r.treeNode == nil {
		return
	}
	for _, c := range r.children {
		r.detachChildNode(c)
	}
	r.treeNode.Remove()
	r.treeNode = nil
}

// TreeNode returns the attached tree node, or nil.
func (r *Region) TreeNode() TreeNode { return r.treeNode }

func (r *Region) attachChildNode(n Node) {
	if ta, ok := n.(TreeAttachable); ok {
		ta.AttachTree(r.treeNode)
		return
	}
	if r.childNodes == nil {
		r.childNodes = make(map[Node]TreeNode)
	}
	r.childNodes[n] = r.treeNode.AddChild(Label(n), n)
}

func (r *Region) detachChildNode(n Node) {
	if ta, ok := n.(TreeAttachable); ok {
		ta.DetachTree()
		return
	}
	if tn, ok := r.childNodes[n]; ok {
		tn.Remove()
		delete(r.childNodes, n)
	}
}

// Delete removes the region from the scene, from the tree, and from its parent.
func (r *Region) Delete() {
	r.LeaveScene()
	r.DetachTree()
	if r.parent != nil {
		r.parent.RemoveChild(r)
	}
}

// Walk calls fn for r and every nested region, depth first.
func (r *Region) Walk(fn func(*Region) bool) bool {
	if !fn(r) {
		return false
	}
	for _, c := range r.children {
		if sub, ok := c.(*Region); ok {
			if !sub.Walk(fn) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy with a new identity that is neither live nor attached.
func (r *Region) Clone() *Region {
	c := newRegion(r.name, r.priority)
	c.origin = r.origin
	c.properties = r.Properties()
	for _, child := range r.children {
		_ = c.AddChild(cloneNode(child))
	}
	return c
}

// String returns a short description for logs.
func (r *Region) String() string {
	return fmt.Sprintf("%s(priority=%d)", r.name, r.priority)
}
