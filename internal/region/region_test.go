package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/worldedit/pkg/math"
)

func TestRegionPointIn(t *testing.T) {
	sc, _, _ := newTestScene()
	r := New("Square", 0, square(0, 0, 10)...)

	assert.False(t, r.PointIn(math.Vec3{X: 5, Z: 5}), "not live yet")

	require.NoError(t, r.EnterScene(sc))
	assert.True(t, r.PointIn(math.Vec3{X: 5, Y: 300, Z: 5}), "height is ignored")
	assert.False(t, r.PointIn(math.Vec3{X: 15, Z: 15}))
}

func TestRegionPointInFewerThanThreePoints(t *testing.T) {
	sc, _, _ := newTestScene()
	r := New("Line", 0, math.Vec2{X: 0, Y: 0}, math.Vec2{X: 10, Y: 10})
	require.NoError(t, r.EnterScene(sc))

	for _, p := range []math.Vec3{{}, {X: 5, Z: 5}, {X: 1e6, Z: -1e6}} {
		assert.False(t, r.PointIn(p))
	}
}

func TestRegionPointInUsesOrigin(t *testing.T) {
	sc, f, _ := newTestScene()
	r := New("Offset", 0, square(0, 0, 10)...)
	r.SetOrigin(math.Vec3{X: 100, Y: 2, Z: 100})
	require.NoError(t, r.EnterScene(sc))

	assert.True(t, r.PointIn(math.Vec3{X: 105, Z: 105}))
	assert.False(t, r.PointIn(math.Vec3{X: 5, Z: 5}))
	assert.Equal(t, math.Vec3{X: 110, Y: 2, Z: 100}, f.created[0].points[1])
}

func TestRegionEnterSceneIdempotent(t *testing.T) {
	sc, f, idx := newTestScene()
	r := New("Swamp", 1, square(0, 0, 10)...)

	require.NoError(t, r.EnterScene(sc))
	require.NoError(t, r.EnterScene(sc))

	assert.Len(t, f.created, 1, "one renderer handle")
	assert.Equal(t, 2, f.created[0].pushes, "re-entry refreshes points")
	assert.True(t, idx.Contains(r))
	assert.Equal(t, 1, idx.Len())
}

func TestRegionLeaveSceneNeverEntered(t *testing.T) {
	r := New("Ghost", 0, square(0, 0, 1)...)
	assert.NotPanics(t, r.LeaveScene)
	assert.False(t, r.Live())
}

func TestRegionLeaveScene(t *testing.T) {
	sc, f, idx := newTestScene()
	r := New("Swamp", 1, square(0, 0, 10)...)
	require.NoError(t, r.EnterScene(sc))
	require.NoError(t, r.SetHighlight(true))

	r.LeaveScene()

	h := f.created[0]
	assert.False(t, h.highlight, "highlight cleared before release")
	assert.True(t, h.destroyed)
	assert.False(t, r.Live())
	assert.False(t, r.Highlighted())
	assert.False(t, idx.Contains(r))

	r.LeaveScene()
	assert.Equal(t, 0, idx.Len())
}

func TestRegionEnterSceneNilScene(t *testing.T) {
	r := New("Orphan", 0)
	assert.ErrorIs(t, r.EnterScene(nil), ErrNilScene)
	assert.ErrorIs(t, r.EnterScene(&Scene{}), ErrNilScene)
}

func TestRegionRendererOpsRequireLive(t *testing.T) {
	r := New("Cold", 0, square(0, 0, 1)...)
	assert.ErrorIs(t, r.SetHighlight(true), ErrNotLive)
	assert.ErrorIs(t, r.PushPoints(), ErrNotLive)
}

func TestRegionPointEditsPushWhileLive(t *testing.T) {
	sc, f, _ := newTestScene()
	r := New("Edit", 0, square(0, 0, 10)...)
	require.NoError(t, r.EnterScene(sc))
	h := f.created[0]
	pushes := h.pushes

	r.AddPoint(math.Vec2{X: -5, Y: 5})
	assert.Len(t, h.points, 5)
	assert.True(t, r.MovePoint(4, math.Vec2{X: -6, Y: 5}))
	assert.Equal(t, float32(-6), h.points[4].X)
	assert.True(t, r.RemovePoint(4))
	assert.Len(t, h.points, 4)
	assert.False(t, r.RemovePoint(10))
	assert.Equal(t, pushes+3, h.pushes)
}

func TestRegionAdoptsFirstPointSet(t *testing.T) {
	r := NewEmpty("Decoded", 0)
	require.NotNil(t, r.Polygon())
	assert.Equal(t, 0, r.Polygon().Len())

	first := NewPointSet(square(0, 0, 2)...)
	second := NewPointSet(square(5, 5, 2)...)
	require.NoError(t, r.AddChild(first))
	require.NoError(t, r.AddChild(second))

	assert.Same(t, first.Polygon, r.Polygon())

	assert.True(t, r.RemoveChild(first))
	assert.Same(t, second.Polygon, r.Polygon(), "next point set is adopted")
}

func TestRegionAddPointCreatesPointSet(t *testing.T) {
	r := NewEmpty("Lazy", 0)
	r.AddPoint(math.Vec2{X: 1, Y: 1})
	assert.Len(t, r.ChildrenOf(KindPoints), 1)
	assert.Equal(t, 1, r.Polygon().Len())
}

func TestRegionAddChildWhileLive(t *testing.T) {
	sc, f, idx := newTestScene()
	parent := New("Parent", 5, square(0, 0, 100)...)
	require.NoError(t, parent.EnterScene(sc))

	child := New("Child", 1, square(10, 10, 10)...)
	require.NoError(t, parent.AddChild(child))

	assert.True(t, child.Live(), "child instantiated immediately")
	assert.Len(t, f.created, 2)
	assert.True(t, idx.Contains(child))
	assert.Same(t, Container(parent), child.Parent())

	assert.True(t, parent.RemoveChild(child))
	assert.False(t, child.Live(), "removal leaves the scene first")
	assert.False(t, idx.Contains(child))
	assert.Nil(t, child.Parent())
	assert.False(t, parent.RemoveChild(child))
}

func TestRegionAddChildRejectsSelfAndNil(t *testing.T) {
	r := New("Self", 0)
	assert.ErrorIs(t, r.AddChild(r), ErrSelfChild)
	assert.ErrorIs(t, r.AddChild(nil), ErrNilChild)
}

func TestRegionAddChildRejectsAncestor(t *testing.T) {
	a := New("A", 0, square(0, 0, 10)...)
	b := New("B", 0, square(0, 0, 5)...)
	c := New("C", 0, square(0, 0, 1)...)
	require.NoError(t, a.AddChild(b))
	require.NoError(t, b.AddChild(c))

	assert.ErrorIs(t, b.AddChild(a), ErrCycle)
	assert.ErrorIs(t, c.AddChild(a), ErrCycle)
	assert.Nil(t, a.Parent())
	assert.Same(t, Container(a), b.Parent())
	assert.Same(t, Container(b), c.Parent())
	assert.Len(t, b.ChildrenOf(KindRegion), 1)

	n := 0
	a.Walk(func(*Region) bool { n++; return true })
	assert.Equal(t, 3, n)

	// Moving a descendant up the tree is still allowed.
	require.NoError(t, a.AddChild(c))
	assert.Same(t, Container(a), c.Parent())
	assert.Empty(t, b.ChildrenOf(KindRegion))
}

func TestRegionAddChildRollsBackFailedEnter(t *testing.T) {
	sc, f, idx := newTestScene()
	parent := New("Parent", 0, square(0, 0, 100)...)
	require.NoError(t, parent.EnterScene(sc))
	before := len(parent.Children())

	assert.ErrorIs(t, parent.AddChild(&refusingNode{}), errRefused)
	assert.Len(t, parent.Children(), before)

	sub := New("Sub", 1, square(10, 10, 10)...)
	require.NoError(t, sub.AddChild(&refusingNode{}))
	assert.ErrorIs(t, parent.AddChild(sub), errRefused)
	assert.Len(t, parent.Children(), before)
	assert.Nil(t, sub.Parent())
	assert.False(t, sub.Live())
	assert.False(t, idx.Contains(sub))
	assert.Equal(t, 1, f.live(), "the failed region's handle is destroyed")
	assert.Equal(t, 1, idx.Len())
}

func TestRegionLeaveSceneRecurses(t *testing.T) {
	sc, f, idx := newTestScene()
	parent := New("Parent", 5, square(0, 0, 100)...)
	child := New("Child", 1, square(10, 10, 10)...)
	require.NoError(t, parent.AddChild(child))
	require.NoError(t, parent.EnterScene(sc))
	assert.Equal(t, 2, idx.Len())

	parent.LeaveScene()
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, f.live())
}

func TestRegionTreeHooks(t *testing.T) {
	root := &fakeTree{}
	r := New("Swamp", 0, square(0, 0, 10)...)
	require.NoError(t, r.AddChild(&Fog{Near: 1, Far: 2}))
	r.AttachTree(root)

	require.NoError(t, r.AddChild(&Forest{Name: "Pines"}))
	sub := New("Pond", 0)
	require.NoError(t, r.AddChild(sub))
	assert.Equal(t, "Swamp\n  Points\n  Fog\n  Forest: Pines\n  Pond\n    Points\n", root.dump())

	r.SetName("Bog")
	assert.Equal(t, "Bog", root.children[0].label)

	assert.True(t, r.RemoveChild(sub))
	assert.Equal(t, "Bog\n  Points\n  Fog\n  Forest: Pines\n", root.dump())

	r.DetachTree()
	assert.Empty(t, root.children)
	assert.Nil(t, r.TreeNode())
}

func TestRegionDelete(t *testing.T) {
	sc, f, idx := newTestScene()
	root := &fakeTree{}
	w := NewWorld("test")
	r := New("Doomed", 0, square(0, 0, 10)...)
	require.NoError(t, w.AddRegion(r))
	require.NoError(t, w.EnterScene(sc))
	r.AttachTree(root)

	r.Delete()

	assert.False(t, r.Live())
	assert.True(t, f.created[0].destroyed)
	assert.False(t, idx.Contains(r))
	assert.Empty(t, root.children)
	assert.Empty(t, w.Regions())
	assert.Nil(t, r.Parent())
}

func TestRegionIdentityIsNotName(t *testing.T) {
	a := New("Twin", 0)
	b := New("Twin", 0)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Less(t, a.Seq(), b.Seq())

	sc, _, idx := newTestScene()
	require.NoError(t, a.EnterScene(sc))
	require.NoError(t, b.EnterScene(sc))
	a.LeaveScene()
	assert.True(t, idx.Contains(b), "same name must not evict the other region")
}

func TestRegionProperties(t *testing.T) {
	r := New("Meta", 0)
	r.SetProperty("music", "swamp.ogg")
	r.SetProperty("ambience", "frogs")
	r.SetProperty("music", "bog.ogg")

	v, ok := r.Property("music")
	assert.True(t, ok)
	assert.Equal(t, "bog.ogg", v)
	assert.Equal(t, []Property{{"music", "bog.ogg"}, {"ambience", "frogs"}}, r.Properties())
}

func TestRegionClone(t *testing.T) {
	r := New("Original", 7, square(0, 0, 10)...)
	r.SetProperty("k", "v")
	require.NoError(t, r.AddChild(&Forest{Name: "Pines", Meshes: []string{"pine.mesh"}}))
	require.NoError(t, r.AddChild(New("Inner", 3, square(1, 1, 2)...)))

	c := r.Clone()
	assert.NotEqual(t, r.ID(), c.ID())
	assert.Equal(t, "Original", c.Name())
	assert.Equal(t, 7, c.Priority())
	assert.Len(t, c.Children(), 3)
	assert.NotSame(t, r.Polygon(), c.Polygon())
	assert.Equal(t, r.Polygon().Points(), c.Polygon().Points())

	c.FirstChild(KindForest).(*Forest).Meshes[0] = "oak.mesh"
	assert.Equal(t, "pine.mesh", r.FirstChild(KindForest).(*Forest).Meshes[0])
	assert.NotEqual(t, r.FirstChild(KindRegion).(*Region).ID(), c.FirstChild(KindRegion).(*Region).ID())
}

func TestRegionCapabilities(t *testing.T) {
	caps := New("Caps", 0).Capabilities()
	assert.True(t, caps.Has(CapContainer|CapDelete|CapCutCopy))
	assert.True(t, caps.Has(CapCameraLock))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Fog", Label(&Fog{}))
	assert.Equal(t, "Sound: Frogs", Label(&Sound{Name: "Frogs"}))
	assert.Equal(t, "Swamp", Label(New("Swamp", 0)))
	assert.Equal(t, "Boundary", KindRegion.String())
}
