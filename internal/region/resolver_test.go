package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/worldedit/pkg/math"
)

var (
	fogA = Fog{Color: Color{1, 0, 0}, Near: 10, Far: 100}
	fogB = Fog{Color: Color{0, 0, 1}, Near: 5, Far: 50}
)

func liveRegion(t *testing.T, sc *Scene, name string, priority int, points []math.Vec2, children ...Node) *Region {
	t.Helper()
	r := New(name, priority, points...)
	for _, c := range children {
		require.NoError(t, r.AddChild(c))
	}
	require.NoError(t, r.EnterScene(sc))
	return r
}

func TestResolverPriorityWins(t *testing.T) {
	sc, _, idx := newTestScene()
	a := &fakeApplier{}
	rv := NewResolver(idx, a, Options{})

	r1 := liveRegion(t, sc, "R1", 10, square(0, 0, 10), &Fog{Color: fogA.Color, Near: fogA.Near, Far: fogA.Far})
	r2 := liveRegion(t, sc, "R2", 5, square(0, 0, 10), &Fog{Color: fogB.Color, Near: fogB.Near, Far: fogB.Far})

	f := rv.Update(math.Vec3{X: 5, Z: 5})
	assert.Same(t, r2, f.FogRegion)
	require.NotNil(t, a.fog)
	assert.Equal(t, fogB, *a.fog)

	r1.SetPriority(1)
	f = rv.Update(math.Vec3{X: 5, Z: 5})
	assert.Same(t, r1, f.FogRegion)
	assert.Equal(t, fogA, *a.fog)
}

func TestResolverTieBreakIsCreationOrder(t *testing.T) {
	sc, _, idx := newTestScene()
	rv := NewResolver(idx, &fakeApplier{}, Options{})

	first := liveRegion(t, sc, "First", 3, square(0, 0, 10), &Fog{Near: 1})
	liveRegion(t, sc, "Second", 3, square(0, 0, 10), &Fog{Near: 2})

	for i := 0; i < 5; i++ {
		f := rv.Update(math.Vec3{X: 1, Z: 1})
		assert.Same(t, first, f.FogRegion)
	}
}

func TestResolverFallbacks(t *testing.T) {
	sc, _, idx := newTestScene()
	liveRegion(t, sc, "Empty", 0, square(0, 0, 10))
	liveRegion(t, sc, "Far", 0, square(100, 100, 10), &Fog{Near: 1})

	t.Run("world fog", func(t *testing.T) {
		a := &fakeApplier{}
		global := &Fog{Color: Color{0.5, 0.5, 0.5}, Near: 20, Far: 200}
		rv := NewResolver(idx, a, Options{Defaults: Defaults{Fog: global}})

		f := rv.Update(math.Vec3{X: 5, Z: 5})
		assert.Nil(t, f.FogRegion)
		require.NotNil(t, a.fog)
		assert.Equal(t, *global, *a.fog)
	})

	t.Run("no fog", func(t *testing.T) {
		a := &fakeApplier{}
		rv := NewResolver(idx, a, Options{})

		f := rv.Update(math.Vec3{X: 5, Z: 5})
		assert.Nil(t, f.Fog)
		assert.Nil(t, a.fog)
		assert.Contains(t, a.calls, "ClearFog")
	})

	t.Run("engine ambient and no sun", func(t *testing.T) {
		a := &fakeApplier{}
		rv := NewResolver(idx, a, Options{})

		f := rv.Update(math.Vec3{X: 5, Z: 5})
		assert.Equal(t, DefaultAmbient, a.ambient)
		assert.Equal(t, DefaultAmbient, f.Ambient.Color)
		assert.Nil(t, a.directional)
		assert.Contains(t, a.calls, "ClearDirectionalLight")
	})

	t.Run("world lights", func(t *testing.T) {
		a := &fakeApplier{}
		sun := &DirectionalLight{Direction: math.Vec3{Y: -1}, Diffuse: Color{1, 1, 1}}
		rv := NewResolver(idx, a, Options{Defaults: Defaults{
			Ambient:     &AmbientLight{Color: Color{0.1, 0.2, 0.3}},
			Directional: sun,
		}})

		rv.Update(math.Vec3{X: 5, Z: 5})
		assert.Equal(t, Color{0.1, 0.2, 0.3}, a.ambient)
		require.NotNil(t, a.directional)
		assert.Equal(t, *sun, *a.directional)
	})
}

func TestResolverCategoriesResolveIndependently(t *testing.T) {
	sc, _, idx := newTestScene()
	a := &fakeApplier{}
	rv := NewResolver(idx, a, Options{})

	fogRegion := liveRegion(t, sc, "Mist", 1, square(0, 0, 10), &Fog{Near: 1, Far: 2})
	lightRegion := liveRegion(t, sc, "Cave", 9, square(0, 0, 10),
		&Fog{Near: 3, Far: 4},
		&AmbientLight{Color: Color{0.05, 0.05, 0.1}},
		&DirectionalLight{Direction: math.Vec3{X: 1}},
	)

	f := rv.Update(math.Vec3{X: 2, Z: 2})
	assert.Same(t, fogRegion, f.FogRegion)
	assert.Same(t, lightRegion, f.AmbientRegion)
	assert.Same(t, lightRegion, f.DirectionalRegion)
	assert.Equal(t, []*Region{fogRegion, lightRegion}, f.Active)
	assert.Equal(t, []string{"SetFog", "SetAmbientLight", "SetDirectionalLight"}, a.calls)
}

func TestResolverIgnoresRegionsOutsideScene(t *testing.T) {
	sc, _, idx := newTestScene()
	a := &fakeApplier{}
	rv := NewResolver(idx, a, Options{})

	r := liveRegion(t, sc, "Gone", 0, square(0, 0, 10), &Fog{Near: 1})
	r.LeaveScene()

	f := rv.Update(math.Vec3{X: 5, Z: 5})
	assert.Empty(t, f.Active)
	assert.Nil(t, a.fog)
}

func TestResolverFirstAttachmentOfKindWins(t *testing.T) {
	sc, _, idx := newTestScene()
	a := &fakeApplier{}
	rv := NewResolver(idx, a, Options{})

	liveRegion(t, sc, "Double", 0, square(0, 0, 10), &Fog{Near: 1}, &Fog{Near: 2})
	rv.Update(math.Vec3{X: 5, Z: 5})
	assert.Equal(t, float32(1), a.fog.Near)
}

func TestResolverCacheMatchesUncached(t *testing.T) {
	path := []math.Vec3{
		{X: -5, Z: -5}, {X: 5, Z: 5}, {X: 5, Z: 5}, {X: 15, Z: 15}, {X: 25, Z: 25},
		{X: 15, Z: 15}, {X: 5, Z: 5}, {X: -5, Z: -5}, {X: -5, Z: -5},
	}

	run := func(cache bool) ([]fakeApplier, int) {
		sc, _, idx := newTestScene()
		a := &fakeApplier{}
		rv := NewResolver(idx, a, Options{Cache: cache, Defaults: Defaults{Fog: &Fog{Near: 99}}})
		liveRegion(t, sc, "A", 2, square(0, 0, 20), &Fog{Near: 1}, &AmbientLight{Color: Color{1, 0, 0}})
		liveRegion(t, sc, "B", 1, square(10, 10, 20), &Fog{Near: 2}, &DirectionalLight{Direction: math.Vec3{Y: -1}})

		var states []fakeApplier
		for _, p := range path {
			rv.Update(p)
			states = append(states, fakeApplier{fog: a.fog, ambient: a.ambient, directional: a.directional})
		}
		return states, len(a.calls)
	}

	uncached, uncachedCalls := run(false)
	cached, cachedCalls := run(true)
	assert.Equal(t, uncached, cached)
	assert.Less(t, cachedCalls, uncachedCalls)
}

func TestResolverCacheSeesInPlaceEdits(t *testing.T) {
	sc, _, idx := newTestScene()
	a := &fakeApplier{}
	rv := NewResolver(idx, a, Options{Cache: true})
	fog := &Fog{Near: 1, Far: 10}
	liveRegion(t, sc, "Edited", 0, square(0, 0, 10), fog)

	rv.Update(math.Vec3{X: 5, Z: 5})
	fog.Far = 500
	rv.Update(math.Vec3{X: 5, Z: 5})
	assert.Equal(t, float32(500), a.fog.Far)
}

func TestHighestPriorityWith(t *testing.T) {
	a := New("A", 4)
	b := New("B", -1)
	c := New("C", -5)
	require.NoError(t, a.AddChild(&Water{}))
	require.NoError(t, b.AddChild(&Water{}))

	assert.Same(t, b, HighestPriorityWith([]*Region{a, b, c}, KindWater))
	assert.Nil(t, HighestPriorityWith([]*Region{a, b, c}, KindGrass))
	assert.Nil(t, HighestPriorityWith(nil, KindWater))
}
