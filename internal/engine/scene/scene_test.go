package scene

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Faultbox/worldedit/internal/region"
	"github.com/Faultbox/worldedit/pkg/math"
)

func TestEnvironmentApplier(t *testing.T) {
	var _ region.EnvironmentApplier = (*Environment)(nil)

	env := NewEnvironment()
	if env.FogEnabled || env.SunEnabled {
		t.Fatal("expected fog and sun off by default")
	}
	if env.AmbientColor != [3]float32(region.DefaultAmbient) {
		t.Errorf("expected default ambient, got %v", env.AmbientColor)
	}

	env.SetFog(region.Color{0.2, 0.3, 0.4}, 10, 100)
	if !env.FogEnabled || env.FogNear != 10 || env.FogFar != 100 {
		t.Errorf("fog not applied: %+v", env)
	}
	if env.ClearColor() != [3]float32{0.2, 0.3, 0.4} {
		t.Errorf("clear color should follow fog, got %v", env.ClearColor())
	}

	env.SetDirectionalLight(math.Vec3{Y: -2}, region.Color{1, 1, 1}, region.Color{0.5, 0.5, 0.5})
	if !env.SunEnabled || env.LightDir != [3]float32{0, -1, 0} {
		t.Errorf("expected normalized sun direction, got %v", env.LightDir)
	}

	env.ClearFog()
	env.ClearDirectionalLight()
	if env.FogEnabled || env.SunEnabled {
		t.Error("expected fog and sun cleared")
	}
	if env.Updates != 4 {
		t.Errorf("expected 4 updates, got %d", env.Updates)
	}
}

func TestEnvironmentFogFactor(t *testing.T) {
	env := NewEnvironment()
	if got := env.FogFactor(1000); got != 0 {
		t.Errorf("fog off: FogFactor = %v, want 0", got)
	}

	env.SetFog(region.Color{}, 10, 110)
	tests := []struct {
		d    float32
		want float32
	}{
		{0, 0},
		{10, 0},
		{60, 0.5},
		{110, 1},
		{500, 1},
	}
	for _, tt := range tests {
		if got := env.FogFactor(tt.d); got != tt.want {
			t.Errorf("FogFactor(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestBoundariesLifecycle(t *testing.T) {
	bs := NewBoundaries()
	var f region.BoundaryFactory = bs

	id := uuid.New()
	h := f.CreateBoundary(id, "Swamp")
	h.SetPoints([]math.Vec3{{X: 1}, {X: 2}})
	h.SetHighlight(true)

	b, ok := bs.Get(id)
	if !ok {
		t.Fatal("expected boundary to be live")
	}
	if len(b.Points) != 2 || !b.Highlighted || b.Name != "Swamp" {
		t.Errorf("unexpected boundary state: %+v", b)
	}

	h.Destroy()
	if bs.Len() != 0 {
		t.Errorf("expected no live boundaries, got %d", bs.Len())
	}
}

func TestBoundariesWithRegions(t *testing.T) {
	bs := NewBoundaries()
	r := region.New("Meadow", 0, math.Vec2{}, math.Vec2{X: 4}, math.Vec2{X: 4, Y: 4})
	r.SetOrigin(math.Vec3{X: 10, Y: 1, Z: 10})

	if err := r.EnterScene(&region.Scene{Boundaries: bs}); err != nil {
		t.Fatalf("EnterScene: %v", err)
	}
	live := bs.Live()
	if len(live) != 1 {
		t.Fatalf("expected 1 live boundary, got %d", len(live))
	}
	if live[0].Points[2] != (math.Vec3{X: 14, Y: 1, Z: 14}) {
		t.Errorf("expected world-space points, got %v", live[0].Points)
	}

	r.LeaveScene()
	if bs.Len() != 0 {
		t.Error("expected boundary released on LeaveScene")
	}
}
