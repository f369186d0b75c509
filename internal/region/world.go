package region

import (
	"fmt"

	"github.com/google/uuid"
)

// World is the root container of a loaded world: its top-level regions and
// the world-wide environment used where no region overrides it.
type World struct {
	Name        string
	Fog         *Fog
	Ambient     *AmbientLight
	Directional *DirectionalLight

	regions []*Region
	scene   *Scene
}

// NewWorld creates an empty world.
func NewWorld(name string) *World {
	return &World{Name: name}
}

// Defaults returns the world-level environment.
func (w *World) Defaults() Defaults {
	return Defaults{Fog: w.Fog, Ambient: w.Ambient, Directional: w.Directional}
}

// Regions returns the top-level regions.
func (w *World) Regions() []*Region {
	return append([]*Region(nil), w.regions...)
}

// Children implements Container.
func (w *World) Children() []Node {
	out := make([]Node, len(w.regions))
	for i, r := range w.regions {
		out[i] = r
	}
	return out
}

// AddChild implements Container. Only regions are accepted.
func (w *World) AddChild(n Node) error {
	r, ok := n.(*Region)
	if !ok || r == nil {
		return ErrNotRegion
	}
	return w.AddRegion(r)
}

// AddRegion adds a top-level region; it enters the scene if the world is live.
func (w *World) AddRegion(r *Region) error {
	if r.parent != nil {
		r.parent.RemoveChild(r)
	}
	r.parent = w
	w.regions = append(w.regions, r)
	if w.scene != nil {
		if err := r.EnterScene(w.scene); err != nil {
			return fmt.Errorf("region %q entering scene: %w", r.Name(), err)
		}
	}
	return nil
}

// RemoveChild implements Container.
func (w *World) RemoveChild(n Node) bool {
	r, ok := n.(*Region)
	if !ok {
		return false
	}
	return w.RemoveRegion(r)
}

// RemoveRegion takes a top-level region out of the scene and the world.
func (w *World) RemoveRegion(r *Region) bool {
	for i, cur := range w.regions {
		if cur != r {
			continue
		}
		r.LeaveScene()
		r.DetachTree()
		w.regions = append(w.regions[:i], w.regions[i+1:]...)
		r.parent = nil
		return true
	}
	return false
}

// EnterScene instantiates every region.
func (w *World) EnterScene(sc *Scene) error {
	if sc == nil || sc.Boundaries == nil {
		return ErrNilScene
	}
	w.scene = sc
	for _, r := range w.regions {
		if err := r.EnterScene(sc); err != nil {
			return fmt.Errorf("region %q entering scene: %w", r.Name(), err)
		}
	}
	return nil
}

// LeaveScene removes every region from the scene.
func (w *World) LeaveScene() {
	for _, r := range w.regions {
		r.LeaveScene()
	}
	w.scene = nil
}

// Live reports whether the world is in a scene.
func (w *World) Live() bool { return w.scene != nil }

// Walk visits every region depth first until fn returns false.
func (w *World) Walk(fn func(*Region) bool) {
	for _, r := range w.regions {
		if !r.Walk(fn) {
			return
		}
	}
}

// FindByID returns the region with the given id, at any depth.
func (w *World) FindByID(id uuid.UUID) *Region {
	var found *Region
	w.Walk(func(r *Region) bool {
		if r.ID() == id {
			found = r
			return false
		}
		return true
	})
	return found
}

// FindByName returns the first region with the given name, at any depth.
func (w *World) FindByName(name string) *Region {
	var found *Region
	w.Walk(func(r *Region) bool {
		if r.Name() == name {
			found = r
			return false
		}
		return true
	})
	return found
}

// Count returns the number of regions at any depth.
func (w *World) Count() int {
	n := 0
	w.Walk(func(*Region) bool {
		n++
		return true
	})
	return n
}
