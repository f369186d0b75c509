package scene

import (
	"sort"

	"github.com/google/uuid"

	"github.com/Faultbox/worldedit/internal/region"
	"github.com/Faultbox/worldedit/pkg/math"
)

// Boundary is the headless renderer object for one live region.
type Boundary struct {
	ID          uuid.UUID
	Name        string
	Points      []math.Vec3
	Highlighted bool

	owner *Boundaries
}

// SetPoints implements region.BoundaryHandle.
func (b *Boundary) SetPoints(points []math.Vec3) {
	b.Points = points
}

// SetHighlight implements region.BoundaryHandle.
func (b *Boundary) SetHighlight(on bool) {
	b.Highlighted = on
}

// Destroy implements region.BoundaryHandle.
func (b *Boundary) Destroy() {
	delete(b.owner.live, b.ID)
}

// Boundaries is a region.BoundaryFactory that keeps boundaries in memory.
// The CLI uses it directly; the viewer's overlay wraps it.
type Boundaries struct {
	live map[uuid.UUID]*Boundary
}

// NewBoundaries creates an empty boundary set.
func NewBoundaries() *Boundaries {
	return &Boundaries{live: make(map[uuid.UUID]*Boundary)}
}

// CreateBoundary implements region.BoundaryFactory.
func (bs *Boundaries) CreateBoundary(id uuid.UUID, name string) region.BoundaryHandle {
	b := &Boundary{ID: id, Name: name, owner: bs}
	bs.live[id] = b
	return b
}

// Get returns the live boundary for a region id.
func (bs *Boundaries) Get(id uuid.UUID) (*Boundary, bool) {
	b, ok := bs.live[id]
	return b, ok
}

// Len returns the number of live boundaries.
func (bs *Boundaries) Len() int {
	return len(bs.live)
}

// Live returns the live boundaries sorted by name.
func (bs *Boundaries) Live() []*Boundary {
	out := make([]*Boundary, 0, len(bs.live))
	for _, b := range bs.live {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
