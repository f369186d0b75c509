package region

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/worldedit/pkg/math"
)

// R-tree fan-out and the padding applied to region bounds and query points.
// Padding keeps zero-width bounds valid and makes points on a bound's edge hit.
const (
	indexMinChildren = 4
	indexMaxChildren = 16
	indexPadding     = 1e-3
)

// IndexListener is told when regions join or leave the index.
type IndexListener interface {
	RegionAdded(r *Region)
	RegionRemoved(r *Region)
}

// Index tracks every region currently live in the scene, independent of the
// ownership tree. It implements SceneListener with explicit enter and leave
// messages, both idempotent.
type Index struct {
	members   map[uuid.UUID]*indexEntry
	listeners []IndexListener
	log       *zap.Logger

	tree  *rtreego.Rtree
	dirty bool
}

// indexEntry is the R-tree item for one region. The rect is frozen at
// insertion so a stale shape can be detected and rebuilt.
type indexEntry struct {
	region  *Region
	rect    rtreego.Rect
	poly    *Polygon
	version uint64
	origin  math.Vec3
}

func (e *indexEntry) Bounds() rtreego.Rect { return e.rect }

func (e *indexEntry) stale() bool {
	poly := e.region.Polygon()
	return poly != e.poly || poly.Version() != e.version || e.region.Origin() != e.origin
}

// NewIndex creates an empty index.
func NewIndex(log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{
		members: make(map[uuid.UUID]*indexEntry),
		log:     log,
	}
}

// Subscribe registers a listener for membership changes.
func (idx *Index) Subscribe(l IndexListener) {
	idx.listeners = append(idx.listeners, l)
}

// RegionEntered registers r. A duplicate call leaves membership unchanged.
func (idx *Index) RegionEntered(r *Region) {
	if _, ok := idx.members[r.ID()]; ok {
		idx.log.Debug("region already indexed", zap.String("region", r.Name()), zap.Stringer("id", r.ID()))
		return
	}
	idx.members[r.ID()] = &indexEntry{region: r}
	idx.dirty = true
	idx.log.Debug("region indexed", zap.String("region", r.Name()), zap.Int("priority", r.Priority()))
	for _, l := range idx.listeners {
		l.RegionAdded(r)
	}
}

// RegionLeft deregisters r. A duplicate call is a no-op.
func (idx *Index) RegionLeft(r *Region) {
	if _, ok := idx.members[r.ID()]; !ok {
		return
	}
	delete(idx.members, r.ID())
	idx.dirty = true
	idx.log.Debug("region unindexed", zap.String("region", r.Name()))
	for _, l := range idx.listeners {
		l.RegionRemoved(r)
	}
}

// Contains reports whether r is registered.
func (idx *Index) Contains(r *Region) bool {
	_, ok := idx.members[r.ID()]
	return ok
}

// Len returns the number of registered regions.
func (idx *Index) Len() int {
	return len(idx.members)
}

// All returns every registered region in precedence order.
func (idx *Index) All() []*Region {
	out := make([]*Region, 0, len(idx.members))
	for _, e := range idx.members {
		out = append(out, e.region)
	}
	SortByPrecedence(out)
	return out
}

// Candidates returns the registered regions whose bounds contain p, in
// precedence order. Callers still run the exact polygon test.
func (idx *Index) Candidates(p math.Vec2) []*Region {
	idx.refresh()
	if idx.tree == nil {
		return nil
	}
	x, y := p.Float64()
	hits := idx.tree.SearchIntersect(rtreego.Point{x, y}.ToRect(indexPadding))
	out := make([]*Region, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*indexEntry).region)
	}
	SortByPrecedence(out)
	return out
}

// refresh rebuilds the R-tree when membership or any member's shape changed.
func (idx *Index) refresh() {
	if !idx.dirty {
		for _, e := range idx.members {
			if e.stale() {
				idx.dirty = true
				break
			}
		}
	}
	if !idx.dirty {
		return
	}

	items := make([]rtreego.Spatial, 0, len(idx.members))
	for _, e := range idx.members {
		r := e.region
		e.poly = r.Polygon()
		e.version = e.poly.Version()
		e.origin = r.Origin()
		if e.poly.Len() < MinPolygonPoints {
			continue
		}

		b := e.poly.Bound()
		minX := b.Min[0] + float64(e.origin.X) - indexPadding
		minY := b.Min[1] + float64(e.origin.Z) - indexPadding
		rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{
			b.Max[0] - b.Min[0] + 2*indexPadding,
			b.Max[1] - b.Min[1] + 2*indexPadding,
		})
		if err != nil {
			idx.log.Warn("skipping region with invalid bounds", zap.String("region", r.Name()), zap.Error(err))
			continue
		}
		e.rect = rect
		items = append(items, e)
	}

	idx.tree = rtreego.NewTree(2, indexMinChildren, indexMaxChildren, items...)
	idx.dirty = false
}

// SortByPrecedence orders regions so the winner of any overlap comes first.
func SortByPrecedence(regions []*Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Precedes(regions[j])
	})
}
