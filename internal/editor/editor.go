// Package editor drives a loaded world frame by frame: it owns the live scene,
// the region index and resolver, applies edit commands and reloads the world
// file on request.
package editor

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/worldedit/internal/region"
	"github.com/Faultbox/worldedit/internal/worldfile"
	"github.com/Faultbox/worldedit/pkg/math"
)

// ErrNoSuchRegion is returned by commands given an unknown region id.
var ErrNoSuchRegion = errors.New("no such region")

// Config holds editor dependencies.
type Config struct {
	Boundaries region.BoundaryFactory
	Applier    region.EnvironmentApplier
	// Cache enables the resolver's applied-value cache.
	Cache bool
	Log   *zap.Logger
}

// Editor is the editor controller. It is not safe for concurrent use except
// for RequestReload.
type Editor struct {
	log      *zap.Logger
	world    *region.World
	path     string
	scene    *region.Scene
	index    *region.Index
	resolver *region.Resolver
	outline  *Outline
	selected *region.Region

	reload atomic.Bool

	// Active set of the previous Tick, for transition logging.
	active        map[uuid.UUID]*region.Region
	entered, left []*region.Region
}

// New creates an editor holding an empty, live world.
func New(cfg Config) (*Editor, error) {
	if cfg.Boundaries == nil || cfg.Applier == nil {
		return nil, errors.New("editor needs a boundary factory and an environment applier")
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	idx := region.NewIndex(log.Named("index"))
	e := &Editor{
		log:     log,
		index:   idx,
		outline: NewOutline(),
		resolver: region.NewResolver(idx, cfg.Applier, region.Options{
			Cache: cfg.Cache,
			Log:   log.Named("resolver"),
		}),
		active: make(map[uuid.UUID]*region.Region),
	}
	e.scene = &region.Scene{Boundaries: cfg.Boundaries, Listener: idx}

	if err := e.setWorld(region.NewWorld("untitled"), ""); err != nil {
		return nil, err
	}
	return e, nil
}

// World returns the loaded world.
func (e *Editor) World() *region.World { return e.world }

// Path returns the file the world was loaded from, or "".
func (e *Editor) Path() string { return e.path }

// Index returns the live region index.
func (e *Editor) Index() *region.Index { return e.index }

// Outline returns the tree view of the world.
func (e *Editor) Outline() *Outline { return e.outline }

// Selected returns the selected region, or nil.
func (e *Editor) Selected() *region.Region { return e.selected }

// Open loads the world at path and replaces the current one.
func (e *Editor) Open(path string) error {
	w, err := worldfile.Load(path)
	if err != nil {
		return err
	}
	if err := e.setWorld(w, path); err != nil {
		return err
	}
	e.log.Info("world opened",
		zap.String("path", path),
		zap.String("name", w.Name),
		zap.Int("regions", w.Count()),
	)
	return nil
}

// Save writes the world to path, or to the path it was opened from if path is empty.
func (e *Editor) Save(path string) error {
	if path == "" {
		path = e.path
	}
	if path == "" {
		return errors.New("no path to save to")
	}
	if err := worldfile.Save(path, e.world); err != nil {
		return err
	}
	e.path = path
	e.log.Info("world saved", zap.String("path", path))
	return nil
}

// Close takes the world out of the scene.
func (e *Editor) Close() {
	e.detachWorld()
}

// setWorld swaps in w. If w cannot enter the scene it is taken out again and
// the previous world, with its selection, is restored.
func (e *Editor) setWorld(w *region.World, path string) error {
	prev, prevPath, prevSel := e.world, e.path, e.selected
	e.detachWorld()

	err := e.attachWorld(w, path)
	if err == nil {
		return nil
	}
	w.LeaveScene()
	if prev == nil {
		return err
	}
	if rerr := e.attachWorld(prev, prevPath); rerr != nil {
		e.log.Error("failed to restore previous world", zap.String("name", prev.Name), zap.Error(rerr))
		return err
	}
	if prevSel != nil && prevSel.Live() {
		_ = e.Select(prevSel.ID())
	}
	return err
}

func (e *Editor) attachWorld(w *region.World, path string) error {
	if err := w.EnterScene(e.scene); err != nil {
		return fmt.Errorf("world %q entering scene: %w", w.Name, err)
	}
	e.world = w
	e.path = path
	e.outline.Root().SetLabel(w.Name)
	for _, r := range w.Regions() {
		r.AttachTree(e.outline.Root())
	}
	e.resolver.SetDefaults(w.Defaults())
	return nil
}

func (e *Editor) detachWorld() {
	if e.world == nil {
		return
	}
	for _, r := range e.world.Regions() {
		r.DetachTree()
	}
	e.world.LeaveScene()
	e.selected = nil
	clear(e.active)
}

// CreateRegion adds a top-level region to the world.
func (e *Editor) CreateRegion(name string, priority int, points ...math.Vec2) (*region.Region, error) {
	r := region.New(name, priority, points...)
	if err := e.world.AddRegion(r); err != nil {
		return nil, err
	}
	r.AttachTree(e.outline.Root())
	e.log.Debug("region created", zap.Stringer("id", r.ID()), zap.String("name", name), zap.Int("priority", priority))
	return r, nil
}

// DeleteRegion removes a region and everything nested in it.
func (e *Editor) DeleteRegion(id uuid.UUID) error {
	r, err := e.lookup(id)
	if err != nil {
		return err
	}
	if e.selected != nil && !r.Walk(func(sub *region.Region) bool { return sub != e.selected }) {
		e.selected = nil
	}
	r.Delete()
	e.log.Debug("region deleted", zap.Stringer("id", id), zap.String("name", r.Name()))
	return nil
}

// RenameRegion changes a region's display name.
func (e *Editor) RenameRegion(id uuid.UUID, name string) error {
	r, err := e.lookup(id)
	if err != nil {
		return err
	}
	r.SetName(name)
	return nil
}

// SetPriority changes a region's priority. It takes effect on the next Tick.
func (e *Editor) SetPriority(id uuid.UUID, priority int) error {
	r, err := e.lookup(id)
	if err != nil {
		return err
	}
	r.SetPriority(priority)
	return nil
}

// AddPoint appends a local-space point to a region's polygon and returns its index.
func (e *Editor) AddPoint(id uuid.UUID, p math.Vec2) (int, error) {
	r, err := e.lookup(id)
	if err != nil {
		return -1, err
	}
	return r.AddPoint(p), nil
}

// Select highlights one region and clears the previous highlight. uuid.Nil
// clears the selection.
func (e *Editor) Select(id uuid.UUID) error {
	var next *region.Region
	if id != uuid.Nil {
		r, err := e.lookup(id)
		if err != nil {
			return err
		}
		next = r
	}

	if prev := e.selected; prev != nil && prev != next && prev.Live() {
		if err := prev.SetHighlight(false); err != nil {
			return err
		}
	}
	e.selected = next
	if next == nil {
		return nil
	}
	return next.SetHighlight(true)
}

// RegionsAt returns the live regions containing p, in precedence order.
func (e *Editor) RegionsAt(p math.Vec3) []*region.Region {
	return e.resolver.ActiveRegionsContaining(p)
}

// RequestReload asks for the world file to be reloaded on the next Tick.
// It may be called from any goroutine.
func (e *Editor) RequestReload() {
	e.reload.Store(true)
}

// Tick runs one frame for the camera position and returns the resolved environment.
func (e *Editor) Tick(camera math.Vec3) region.Frame {
	if e.reload.Swap(false) {
		e.reloadWorld()
	}

	f := e.resolver.Update(camera)
	e.trackTransitions(f.Active)
	return f
}

// Transitions returns the regions the camera entered and left during the last Tick.
func (e *Editor) Transitions() (entered, left []*region.Region) {
	return e.entered, e.left
}

func (e *Editor) reloadWorld() {
	if e.path == "" {
		return
	}
	w, err := worldfile.Load(e.path)
	if err != nil {
		e.log.Warn("reload failed, keeping current world", zap.Error(err))
		return
	}

	var selected string
	if e.selected != nil {
		selected = e.selected.Name()
	}
	if err := e.setWorld(w, e.path); err != nil {
		e.log.Error("reload failed", zap.Error(err))
		return
	}
	if r := w.FindByName(selected); selected != "" && r != nil {
		_ = e.Select(r.ID())
	}
	e.log.Info("world reloaded", zap.String("path", e.path), zap.Int("regions", w.Count()))
}

func (e *Editor) trackTransitions(active []*region.Region) {
	e.entered, e.left = nil, nil

	now := make(map[uuid.UUID]*region.Region, len(active))
	for _, r := range active {
		now[r.ID()] = r
		if _, ok := e.active[r.ID()]; !ok {
			e.entered = append(e.entered, r)
			e.log.Debug("camera entered region", zap.String("name", r.Name()), zap.Int("priority", r.Priority()))
		}
	}
	for id, r := range e.active {
		if _, ok := now[id]; !ok {
			e.left = append(e.left, r)
			e.log.Debug("camera left region", zap.String("name", r.Name()))
		}
	}
	region.SortByPrecedence(e.left)
	e.active = now
}

func (e *Editor) lookup(id uuid.UUID) (*region.Region, error) {
	r := e.world.FindByID(id)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchRegion, id)
	}
	return r, nil
}
