package region

import (
	"go.uber.org/zap"

	"github.com/Faultbox/worldedit/pkg/math"
)

// DefaultAmbient is the engine ambient color used when neither a region nor
// the world sets one.
var DefaultAmbient = Color{0.3, 0.3, 0.3}

// EnvironmentApplier receives the resolved environment each frame.
// The renderer owns the state; the resolver only pushes values.
type EnvironmentApplier interface {
	SetFog(color Color, near, far float32)
	ClearFog()
	SetAmbientLight(color Color)
	SetDirectionalLight(direction math.Vec3, diffuse, specular Color)
	ClearDirectionalLight()
}

// Defaults is the world-level environment used where no active region overrides it.
// A nil field means no world-level value is configured.
type Defaults struct {
	Fog         *Fog
	Ambient     *AmbientLight
	Directional *DirectionalLight
}

// Options configures a Resolver.
type Options struct {
	Defaults Defaults
	// Cache skips re-applying a category whose resolved value did not change
	// since the previous frame.
	Cache bool
	Log   *zap.Logger
}

// Frame is the outcome of one resolution pass.
type Frame struct {
	Camera math.Vec3
	Active []*Region

	// Winning regions; nil means the fallback was used.
	FogRegion         *Region
	AmbientRegion     *Region
	DirectionalRegion *Region

	// Applied values; nil Fog or Directional means the category was cleared.
	Fog         *Fog
	Ambient     AmbientLight
	Directional *DirectionalLight
}

// Resolver picks the environment for a camera position from the regions in an Index.
type Resolver struct {
	index   *Index
	applier EnvironmentApplier
	opts    Options
	log     *zap.Logger

	applied appliedState
	last    Frame
}

type appliedState struct {
	valid       bool
	fog         *Fog
	ambient     AmbientLight
	directional *DirectionalLight
}

// NewResolver creates a resolver over idx that pushes results into applier.
func NewResolver(idx *Index, applier EnvironmentApplier, opts Options) *Resolver {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		index:   idx,
		applier: applier,
		opts:    opts,
		log:     log,
	}
}

// SetDefaults replaces the world-level environment, e.g. after loading a world.
func (rv *Resolver) SetDefaults(d Defaults) {
	rv.opts.Defaults = d
}

// Last returns the frame produced by the previous Update.
func (rv *Resolver) Last() Frame {
	return rv.last
}

// ActiveRegionsContaining returns the live regions containing p, in precedence order.
func (rv *Resolver) ActiveRegionsContaining(p math.Vec3) []*Region {
	candidates := rv.index.Candidates(p.XZ())
	active := candidates[:0]
	for _, r := range candidates {
		if r.PointIn(p) {
			active = append(active, r)
		}
	}
	return active
}

// HighestPriorityWith returns the region with the lowest priority value among
// those owning at least one child of kind k. Ties go to the earlier created
// region. Returns nil if none qualifies.
func HighestPriorityWith(regions []*Region, k Kind) *Region {
	var best *Region
	for _, r := range regions {
		if !r.HasChild(k) {
			continue
		}
		if best == nil || r.Precedes(best) {
			best = r
		}
	}
	return best
}

// Update runs one frame: find the regions around the camera, resolve fog,
// ambient and directional light in that order, then apply them.
func (rv *Resolver) Update(camera math.Vec3) Frame {
	f := Frame{Camera: camera}
	f.Active = rv.ActiveRegionsContaining(camera)

	f.FogRegion, f.Fog = rv.resolveFog(f.Active)
	f.AmbientRegion, f.Ambient = rv.resolveAmbient(f.Active)
	f.DirectionalRegion, f.Directional = rv.resolveDirectional(f.Active)

	rv.apply(f)
	rv.logTransitions(f)
	rv.last = f
	return f
}

func (rv *Resolver) resolveFog(active []*Region) (*Region, *Fog) {
	if r := HighestPriorityWith(active, KindFog); r != nil {
		return r, r.FirstChild(KindFog).(*Fog)
	}
	return nil, rv.opts.Defaults.Fog
}

func (rv *Resolver) resolveAmbient(active []*Region) (*Region, AmbientLight) {
	if r := HighestPriorityWith(active, KindAmbientLight); r != nil {
		return r, *r.FirstChild(KindAmbientLight).(*AmbientLight)
	}
	if d := rv.opts.Defaults.Ambient; d != nil {
		return nil, *d
	}
	return nil, AmbientLight{Color: DefaultAmbient}
}

func (rv *Resolver) resolveDirectional(active []*Region) (*Region, *DirectionalLight) {
	if r := HighestPriorityWith(active, KindDirectionalLight); r != nil {
		return r, r.FirstChild(KindDirectionalLight).(*DirectionalLight)
	}
	return nil, rv.opts.Defaults.Directional
}

func (rv *Resolver) apply(f Frame) {
	cache := rv.opts.Cache && rv.applied.valid

	if !cache || !sameFog(rv.applied.fog, f.Fog) {
		if f.Fog != nil {
			rv.applier.SetFog(f.Fog.Color, f.Fog.Near, f.Fog.Far)
		} else {
			rv.applier.ClearFog()
		}
	}
	if !cache || rv.applied.ambient != f.Ambient {
		rv.applier.SetAmbientLight(f.Ambient.Color)
	}
	if !cache || !sameDirectional(rv.applied.directional, f.Directional) {
		if d := f.Directional; d != nil {
			rv.applier.SetDirectionalLight(d.Direction, d.Diffuse, d.Specular)
		} else {
			rv.applier.ClearDirectionalLight()
		}
	}

	// Values are copied so in-place edits of an attachment are seen as changes.
	rv.applied = appliedState{valid: true, ambient: f.Ambient}
	if f.Fog != nil {
		fog := *f.Fog
		rv.applied.fog = &fog
	}
	if f.Directional != nil {
		d := *f.Directional
		rv.applied.directional = &d
	}
}

func (rv *Resolver) logTransitions(f Frame) {
	if ce := rv.log.Check(zap.DebugLevel, "active regions changed"); ce != nil && !sameRegions(rv.last.Active, f.Active) {
		names := make([]string, len(f.Active))
		for i, r := range f.Active {
			names[i] = r.Name()
		}
		ce.Write(zap.Strings("active", names), zap.String("fog", regionName(f.FogRegion)),
			zap.String("ambient", regionName(f.AmbientRegion)), zap.String("directional", regionName(f.DirectionalRegion)))
	}
}

func regionName(r *Region) string {
	if r == nil {
		return "<default>"
	}
	return r.Name()
}

func sameRegions(a, b []*Region) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameFog(a, b *Fog) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameDirectional(a, b *DirectionalLight) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
