package audio

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/worldedit/internal/region"
)

// Player plays one track at a time. Manager implements it.
type Player interface {
	Play(path string, volume float64, loop bool) error
	Stop()
}

// Resolve returns the sound of the highest-precedence active region that has
// one, or nil.
func Resolve(active []*region.Region) (*region.Region, *region.Sound) {
	r := region.HighestPriorityWith(active, region.KindSound)
	if r == nil {
		return nil, nil
	}
	return r, r.FirstChild(region.KindSound).(*region.Sound)
}

// Ambience switches the playing track as the camera moves between regions.
type Ambience struct {
	player  Player
	baseDir string
	log     *zap.Logger

	playing bool
	current region.Sound
	source  *region.Region
}

// NewAmbience creates an ambience over player. Relative sound files are
// resolved against baseDir.
func NewAmbience(player Player, baseDir string, log *zap.Logger) *Ambience {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ambience{player: player, baseDir: baseDir, log: log}
}

// SetBaseDir changes the directory relative sound files are resolved against.
func (a *Ambience) SetBaseDir(dir string) {
	a.baseDir = dir
}

// Source returns the region whose sound is playing, or nil.
func (a *Ambience) Source() *region.Region {
	return a.source
}

// Update plays the sound resolved for the active regions. The player is only
// called when the resolved sound changes. A track that fails to play is not
// retried until the sound changes.
func (a *Ambience) Update(active []*region.Region) {
	r, s := Resolve(active)
	if s == nil || s.File == "" {
		if a.playing {
			a.player.Stop()
			a.log.Debug("ambience stopped")
		}
		a.playing, a.source, a.current = false, nil, region.Sound{}
		return
	}
	if a.playing && *s == a.current {
		a.source = r
		return
	}

	a.playing, a.source, a.current = true, r, *s
	path := s.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.baseDir, path)
	}
	if err := a.player.Play(path, float64(s.Volume), s.Loop); err != nil {
		a.log.Warn("failed to play region sound", zap.String("region", r.Name()), zap.String("file", path), zap.Error(err))
		return
	}
	a.log.Debug("ambience playing", zap.String("region", r.Name()), zap.String("file", path))
}
