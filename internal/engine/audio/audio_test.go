package audio

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Faultbox/worldedit/internal/region"
	"github.com/Faultbox/worldedit/pkg/math"
)

func TestVolumeConversion(t *testing.T) {
	tests := []struct {
		vol float64
		min float64
		max float64
	}{
		{1.0, -1, 1},     // Full volume should be ~0dB
		{0.5, -8, -4},    // Half volume should be around -6dB
		{0.25, -14, -10}, // Quarter volume should be around -12dB
		{0.0, -200, -90}, // Zero volume should be very negative
	}

	for _, tt := range tests {
		db := volumeToDb(tt.vol)
		if db < tt.min || db > tt.max {
			t.Errorf("volumeToDb(%f) = %f, want between %f and %f", tt.vol, db, tt.min, tt.max)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0, 0, 1, 0},
		{1, 0, 1, 1},
	}

	for _, tt := range tests {
		if got := clamp(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("clamp(%f, %f, %f) = %f, want %f", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestManagerBeforeInit(t *testing.T) {
	m := New()
	if m.MasterVolume() != 1.0 {
		t.Errorf("default master volume = %f, want 1.0", m.MasterVolume())
	}

	m.SetMasterVolume(2.0)
	if m.MasterVolume() != 1.0 {
		t.Errorf("master volume = %f, want 1.0 (clamped)", m.MasterVolume())
	}

	if err := m.Play("frogs.wav", 1, true); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if m.Playing() != "" {
		t.Errorf("expected nothing playing, got %s", m.Playing())
	}
	m.Stop()
	m.Close()
}

type playCall struct {
	path   string
	volume float64
	loop   bool
}

type fakePlayer struct {
	plays []playCall
	stops int
	err   error
}

func (p *fakePlayer) Play(path string, volume float64, loop bool) error {
	p.plays = append(p.plays, playCall{path, volume, loop})
	return p.err
}

func (p *fakePlayer) Stop() { p.stops++ }

func soundRegion(name string, priority int, s *region.Sound) *region.Region {
	r := region.New(name, priority, math.Vec2{}, math.Vec2{X: 1}, math.Vec2{Y: 1})
	if s != nil {
		_ = r.AddChild(s)
	}
	return r
}

func TestAmbienceFollowsPrecedence(t *testing.T) {
	p := &fakePlayer{}
	a := NewAmbience(p, "/maps", nil)

	swamp := soundRegion("Swamp", 5, &region.Sound{File: "frogs.wav", Volume: 0.5, Loop: true})
	cave := soundRegion("Cave", 1, &region.Sound{File: "/sfx/drip.wav", Volume: 1})
	quiet := soundRegion("Quiet", 0, nil)

	a.Update([]*region.Region{quiet, swamp})
	a.Update([]*region.Region{quiet, swamp})
	if len(p.plays) != 1 {
		t.Fatalf("expected one play, got %d", len(p.plays))
	}
	want := playCall{filepath.Join("/maps", "frogs.wav"), 0.5, true}
	if p.plays[0] != want {
		t.Errorf("expected %+v, got %+v", want, p.plays[0])
	}
	if a.Source() != swamp {
		t.Errorf("expected swamp as source")
	}

	a.Update([]*region.Region{cave, swamp})
	if len(p.plays) != 2 || p.plays[1].path != "/sfx/drip.wav" {
		t.Errorf("expected the cave sound, got %+v", p.plays)
	}

	a.Update(nil)
	a.Update(nil)
	if p.stops != 1 {
		t.Errorf("expected one stop, got %d", p.stops)
	}
	if a.Source() != nil {
		t.Error("expected no source")
	}
}

func TestAmbienceSeesEdits(t *testing.T) {
	p := &fakePlayer{}
	a := NewAmbience(p, "", nil)
	s := &region.Sound{File: "a.wav", Volume: 1}
	r := soundRegion("R", 0, s)

	a.Update([]*region.Region{r})
	s.Volume = 0.2
	a.Update([]*region.Region{r})
	if len(p.plays) != 2 || p.plays[1].volume != float64(float32(0.2)) {
		t.Errorf("expected a replay at the new volume, got %+v", p.plays)
	}
}

func TestAmbienceFailedPlayNotRetried(t *testing.T) {
	p := &fakePlayer{err: errors.New("no device")}
	a := NewAmbience(p, "", nil)
	r := soundRegion("R", 0, &region.Sound{File: "a.wav"})

	a.Update([]*region.Region{r})
	a.Update([]*region.Region{r})
	if len(p.plays) != 1 {
		t.Errorf("expected a single attempt, got %d", len(p.plays))
	}
}
