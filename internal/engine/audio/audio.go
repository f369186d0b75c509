// Package audio plays the ambient sound of the region around the camera.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned by Play before Init.
var ErrNotInitialized = errors.New("audio not initialized")

// Manager plays one looping ambient track at a time through the speaker.
type Manager struct {
	mu sync.Mutex

	initialized bool
	sampleRate  beep.SampleRate

	masterVolume float64
	track        *track
}

type track struct {
	path     string
	level    float64
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	volume   *effects.Volume
}

// New creates a new audio manager.
func New() *Manager {
	return &Manager{masterVolume: 1.0}
}

// Init opens the speaker.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}
	m.sampleRate = DefaultSampleRate
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	m.initialized = true
	return nil
}

// Close stops playback and releases the speaker.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	if m.initialized {
		speaker.Close()
	}
	m.initialized = false
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
	m.applyVolumeLocked()
}

// MasterVolume returns the master volume.
func (m *Manager) MasterVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.masterVolume
}

// Playing returns the path of the current track, or "".
func (m *Manager) Playing() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.track == nil {
		return ""
	}
	return m.track.path
}

// Play replaces the current track with the WAV file at path.
func (m *Manager) Play(path string, volume float64, loop bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	m.stopLocked()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode wav %s: %w", path, err)
	}

	var s beep.Streamer = streamer
	if loop {
		s = &loopStreamer{streamer: streamer}
	}
	if format.SampleRate != m.sampleRate {
		s = beep.Resample(4, format.SampleRate, m.sampleRate, s)
	}

	t := &track{path: path, level: clamp(volume, 0, 1), streamer: streamer}
	t.ctrl = &beep.Ctrl{Streamer: s}
	t.volume = &effects.Volume{Streamer: t.ctrl, Base: 10}
	m.track = t
	m.applyVolumeLocked()

	speaker.Play(t.volume)
	return nil
}

// Stop stops the current track.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.track == nil {
		return
	}
	if m.initialized {
		speaker.Clear()
	}
	m.track.streamer.Close()
	m.track = nil
}

func (m *Manager) applyVolumeLocked() {
	t := m.track
	if t == nil {
		return
	}
	vol := m.masterVolume * t.level
	if m.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	t.volume.Silent = vol <= 0
	t.volume.Volume = volumeToDb(vol) / 20
}

// volumeToDb converts a 0-1 volume to decibels: 1 is 0dB, 0.5 about -6dB.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return 20 * math.Log10(vol)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// loopStreamer restarts its source when it runs out.
type loopStreamer struct {
	streamer beep.StreamSeeker
}

func (l *loopStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.streamer.Stream(samples[filled:])
		filled += n
		if ok && n > 0 {
			continue
		}
		if l.streamer.Len() == 0 || l.streamer.Seek(0) != nil {
			return filled, filled > 0
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}
