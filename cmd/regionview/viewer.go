package main

import (
	"context"
	"fmt"
	gomath "math"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/google/uuid"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/worldedit/internal/config"
	"github.com/Faultbox/worldedit/internal/editor"
	"github.com/Faultbox/worldedit/internal/engine/audio"
	"github.com/Faultbox/worldedit/internal/engine/camera"
	"github.com/Faultbox/worldedit/internal/engine/input"
	"github.com/Faultbox/worldedit/internal/engine/overlay"
	"github.com/Faultbox/worldedit/internal/engine/picking"
	"github.com/Faultbox/worldedit/internal/engine/scene"
	"github.com/Faultbox/worldedit/internal/engine/screenshot"
	"github.com/Faultbox/worldedit/internal/engine/window"
	"github.com/Faultbox/worldedit/internal/logger"
	"github.com/Faultbox/worldedit/internal/region"
	"github.com/Faultbox/worldedit/internal/worldfile"
)

type viewer struct {
	cfg    *config.Config
	log    *zap.Logger
	window *window.Window
	input  *input.Input
	camera *camera.PanCamera
	env    *scene.Environment
	ov     *overlay.Overlay
	editor *editor.Editor
	audio  *audio.Manager
	sound  *audio.Ambience
	shots  *screenshot.Capture

	stopWatch context.CancelFunc
	active    []*region.Region // Active set of the last frame
	status    string
}

func newViewer(cfg *config.Config) (*viewer, error) {
	v := &viewer{
		cfg:    cfg,
		log:    logger.Named("viewer"),
		input:  input.New(),
		camera: camera.NewPanCamera(),
		env:    scene.NewEnvironment(),
		shots:  screenshot.New(cfg.Viewer.ScreenshotDir),
	}

	var err error
	v.window, err = window.New("Region Viewer", cfg.Viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// GL functions load only once a context is current.
	if err := gl.Init(); err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	v.log.Info("OpenGL initialized", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	v.ov, err = overlay.New()
	if err != nil {
		v.window.Close()
		return nil, err
	}

	v.editor, err = editor.New(editor.Config{
		Boundaries: v.ov,
		Applier:    v.env,
		Cache:      cfg.Resolver.Cache,
		Log:        logger.Named("editor"),
	})
	if err != nil {
		v.ov.Destroy()
		v.window.Close()
		return nil, err
	}

	if cfg.Audio.Enabled {
		v.audio = audio.New()
		if err := v.audio.Init(); err != nil {
			// Keep running without sound.
			v.log.Warn("audio unavailable", zap.Error(err))
			v.audio = nil
		} else {
			v.audio.SetMasterVolume(cfg.Audio.Volume)
			v.sound = audio.NewAmbience(v.audio, "", logger.Named("ambience"))
		}
	}

	if cfg.World.Path != "" {
		if err := v.open(cfg.World.Path); err != nil {
			v.Close()
			return nil, err
		}
	}
	return v, nil
}

func (v *viewer) open(path string) error {
	if err := v.editor.Open(path); err != nil {
		return err
	}
	v.fitCamera()
	if v.sound != nil {
		v.sound.SetBaseDir(filepath.Dir(path))
	}
	if v.cfg.World.Watch {
		v.watch(path)
	}
	return nil
}

// watch reloads the world on the next frame whenever the file changes.
func (v *viewer) watch(path string) {
	if v.stopWatch != nil {
		v.stopWatch()
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.stopWatch = cancel

	changed := make(chan struct{}, 1)
	go func() {
		if err := worldfile.Watch(ctx, path, changed, logger.Named("watch")); err != nil {
			v.log.Warn("file watch stopped", zap.Error(err))
		}
	}()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				v.editor.RequestReload()
			}
		}
	}()
}

func (v *viewer) fitCamera() {
	minX, minZ := float32(gomath.MaxFloat32), float32(gomath.MaxFloat32)
	maxX, maxZ := -minX, -minZ
	v.editor.World().Walk(func(r *region.Region) bool {
		for _, p := range r.Points() {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minZ, maxZ = min(minZ, p.Z), max(maxZ, p.Z)
		}
		return true
	})
	if minX > maxX {
		return
	}
	v.camera.FitToBounds(minX, minZ, maxX, maxZ)
}

// Run runs the frame loop until the window closes or Escape is pressed.
func (v *viewer) Run() error {
	lastTime := time.Now()
	v.log.Info("starting frame loop")

	for {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			return nil
		}
		if quit := v.handleEvents(); quit {
			return nil
		}

		forward := v.input.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W) + v.input.Axis(sdl.SCANCODE_DOWN, sdl.SCANCODE_UP)
		right := v.input.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D) + v.input.Axis(sdl.SCANCODE_LEFT, sdl.SCANCODE_RIGHT)
		v.camera.HandleMovement(forward, right, v.cfg.Viewer.PanSpeed, dt)

		frame := v.editor.Tick(v.camera.Target)
		v.active = frame.Active
		if v.sound != nil {
			v.sound.Update(frame.Active)
		}
		v.render(frame)
		v.updateStatus(frame)
		v.window.SwapBuffers()
	}
}

func (v *viewer) handleEvents() (quit bool) {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := v.window.Size()
			gl.Viewport(0, 0, int32(w), int32(h))
		case input.EventMouseWheel:
			v.camera.HandleZoom(event.Wheel)
		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT {
				v.pick(event.X, event.Y)
			}
		case input.EventFileDrop:
			if err := v.open(event.Path); err != nil {
				v.log.Warn("failed to open dropped file", zap.String("path", event.Path), zap.Error(err))
			}
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				return true
			case sdl.SCANCODE_F5:
				v.editor.RequestReload()
			case sdl.SCANCODE_TAB:
				v.selectNext()
			case sdl.SCANCODE_F2:
				if err := v.editor.Save(""); err != nil {
					v.log.Warn("save failed", zap.Error(err))
				}
			case sdl.SCANCODE_HOME:
				v.fitCamera()
			case sdl.SCANCODE_F12:
				v.screenshot()
			}
		}
	}
	return false
}

// selectNext cycles the selection through the regions under the camera, or
// through all regions when the camera is outside every region.
func (v *viewer) selectNext() {
	candidates := v.active
	if len(candidates) == 0 {
		candidates = v.editor.Index().All()
	}
	if len(candidates) == 0 {
		return
	}

	next := candidates[0]
	for i, r := range candidates {
		if r == v.editor.Selected() {
			next = candidates[(i+1)%len(candidates)]
			break
		}
	}
	if err := v.editor.Select(next.ID()); err != nil {
		v.log.Warn("select failed", zap.Error(err))
		return
	}
	v.log.Info("selected region", zap.String("name", next.Name()), zap.Int("priority", next.Priority()))
}

// pick selects the highest-precedence region under the cursor, or clears the
// selection when the cursor is outside every region.
func (v *viewer) pick(x, y int32) {
	w, h := v.window.PointSize()
	aspect := float32(w) / float32(max(h, 1))
	p, ok := picking.Ground(float32(x), float32(y), float32(w), float32(h), v.camera.ViewProjection(aspect), v.camera.Target.Y)
	if !ok {
		return
	}

	id := uuid.Nil
	if under := v.editor.RegionsAt(p); len(under) > 0 {
		id = under[0].ID()
	}
	if err := v.editor.Select(id); err != nil {
		v.log.Warn("select failed", zap.Error(err))
	}
}

// screenshot saves the frame currently on screen. Events are handled before
// rendering, so that is the front buffer.
func (v *viewer) screenshot() {
	w, h := v.window.Size()
	pixels := make([]byte, w*h*4)
	gl.ReadBuffer(gl.FRONT)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.ReadBuffer(gl.BACK)

	path, err := v.shots.Save(v.editor.World().Name, pixels, w, h)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

func (v *viewer) render(frame region.Frame) {
	c := v.env.ClearColor()
	gl.ClearColor(c[0], c[1], c[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	w, h := v.window.Size()
	aspect := float32(w) / float32(max(h, 1))
	v.ov.Draw(v.camera.ViewProjection(aspect), v.camera.Eye(), v.env, frame.Active)
}

func (v *viewer) updateStatus(frame region.Frame) {
	names := make([]string, len(frame.Active))
	for i, r := range frame.Active {
		names[i] = r.Name()
	}
	status := strings.Join(names, " > ")
	if sel := v.editor.Selected(); sel != nil {
		status += fmt.Sprintf(" [%s]", sel.Name())
	}
	if status == v.status {
		return
	}
	v.status = status
	v.window.SetStatus(status)
}

func (v *viewer) Close() {
	if v.stopWatch != nil {
		v.stopWatch()
	}
	if v.editor != nil {
		_ = v.editor.Select(uuid.Nil)
		v.editor.Close()
	}
	if v.audio != nil {
		v.audio.Close()
	}
	if v.ov != nil {
		v.ov.Destroy()
	}
	if v.window != nil {
		v.window.Close()
	}
}
