// Package scene holds the renderer-facing state driven by the region engine:
// the fog and lighting environment and the set of live region boundaries.
package scene

import (
	"fmt"

	"github.com/Faultbox/worldedit/internal/region"
	"github.com/Faultbox/worldedit/pkg/math"
)

// Environment is the fog and lighting state a renderer reads each frame.
// It implements region.EnvironmentApplier.
type Environment struct {
	// Fog settings
	FogEnabled bool
	FogNear    float32
	FogFar     float32
	FogColor   [3]float32

	// Ambient light
	AmbientColor [3]float32

	// Directional light
	SunEnabled    bool
	LightDir      [3]float32
	DiffuseColor  [3]float32
	SpecularColor [3]float32

	// Updates counts applier calls; viewers use it to skip unchanged uploads.
	Updates int
}

// NewEnvironment returns an environment with engine defaults: no fog,
// grey ambient, no sun.
func NewEnvironment() *Environment {
	return &Environment{
		AmbientColor: region.DefaultAmbient,
	}
}

// SetFog implements region.EnvironmentApplier.
func (e *Environment) SetFog(color region.Color, near, far float32) {
	e.FogEnabled = true
	e.FogColor = color
	e.FogNear = near
	e.FogFar = far
	e.Updates++
}

// ClearFog implements region.EnvironmentApplier.
func (e *Environment) ClearFog() {
	e.FogEnabled = false
	e.Updates++
}

// SetAmbientLight implements region.EnvironmentApplier.
func (e *Environment) SetAmbientLight(color region.Color) {
	e.AmbientColor = color
	e.Updates++
}

// SetDirectionalLight implements region.EnvironmentApplier.
func (e *Environment) SetDirectionalLight(direction math.Vec3, diffuse, specular region.Color) {
	e.SunEnabled = true
	e.LightDir = direction.Normalize().Array()
	e.DiffuseColor = diffuse
	e.SpecularColor = specular
	e.Updates++
}

// ClearDirectionalLight implements region.EnvironmentApplier.
func (e *Environment) ClearDirectionalLight() {
	e.SunEnabled = false
	e.Updates++
}

// FogFactor returns how much fog covers a fragment at distance d: 0 clear, 1 fully fogged.
func (e *Environment) FogFactor(d float32) float32 {
	if !e.FogEnabled || e.FogFar <= e.FogNear {
		return 0
	}
	f := (d - e.FogNear) / (e.FogFar - e.FogNear)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ClearColor returns the background color: the fog color when fog is on,
// otherwise a dim sky.
func (e *Environment) ClearColor() [3]float32 {
	if e.FogEnabled {
		return e.FogColor
	}
	return [3]float32{0.15, 0.15, 0.2}
}

// String summarizes the environment for logs and the CLI.
func (e *Environment) String() string {
	fog := "off"
	if e.FogEnabled {
		fog = fmt.Sprintf("%.2v near=%g far=%g", e.FogColor, e.FogNear, e.FogFar)
	}
	sun := "off"
	if e.SunEnabled {
		sun = fmt.Sprintf("dir=%.2v diffuse=%.2v specular=%.2v", e.LightDir, e.DiffuseColor, e.SpecularColor)
	}
	return fmt.Sprintf("fog: %s | ambient: %.2v | sun: %s", fog, e.AmbientColor, sun)
}
