// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Viewer   ViewerConfig   `yaml:"viewer"`
	World    WorldConfig    `yaml:"world"`
	Resolver ResolverConfig `yaml:"resolver"`
	Audio    AudioConfig    `yaml:"audio"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ViewerConfig holds window and camera settings.
type ViewerConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	PanSpeed   float32 `yaml:"pan_speed"` // World units per second

	ScreenshotDir string `yaml:"screenshot_dir"`
}

// WorldConfig holds the world file to open.
type WorldConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"` // Reload when the file changes on disk
}

// ResolverConfig holds region resolution settings.
type ResolverConfig struct {
	Cache bool `yaml:"cache"`
}

// AudioConfig holds region ambience settings.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"` // Master volume, 0.0 to 1.0
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			PanSpeed:   40,

			ScreenshotDir: "screenshots",
		},
		World: WorldConfig{
			Path:  "",
			Watch: false,
		},
		Resolver: ResolverConfig{
			Cache: true,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
