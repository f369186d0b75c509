package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load builds the viewer configuration: defaults, then the config file, then flags.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)
	return cfg, nil
}

// findConfigFile returns the first of worldedit.yaml in the working directory
// or config.yaml in ConfigDir that exists, or "".
func findConfigFile() string {
	for _, path := range []string{
		"worldedit.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory of the editor.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base, _ = os.Getwd()
	}
	name := "worldedit"
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		name = "WorldEdit"
	}
	return filepath.Join(base, name)
}

// loadFromFile merges a YAML file into cfg. Paths the file sets relative
// (world file, screenshot directory) are taken relative to the file itself,
// so a config can travel with its maps.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var set Config
	if err := yaml.Unmarshal(data, &set); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	cfg.World.Path = relativeTo(dir, set.World.Path, cfg.World.Path)
	cfg.Viewer.ScreenshotDir = relativeTo(dir, set.Viewer.ScreenshotDir, cfg.Viewer.ScreenshotDir)
	return nil
}

// relativeTo resolves p against dir when the file set p; otherwise it keeps current.
func relativeTo(dir, p, current string) string {
	if p == "" || filepath.IsAbs(p) {
		return current
	}
	return filepath.Join(dir, p)
}
