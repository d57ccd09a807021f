package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds every tunable of a portal build. Values come from viper
// (defaults, portal.yaml, PORTAL_* environment) with flags layered on top
// by the command layer.
type Config struct {
	Title       string `mapstructure:"title" yaml:"title"`
	Description string `mapstructure:"description" yaml:"description"`
	OutputDir   string `mapstructure:"outputDir" yaml:"outputDir"`

	DownloadTimeout time.Duration `mapstructure:"downloadTimeout" yaml:"downloadTimeout"`

	// MaxAssetWidth caps downloaded and captured images; wider ones are
	// downscaled before being written. Local copies are never touched.
	MaxAssetWidth int `mapstructure:"maxAssetWidth" yaml:"maxAssetWidth"`

	Viewport    Viewport    `mapstructure:"viewport" yaml:"viewport"`
	Screenshots Screenshots `mapstructure:"screenshots" yaml:"screenshots"`
}

// Viewport is both the browser viewport for screenshots and the canvas
// size for generated placeholders.
type Viewport struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// Screenshots configures the headless-browser fallback.
type Screenshots struct {
	Enabled           bool          `mapstructure:"enabled" yaml:"enabled"`
	FullPage          bool          `mapstructure:"fullPage" yaml:"fullPage"`
	NavigationTimeout time.Duration `mapstructure:"navigationTimeout" yaml:"navigationTimeout"`
}

// Default returns the configuration used when no file, env or flag says
// otherwise.
func Default() Config {
	return Config{
		Description:     "Favorite shortcuts",
		OutputDir:       "portal",
		DownloadTimeout: 30 * time.Second,
		MaxAssetWidth:   1600,
		Viewport:        Viewport{Width: 1280, Height: 800},
		Screenshots: Screenshots{
			NavigationTimeout: 20 * time.Second,
		},
	}
}

// Validate rejects values the pipeline cannot work with.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("outputDir must not be empty")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport dimensions must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("downloadTimeout must be positive")
	}
	if c.Screenshots.NavigationTimeout <= 0 {
		return fmt.Errorf("screenshots.navigationTimeout must be positive")
	}
	return nil
}

// WriteDefault writes a starter portal.yaml. It refuses to clobber an
// existing file. Durations are written as strings ("30s") so the file
// stays editable by hand.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists, not overwriting", path)
	}

	d := Default()
	out := struct {
		Title           string   `yaml:"title"`
		Description     string   `yaml:"description"`
		OutputDir       string   `yaml:"outputDir"`
		DownloadTimeout string   `yaml:"downloadTimeout"`
		MaxAssetWidth   int      `yaml:"maxAssetWidth"`
		Viewport        Viewport `yaml:"viewport"`
		Screenshots     struct {
			Enabled           bool   `yaml:"enabled"`
			FullPage          bool   `yaml:"fullPage"`
			NavigationTimeout string `yaml:"navigationTimeout"`
		} `yaml:"screenshots"`
	}{
		Title:           d.Title,
		Description:     d.Description,
		OutputDir:       d.OutputDir,
		DownloadTimeout: d.DownloadTimeout.String(),
		MaxAssetWidth:   d.MaxAssetWidth,
		Viewport:        d.Viewport,
	}
	out.Screenshots.Enabled = d.Screenshots.Enabled
	out.Screenshots.FullPage = d.Screenshots.FullPage
	out.Screenshots.NavigationTimeout = d.Screenshots.NavigationTimeout.String()

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
