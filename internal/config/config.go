// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"math"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Overlay  OverlayConfig  `yaml:"overlay"`
	Scene    SceneConfig    `yaml:"scene"`
	Controls ControlsConfig `yaml:"controls"`
	Assets   AssetsConfig   `yaml:"assets"`
	Remote   RemoteConfig   `yaml:"remote"`
	Logging  LoggingConfig  `yaml:"logging"`

	Debug         bool   `yaml:"debug"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
}

// OverlayConfig holds loading-overlay settings.
type OverlayConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BarColor string `yaml:"bar_color"`
}

// SceneConfig holds model selection and scene behavior settings.
type SceneConfig struct {
	ModelPaths []string            `yaml:"model_paths"`
	KeyModels  map[string]KeyModel `yaml:"key_models"`

	Rotation       [3]float32 `yaml:"rotation"`       // radians, applied to every asset
	AutoRotate     bool       `yaml:"auto_rotate"`
	RotationSpeed  float32    `yaml:"rotation_speed"` // radians per second
	CameraPosition [3]float32 `yaml:"camera_position"`

	LightIntensity   float32    `yaml:"light_intensity"`
	AmbientIntensity float32    `yaml:"ambient_light_intensity"`
	EnableShadow     bool       `yaml:"enable_shadow"`
	ShadowAngle      [3]float32 `yaml:"shadow_angle"`
}

// KeyModel is an off/on pair of asset paths bound to one key.
type KeyModel struct {
	Off string `yaml:"off"`
	On  string `yaml:"on"`
}

// ControlsConfig holds orbit camera control settings.
type ControlsConfig struct {
	Enabled            bool    `yaml:"enabled"`
	EnableDamping      bool    `yaml:"enable_damping"`
	DampingFactor      float32 `yaml:"damping_factor"`
	ScreenSpacePanning bool    `yaml:"screen_space_panning"`
	MinDistance        float32 `yaml:"min_distance"`
	MaxDistance        float32 `yaml:"max_distance"`
	MaxPolarAngle      float32 `yaml:"max_polar_angle"`
	EnablePan          bool    `yaml:"enable_pan"`
	EnableZoom         bool    `yaml:"enable_zoom"`
}

// AssetsConfig holds asset source settings.
type AssetsConfig struct {
	Dir          string        `yaml:"dir"`      // base directory for relative model paths
	BaseURL      string        `yaml:"base_url"` // if set, models are fetched over HTTP instead
	Watch        bool          `yaml:"watch"`    // reload models when their files change
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// RemoteConfig holds the remote inspection server settings.
type RemoteConfig struct {
	Addr string `yaml:"addr"` // empty disables the server
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Showroom",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Overlay: OverlayConfig{
			Enabled:  true,
			BarColor: "#4a90d9",
		},
		Scene: SceneConfig{
			RotationSpeed:    0.6,
			CameraPosition:   [3]float32{0, 1, 3},
			LightIntensity:   1.0,
			AmbientIntensity: 0.5,
			EnableShadow:     false,
			ShadowAngle:      [3]float32{0, 1, 0},
		},
		Controls: ControlsConfig{
			Enabled:            true,
			EnableDamping:      true,
			DampingFactor:      0.05,
			ScreenSpacePanning: false,
			MinDistance:        1,
			MaxDistance:        10,
			MaxPolarAngle:      math.Pi / 2,
			EnablePan:          true,
			EnableZoom:         true,
		},
		Assets: AssetsConfig{
			Dir:          ".",
			FetchTimeout: 10 * time.Second,
		},
		Remote: RemoteConfig{
			Addr: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		ScreenshotDir: "screenshots",
	}
}

// Validate checks settings the YAML schema cannot express.
func (c *Config) Validate() error {
	if len(c.Scene.ModelPaths) == 0 {
		return fmt.Errorf("at least one model path is required")
	}
	if c.Controls.MinDistance > c.Controls.MaxDistance {
		return fmt.Errorf("controls: min_distance %g exceeds max_distance %g",
			c.Controls.MinDistance, c.Controls.MaxDistance)
	}
	if _, err := c.Slots(); err != nil {
		return err
	}
	return nil
}
