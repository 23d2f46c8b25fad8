package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/loupe/internal/pixel"
)

// Capture backends.
const (
	CaptureBackendX11        = "x11"
	CaptureBackendScreenshot = "screenshot"
)

const (
	DefaultMagnifierSize = 100
	DefaultZoom          = 2
	DefaultDotSize       = 4
	DefaultDotOpacity    = 0.5
	DefaultDotColor      = "#FF0000"
	DefaultOffset        = 20
	DefaultInterval      = 10 * time.Millisecond
	DefaultCopyHold      = 30 * time.Second

	minMagnifierSize = 10
	maxMagnifierSize = 1000
	maxZoom          = 32
)

// Config is the effective configuration after defaults, file values and
// environment overrides have been applied.
type Config struct {
	MagnifierSize  int           `yaml:"magnifier_size"`
	Zoom           int           `yaml:"zoom"`
	DotSize        int           `yaml:"dot_size"`
	DotOpacity     float64       `yaml:"dot_opacity"`
	DotColor       string        `yaml:"dot_color"`
	Offset         int           `yaml:"offset"`          // distance from cursor to magnifier
	Interval       time.Duration `yaml:"interval"`        // pause between frames
	CaptureBackend string        `yaml:"capture_backend"` // x11 or screenshot
	ShowLabel      bool          `yaml:"show_label"`
	Copy           bool          `yaml:"copy"`
	CopyHold       time.Duration `yaml:"copy_hold"` // how long to keep owning the clipboard
	Swatch         bool          `yaml:"swatch"`
	Display        string        `yaml:"display"`
	LogLevel       string        `yaml:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		MagnifierSize:  DefaultMagnifierSize,
		Zoom:           DefaultZoom,
		DotSize:        DefaultDotSize,
		DotOpacity:     DefaultDotOpacity,
		DotColor:       DefaultDotColor,
		Offset:         DefaultOffset,
		Interval:       DefaultInterval,
		CaptureBackend: CaptureBackendX11,
		CopyHold:       DefaultCopyHold,
		Swatch:         true,
		LogLevel:       "warning",
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.MagnifierSize < minMagnifierSize || c.MagnifierSize > maxMagnifierSize {
		return &ValidationError{Path: "magnifier_size", Err: fmt.Errorf("magnifier_size must be between %d and %d", minMagnifierSize, maxMagnifierSize)}
	}
	if c.Zoom < 1 || c.Zoom > maxZoom {
		return &ValidationError{Path: "zoom", Err: fmt.Errorf("zoom must be between 1 and %d", maxZoom)}
	}
	if c.MagnifierSize/c.Zoom < 1 {
		return &ValidationError{Path: "zoom", Err: fmt.Errorf("zoom %d leaves no pixels to capture for magnifier_size %d", c.Zoom, c.MagnifierSize)}
	}
	if c.DotSize < 0 || c.DotSize > c.MagnifierSize {
		return &ValidationError{Path: "dot_size", Err: fmt.Errorf("dot_size must be between 0 and magnifier_size")}
	}
	if c.DotOpacity < 0 || c.DotOpacity > 1 {
		return &ValidationError{Path: "dot_opacity", Err: fmt.Errorf("dot_opacity must be between 0 and 1")}
	}
	if _, err := pixel.ParseHex(c.DotColor); err != nil {
		return &ValidationError{Path: "dot_color", Err: err}
	}
	if c.Offset < 0 {
		return &ValidationError{Path: "offset", Err: fmt.Errorf("offset must be >= 0")}
	}
	if c.Interval <= 0 {
		return &ValidationError{Path: "interval", Err: fmt.Errorf("interval must be > 0")}
	}
	switch c.CaptureBackend {
	case CaptureBackendX11, CaptureBackendScreenshot:
	default:
		return &ValidationError{Path: "capture_backend", Err: fmt.Errorf("capture_backend must be one of: x11, screenshot")}
	}
	if c.CopyHold < 0 {
		return &ValidationError{Path: "copy_hold", Err: fmt.Errorf("copy_hold must be >= 0")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// DotPixel returns the parsed dot color. Call after Validate.
func (c *Config) DotPixel() pixel.Pixel {
	p, err := pixel.ParseHex(c.DotColor)
	if err != nil {
		return pixel.RGB(0xFF, 0, 0)
	}
	return p
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Save writes the configuration to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration as YAML to path, creating parent
// directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
