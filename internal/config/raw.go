package config

import (
	"fmt"
	"strings"
	"time"
)

// RawConfig mirrors the YAML file. Pointer fields distinguish "unset" from a
// zero value so layers can be merged over the defaults.
type RawConfig struct {
	MagnifierSize  *int     `yaml:"magnifier_size"`
	Zoom           *int     `yaml:"zoom"`
	DotSize        *int     `yaml:"dot_size"`
	DotOpacity     *float64 `yaml:"dot_opacity"`
	DotColor       *string  `yaml:"dot_color"`
	Offset         *int     `yaml:"offset"`
	Interval       *string  `yaml:"interval"`
	CaptureBackend *string  `yaml:"capture_backend"`
	ShowLabel      *bool    `yaml:"show_label"`
	Copy           *bool    `yaml:"copy"`
	CopyHold       *string  `yaml:"copy_hold"`
	Swatch         *bool    `yaml:"swatch"`
	Display        *string  `yaml:"display"`
	LogLevel       *string  `yaml:"log_level"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.MagnifierSize != nil {
		out.MagnifierSize = overlay.MagnifierSize
	}
	if overlay.Zoom != nil {
		out.Zoom = overlay.Zoom
	}
	if overlay.DotSize != nil {
		out.DotSize = overlay.DotSize
	}
	if overlay.DotOpacity != nil {
		out.DotOpacity = overlay.DotOpacity
	}
	if overlay.DotColor != nil {
		out.DotColor = overlay.DotColor
	}
	if overlay.Offset != nil {
		out.Offset = overlay.Offset
	}
	if overlay.Interval != nil {
		out.Interval = overlay.Interval
	}
	if overlay.CaptureBackend != nil {
		out.CaptureBackend = overlay.CaptureBackend
	}
	if overlay.ShowLabel != nil {
		out.ShowLabel = overlay.ShowLabel
	}
	if overlay.Copy != nil {
		out.Copy = overlay.Copy
	}
	if overlay.CopyHold != nil {
		out.CopyHold = overlay.CopyHold
	}
	if overlay.Swatch != nil {
		out.Swatch = overlay.Swatch
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}

	return out
}

// BuildEffectiveConfig applies raw over DefaultConfig. It only fails on
// values that cannot be converted; range checks are left to Validate.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.MagnifierSize != nil {
		cfg.MagnifierSize = *raw.MagnifierSize
	}
	if raw.Zoom != nil {
		cfg.Zoom = *raw.Zoom
	}
	if raw.DotSize != nil {
		cfg.DotSize = *raw.DotSize
	}
	if raw.DotOpacity != nil {
		cfg.DotOpacity = *raw.DotOpacity
	}
	if raw.DotColor != nil {
		cfg.DotColor = strings.TrimSpace(*raw.DotColor)
	}
	if raw.Offset != nil {
		cfg.Offset = *raw.Offset
	}
	if raw.Interval != nil {
		d, err := parseDuration(*raw.Interval)
		if err != nil {
			return nil, &ValidationError{Path: "interval", Err: err}
		}
		cfg.Interval = d
	}
	if raw.CaptureBackend != nil {
		cfg.CaptureBackend = strings.ToLower(strings.TrimSpace(*raw.CaptureBackend))
	}
	if raw.ShowLabel != nil {
		cfg.ShowLabel = *raw.ShowLabel
	}
	if raw.Copy != nil {
		cfg.Copy = *raw.Copy
	}
	if raw.CopyHold != nil {
		d, err := parseDuration(*raw.CopyHold)
		if err != nil {
			return nil, &ValidationError{Path: "copy_hold", Err: err}
		}
		cfg.CopyHold = d
	}
	if raw.Swatch != nil {
		cfg.Swatch = *raw.Swatch
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}

	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
