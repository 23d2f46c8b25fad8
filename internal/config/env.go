package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override config keys.
const (
	EnvZoom           = "LOUPE_ZOOM"
	EnvMagnifierSize  = "LOUPE_MAGNIFIER_SIZE"
	EnvDotColor       = "LOUPE_DOT_COLOR"
	EnvCaptureBackend = "LOUPE_CAPTURE_BACKEND"
	EnvDisplay        = "LOUPE_DISPLAY"
	EnvLogLevel       = "LOUPE_LOG_LEVEL"
)

// readDotenv parses the optional env file. A missing file yields no values.
func readDotenv(path string) (map[string]string, error) {
	exists, err := pathExists(path)
	if err != nil || !exists {
		return map[string]string{}, err
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// envOverrides builds a raw layer from LOUPE_* variables. The process
// environment wins over the env file.
func envOverrides(lookup func(string) (string, bool), dotenv map[string]string) (RawConfig, map[string]Source, error) {
	var raw RawConfig
	sources := map[string]Source{}

	get := func(name string) (string, bool) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
		if v := strings.TrimSpace(dotenv[name]); v != "" {
			return v, true
		}
		return "", false
	}

	intVar := func(name, key string) (*int, error) {
		v, ok := get(name)
		if !ok {
			return nil, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ValidationError{
				Path:   key,
				Source: Source{Kind: SourceEnv, Name: name},
				Err:    fmt.Errorf("invalid integer %q", v),
			}
		}
		sources[key] = Source{Kind: SourceEnv, Name: name}
		return &n, nil
	}

	stringVar := func(name, key string) *string {
		v, ok := get(name)
		if !ok {
			return nil
		}
		sources[key] = Source{Kind: SourceEnv, Name: name}
		return &v
	}

	var err error
	if raw.Zoom, err = intVar(EnvZoom, "zoom"); err != nil {
		return RawConfig{}, nil, err
	}
	if raw.MagnifierSize, err = intVar(EnvMagnifierSize, "magnifier_size"); err != nil {
		return RawConfig{}, nil, err
	}
	raw.DotColor = stringVar(EnvDotColor, "dot_color")
	raw.CaptureBackend = stringVar(EnvCaptureBackend, "capture_backend")
	raw.Display = stringVar(EnvDisplay, "display")
	raw.LogLevel = stringVar(EnvLogLevel, "log_level")

	return raw, sources, nil
}
