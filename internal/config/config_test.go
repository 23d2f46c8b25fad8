package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.MagnifierSize != 100 || cfg.Zoom != 2 || cfg.DotSize != 4 || cfg.DotOpacity != 0.5 {
		t.Fatalf("unexpected magnifier defaults: %+v", cfg)
	}
	if cfg.DotPixel().Hex() != "#FF0000" {
		t.Fatalf("default dot color = %s, want #FF0000", cfg.DotPixel().Hex())
	}
	if cfg.Interval != 10*time.Millisecond {
		t.Fatalf("default interval = %v, want 10ms", cfg.Interval)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	res, err := loadFromPath(filepath.Join(dir, "config.yaml"), noEnv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *res.Config != *DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
	if src := res.SourceOf("zoom"); src.Kind != SourceDefault {
		t.Fatalf("zoom source = %+v, want default", src)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := loadFromPath(path, noEnv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Zoom != DefaultZoom {
		t.Fatalf("expected zoom %d, got %d", DefaultZoom, res.Config.Zoom)
	}
}

func TestLoadFromPath_FileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"magnifier_size: 160",
		"zoom: 4",
		"dot_color: \"#00ff00\"",
		"interval: 25ms",
		"capture_backend: Screenshot",
		"show_label: true",
		"copy: true",
		"copy_hold: 5s",
		"swatch: false",
		"display: \":1\"",
		"log_level: debug",
		"",
	}, "\n"))

	res, err := loadFromPath(path, noEnv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.MagnifierSize != 160 || cfg.Zoom != 4 {
		t.Fatalf("size/zoom = %d/%d, want 160/4", cfg.MagnifierSize, cfg.Zoom)
	}
	if cfg.DotPixel().Hex() != "#00FF00" {
		t.Fatalf("dot color = %s, want #00FF00", cfg.DotPixel().Hex())
	}
	if cfg.Interval != 25*time.Millisecond || cfg.CopyHold != 5*time.Second {
		t.Fatalf("durations = %v/%v", cfg.Interval, cfg.CopyHold)
	}
	if cfg.CaptureBackend != CaptureBackendScreenshot {
		t.Fatalf("capture_backend = %q", cfg.CaptureBackend)
	}
	if !cfg.ShowLabel || !cfg.Copy || cfg.Swatch {
		t.Fatalf("bools = label:%v copy:%v swatch:%v", cfg.ShowLabel, cfg.Copy, cfg.Swatch)
	}
	if cfg.Display != ":1" {
		t.Fatalf("display = %q, want :1", cfg.Display)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("slog level = %v, want debug", cfg.SlogLevel())
	}

	src := res.SourceOf("zoom")
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("zoom source = %+v, want file line 2", src)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "zoom: 2\nmagnification: 4\n")

	_, err := loadFromPath(path, noEnv)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "magnification") {
		t.Fatalf("expected error to mention unknown key, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "offset: 5\nzoom: 64\n")

	_, err := loadFromPath(path, noEnv)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "zoom" {
		t.Fatalf("path = %q, want zoom", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("source line = %d, want 2", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), "config.yaml:2:") {
		t.Fatalf("error %q lacks file position", err)
	}
}

func TestLoadFromPath_BadDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "interval: soon\n")

	_, err := loadFromPath(path, noEnv)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "interval" {
		t.Fatalf("expected interval ValidationError, got %v", err)
	}
}

func TestLoadFromPath_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "zoom: 4\ndot_color: blue\n")

	res, err := loadFromPath(path, envMap(map[string]string{
		EnvZoom:     "5",
		EnvLogLevel: "INFO",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Zoom != 5 {
		t.Fatalf("zoom = %d, want env value 5", res.Config.Zoom)
	}
	if res.Config.LogLevel != "info" {
		t.Fatalf("log_level = %q, want info", res.Config.LogLevel)
	}
	if res.Config.DotPixel().Hex() != "#0000FF" {
		t.Fatalf("dot color = %s, want file value #0000FF", res.Config.DotPixel().Hex())
	}
	if src := res.SourceOf("zoom"); src.Kind != SourceEnv || src.Name != EnvZoom {
		t.Fatalf("zoom source = %+v, want env %s", src, EnvZoom)
	}
}

func TestLoadFromPath_EnvFileFallsBehindProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, filepath.Join(dir, envFileName), strings.Join([]string{
		"LOUPE_ZOOM=3",
		"LOUPE_CAPTURE_BACKEND=screenshot",
		"LOUPE_MAGNIFIER_SIZE=120",
		"",
	}, "\n"))

	res, err := loadFromPath(path, envMap(map[string]string{EnvMagnifierSize: "200"}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Zoom != 3 {
		t.Fatalf("zoom = %d, want env file value 3", res.Config.Zoom)
	}
	if res.Config.CaptureBackend != CaptureBackendScreenshot {
		t.Fatalf("capture_backend = %q, want screenshot", res.Config.CaptureBackend)
	}
	if res.Config.MagnifierSize != 200 {
		t.Fatalf("magnifier_size = %d, want process env value 200", res.Config.MagnifierSize)
	}
	if len(res.Files) != 1 || filepath.Base(res.Files[0]) != envFileName {
		t.Fatalf("files = %v, want env file", res.Files)
	}
}

func TestLoadFromPath_InvalidEnvInteger(t *testing.T) {
	dir := t.TempDir()
	_, err := loadFromPath(filepath.Join(dir, "config.yaml"), envMap(map[string]string{EnvZoom: "two"}))
	if err == nil || !strings.HasPrefix(err.Error(), EnvZoom+": zoom:") {
		t.Fatalf("expected env-sourced zoom error, got %v", err)
	}
}

func TestLoadFromPath_ProcessEnv(t *testing.T) {
	t.Setenv(EnvDisplay, ":7")
	dir := t.TempDir()
	res, err := LoadFromPath(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Display != ":7" {
		t.Fatalf("display = %q, want :7", res.Config.Display)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"size too small", func(c *Config) { c.MagnifierSize = 9 }, "magnifier_size"},
		{"size too large", func(c *Config) { c.MagnifierSize = 1001 }, "magnifier_size"},
		{"zoom zero", func(c *Config) { c.Zoom = 0 }, "zoom"},
		{"zoom exceeds size", func(c *Config) { c.MagnifierSize = 10; c.Zoom = 11 }, "zoom"},
		{"negative dot", func(c *Config) { c.DotSize = -1 }, "dot_size"},
		{"dot larger than magnifier", func(c *Config) { c.DotSize = 101 }, "dot_size"},
		{"opacity above one", func(c *Config) { c.DotOpacity = 1.5 }, "dot_opacity"},
		{"bad color", func(c *Config) { c.DotColor = "#GG0000" }, "dot_color"},
		{"negative offset", func(c *Config) { c.Offset = -1 }, "offset"},
		{"zero interval", func(c *Config) { c.Interval = 0 }, "interval"},
		{"unknown backend", func(c *Config) { c.CaptureBackend = "wayland" }, "capture_backend"},
		{"negative hold", func(c *Config) { c.CopyHold = -time.Second }, "copy_hold"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestValidate_Boundaries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MagnifierSize = 10
	cfg.Zoom = 10
	cfg.DotSize = 0
	cfg.DotOpacity = 1
	cfg.Offset = 0
	cfg.CopyHold = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected boundary values to validate, got %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for level, want := range tests {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		if got := cfg.SlogLevel(); got != want {
			t.Fatalf("SlogLevel(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Zoom = 8
	cfg.Interval = 40 * time.Millisecond
	cfg.Copy = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := loadFromPath(path, noEnv)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if *res.Config != *cfg {
		t.Fatalf("loaded %+v, want %+v", res.Config, cfg)
	}
}
