package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/loupe/internal/app"
	"github.com/1broseidon/loupe/internal/config"
	"github.com/1broseidon/loupe/internal/history"
	"github.com/1broseidon/loupe/internal/pixel"
	"github.com/1broseidon/loupe/internal/platform"
)

type nopSurface struct{}

func (nopSurface) Move(platform.Point) error { return nil }
func (nopSurface) Draw(*pixel.Image) error  { return nil }
func (nopSurface) Repaint() error           { return nil }
func (nopSurface) Destroy()                 {}

// solidBackend is a 1920x1080 screen of one color that delivers a single
// primary click at (clickX, clickY).
type solidBackend struct {
	fill           pixel.Pixel
	clickX, clickY int
	clicked        bool
}

func (b *solidBackend) ScreenBounds() platform.Rect { return platform.Rect{Width: 1920, Height: 1080} }
func (b *solidBackend) CursorPosition() (platform.Point, error) {
	return platform.Point{X: b.clickX, Y: b.clickY}, nil
}
func (b *solidBackend) ReadRegion(r platform.Rect) (*pixel.Image, error) {
	img := pixel.NewImage(r.Width, r.Height)
	img.Fill(img.Bounds(), b.fill)
	return img, nil
}
func (b *solidBackend) CreateSurface(platform.Rect) (platform.Surface, error) { return nopSurface{}, nil }
func (b *solidBackend) GrabPointer() error                                   { return nil }
func (b *solidBackend) UngrabPointer()                                       {}
func (b *solidBackend) Close()                                               {}
func (b *solidBackend) PollEvent() (platform.Event, bool) {
	if b.clicked {
		return platform.Event{}, false
	}
	b.clicked = true
	return platform.Event{
		Kind:   platform.EventButtonPress,
		Point:  platform.Point{X: b.clickX, Y: b.clickY},
		Button: platform.ButtonPrimary,
	}, true
}

type instantClock struct{}

func (instantClock) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// setup isolates HOME and XDG_RUNTIME_DIR and captures output.
func setup(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	for _, key := range []string{config.EnvZoom, config.EnvMagnifierSize, config.EnvDotColor, config.EnvCaptureBackend, config.EnvDisplay, config.EnvLogLevel} {
		t.Setenv(key, "")
	}

	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	origOut, origErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = origOut, origErr })
	return out, errOut
}

func stubBackend(t *testing.T, b platform.Backend) {
	t.Helper()
	orig := newService
	newService = func(cfg *config.Config, logger *slog.Logger) *app.Service {
		return app.NewService(cfg, logger,
			app.WithOpen(func(*config.Config, string) (platform.Backend, error) { return b, nil }),
			app.WithEnv(func(k string) string {
				if k == "DISPLAY" {
					return ":0"
				}
				return ""
			}),
			app.WithClock(instantClock{}),
		)
	}
	t.Cleanup(func() { newService = orig })
}

func TestRunHelpAndUnknownCommand(t *testing.T) {
	out, errOut := setup(t)

	if rc := run([]string{"help"}); rc != 0 {
		t.Fatalf("help rc=%d, want 0", rc)
	}
	if !strings.Contains(out.String(), "sample <x> <y>") {
		t.Fatalf("usage missing sample: %q", out.String())
	}

	if rc := run([]string{"frobnicate"}); rc != 2 {
		t.Fatalf("unknown command rc=%d, want 2", rc)
	}
	if !strings.Contains(errOut.String(), "Unknown command: frobnicate") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestRunPickPrintsRedPixel(t *testing.T) {
	out, _ := setup(t)
	stubBackend(t, &solidBackend{fill: 0xFF0000, clickX: 400, clickY: 300})

	if rc := run([]string{"pick"}); rc != 0 {
		t.Fatalf("pick rc=%d, want 0", rc)
	}
	if out.String() != "#FF0000\n" {
		t.Fatalf("stdout = %q, want exactly #FF0000", out.String())
	}

	rec, err := history.LoadLast()
	if err != nil {
		t.Fatalf("LoadLast: %v", err)
	}
	if rec.Hex != "#FF0000" || rec.X != 400 || rec.Y != 300 {
		t.Fatalf("last pick = %+v", rec)
	}
}

func TestRunBareFlagsRunPick(t *testing.T) {
	out, _ := setup(t)
	stubBackend(t, &solidBackend{fill: 0x00FF00, clickX: 1, clickY: 1})

	if rc := run([]string{"--zoom", "4", "--label"}); rc != 0 {
		t.Fatalf("rc=%d, want 0", rc)
	}
	if out.String() != "#00FF00\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestRunPickRejectsInvalidOverrides(t *testing.T) {
	_, errOut := setup(t)
	stubBackend(t, &solidBackend{})

	if rc := run([]string{"pick", "--zoom", "64"}); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
	if !strings.Contains(errOut.String(), "zoom") {
		t.Fatalf("stderr = %q, want zoom error", errOut.String())
	}
	if rc := run([]string{"pick", "extra"}); rc != 2 {
		t.Fatalf("extra args rc=%d, want 2", rc)
	}
}

func TestRunPickFailsWithoutDisplay(t *testing.T) {
	_, errOut := setup(t)
	orig := newService
	newService = func(cfg *config.Config, logger *slog.Logger) *app.Service {
		return app.NewService(cfg, logger, app.WithEnv(func(k string) string {
			if k == "WAYLAND_DISPLAY" {
				return "wayland-0"
			}
			return ""
		}))
	}
	t.Cleanup(func() { newService = orig })

	if rc := run([]string{"pick"}); rc != 1 {
		t.Fatalf("rc=%d, want 1", rc)
	}
	if !strings.Contains(errOut.String(), "Wayland") {
		t.Fatalf("stderr = %q, want Wayland diagnostic", errOut.String())
	}
}

func TestRunSample(t *testing.T) {
	out, _ := setup(t)
	stubBackend(t, &solidBackend{fill: 0x0A0B0C})

	if rc := run([]string{"sample", "10", "20"}); rc != 0 {
		t.Fatalf("rc=%d, want 0", rc)
	}
	if out.String() != "#0A0B0C\n" {
		t.Fatalf("stdout = %q", out.String())
	}

	if _, err := history.LoadLast(); err == nil {
		t.Fatal("sample must not record a last pick")
	}
}

func TestRunSampleUsageErrors(t *testing.T) {
	setup(t)
	stubBackend(t, &solidBackend{})

	for _, args := range [][]string{
		{"sample"},
		{"sample", "1"},
		{"sample", "x", "2"},
	} {
		if rc := run(args); rc != 2 {
			t.Fatalf("run(%v) rc=%d, want 2", args, rc)
		}
	}
	if rc := run([]string{"sample", "5000", "5"}); rc != 1 {
		t.Fatalf("outside screen rc=%d, want 1", rc)
	}
}

func TestRunLast(t *testing.T) {
	out, errOut := setup(t)

	if rc := run([]string{"last"}); rc != 1 {
		t.Fatalf("rc=%d with no pick, want 1", rc)
	}
	if !strings.Contains(errOut.String(), history.ErrNoPick.Error()) {
		t.Fatalf("stderr = %q", errOut.String())
	}

	rec := history.NewRecord(pixel.RGB(1, 2, 3), 7, 8, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := history.SaveLast(rec); err != nil {
		t.Fatalf("SaveLast: %v", err)
	}

	if rc := run([]string{"last"}); rc != 0 {
		t.Fatalf("rc=%d, want 0", rc)
	}
	if out.String() != "#010203\n" {
		t.Fatalf("stdout = %q", out.String())
	}

	out.Reset()
	if rc := run([]string{"last", "--json"}); rc != 0 {
		t.Fatalf("json rc=%d, want 0", rc)
	}
	for _, want := range []string{`"hex": "#010203"`, `"x": 7`, `"picked_at": "2026-01-01T00:00:00Z"`} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("json output missing %s: %q", want, out.String())
		}
	}
}

func TestRunConfig(t *testing.T) {
	out, errOut := setup(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("zoom: 4\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if rc := run([]string{"config", "validate", "--path", path}); rc != 0 {
		t.Fatalf("validate rc=%d, stderr=%q", rc, errOut.String())
	}
	if out.String() != "config: ok\n" {
		t.Fatalf("stdout = %q", out.String())
	}

	out.Reset()
	if rc := run([]string{"config", "print", "--path", path}); rc != 0 {
		t.Fatalf("print rc=%d", rc)
	}
	if !strings.Contains(out.String(), "zoom: 4\n") {
		t.Fatalf("print output missing zoom: %q", out.String())
	}
	if !strings.Contains(out.String(), "# zoom: file:") {
		t.Fatalf("print output missing zoom source: %q", out.String())
	}

	out.Reset()
	if rc := run([]string{"config", "print", "--defaults"}); rc != 0 {
		t.Fatalf("print --defaults rc=%d", rc)
	}
	if !strings.Contains(out.String(), "zoom: 2\n") || !strings.Contains(out.String(), "interval: 10ms\n") {
		t.Fatalf("defaults output = %q", out.String())
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("zoom: 0\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rc := run([]string{"config", "validate", "--path", bad}); rc != 1 {
		t.Fatalf("invalid config rc=%d, want 1", rc)
	}

	if rc := run([]string{"config"}); rc != 2 {
		t.Fatalf("bare config rc=%d, want 2", rc)
	}
}

func TestRunMCPUsage(t *testing.T) {
	setup(t)
	if rc := run([]string{"mcp"}); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
	if rc := run([]string{"mcp", "serve", "--help"}); rc != 0 {
		t.Fatalf("serve --help rc=%d, want 0", rc)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 2, Column: 7}, "file:/c.yaml:2:7"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceEnv, Name: config.EnvZoom}, "env:LOUPE_ZOOM"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestWriteSwatch(t *testing.T) {
	var buf bytes.Buffer
	writeSwatch(&buf, pixel.RGB(255, 128, 0))
	want := "\x1b[48;2;255;128;0m      \x1b[0m #FF8000 rgb(255, 128, 0)\n"
	if buf.String() != want {
		t.Fatalf("swatch = %q, want %q", buf.String(), want)
	}
	if isTerminal(&buf) {
		t.Fatal("buffer reported as terminal")
	}
}
