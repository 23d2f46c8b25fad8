// Package picker runs the magnifier loop: follow the cursor, show a zoomed
// view of the screen around it, and report the pixel under a primary click.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/1broseidon/loupe/internal/magnify"
	"github.com/1broseidon/loupe/internal/pixel"
	"github.com/1broseidon/loupe/internal/platform"
)

// ErrOutsideScreen is logged when a primary click lands outside the screen.
// It never ends the loop.
var ErrOutsideScreen = errors.New("cursor is outside screen bounds")

// State is the picker's position in its lifecycle.
type State int

const (
	StateRunning State = iota
	StateSamplingFinalPixel
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSamplingFinalPixel:
		return "sampling-final-pixel"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures the loop. The embedded magnify.Options control frame
// composition.
type Options struct {
	magnify.Options
	Offset   int           // distance between cursor and magnifier corner
	Interval time.Duration // idle time between iterations
}

// Result is a completed pick.
type Result struct {
	Color pixel.Pixel
	At    platform.Point
}

// MonitorLocator is implemented by backends that know the monitor layout.
// The magnifier then flips at monitor edges instead of screen edges.
type MonitorLocator interface {
	MonitorAt(p platform.Point) (platform.Rect, bool)
}

// Picker owns the magnifier surface and the pointer grab for one pick.
type Picker struct {
	backend  platform.Backend
	opts     Options
	clock    Clock
	logger   *slog.Logger
	renderer *magnify.Renderer

	surface platform.Surface
	grabbed bool
	drawn   bool
	state   State
	cursor  platform.Point
	result  Result
}

// Option customizes a Picker.
type Option func(*Picker)

// WithClock replaces the wall clock used between iterations.
func WithClock(c Clock) Option {
	return func(p *Picker) {
		p.clock = c
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Picker) {
		p.logger = l
	}
}

// New creates a picker. Nothing is acquired until Start.
func New(backend platform.Backend, opts Options, options ...Option) *Picker {
	p := &Picker{
		backend:  backend,
		opts:     opts,
		clock:    SystemClock{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		renderer: magnify.NewRenderer(opts.Options),
		state:    StateRunning,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// State returns the current lifecycle state.
func (p *Picker) State() State {
	return p.state
}

// Start creates the magnifier surface and grabs the pointer, in that order.
// On failure everything acquired so far is released.
func (p *Picker) Start() error {
	cursor, err := p.backend.CursorPosition()
	if err != nil {
		p.logger.Debug("initial cursor position unavailable", "error", err)
	}
	p.cursor = cursor

	pos := p.place(cursor)
	surface, err := p.backend.CreateSurface(platform.Rect{
		X:      pos.X,
		Y:      pos.Y,
		Width:  p.opts.Size,
		Height: p.opts.Size,
	})
	if err != nil {
		return fmt.Errorf("failed to create magnifier: %w", err)
	}
	p.surface = surface

	if err := p.backend.GrabPointer(); err != nil {
		p.Close()
		return err
	}
	p.grabbed = true
	return nil
}

// Run starts the picker if needed and loops until a pick completes or ctx
// ends.
func (p *Picker) Run(ctx context.Context) (Result, error) {
	if p.surface == nil {
		if err := p.Start(); err != nil {
			return Result{}, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		done, err := p.Step()
		if err != nil {
			return Result{}, err
		}
		if done {
			return p.result, nil
		}
		if err := p.clock.Sleep(ctx, p.opts.Interval); err != nil {
			return Result{}, err
		}
	}
}

// Step runs one iteration: track the cursor, render a frame, move the
// magnifier and drain pending events. It reports true once a pick is done.
func (p *Picker) Step() (bool, error) {
	if p.surface == nil {
		return false, errors.New("picker not started")
	}
	if p.state == StateTerminated {
		return true, nil
	}

	if cursor, err := p.backend.CursorPosition(); err != nil {
		p.logger.Debug("cursor position unavailable", "error", err)
	} else {
		p.cursor = cursor
	}

	p.renderFrame()

	if err := p.surface.Move(p.place(p.cursor)); err != nil {
		p.logger.Debug("failed to move magnifier", "error", err)
	}

	p.drainEvents()
	return p.state == StateTerminated, nil
}

// Close releases the pointer grab and destroys the magnifier. It is safe to
// call more than once.
func (p *Picker) Close() {
	if p.grabbed {
		p.backend.UngrabPointer()
		p.grabbed = false
	}
	if p.surface != nil {
		p.surface.Destroy()
		p.surface = nil
	}
}

// renderFrame samples the capture rectangle around the cursor and draws the
// magnified frame. A failed or empty read skips the frame.
func (p *Picker) renderFrame() {
	screen := p.backend.ScreenBounds()
	size := p.renderer.CaptureSize()
	rect := magnify.CaptureRect(p.cursor, size, size, screen.Width, screen.Height)
	if rect.Empty() {
		return
	}

	src, err := p.backend.ReadRegion(rect)
	if err != nil || src.Empty() {
		p.logger.Debug("skipping frame", "rect", rect, "error", err)
		return
	}

	frame, _ := p.renderer.Render(src)
	if err := p.surface.Draw(frame); err != nil {
		p.logger.Debug("failed to draw frame", "error", err)
		return
	}
	p.drawn = true
}

func (p *Picker) drainEvents() {
	for p.state == StateRunning {
		ev, ok := p.backend.PollEvent()
		if !ok {
			return
		}
		p.dispatch(ev)
	}
}

func (p *Picker) dispatch(ev platform.Event) {
	switch ev.Kind {
	case platform.EventExpose:
		if p.drawn {
			if err := p.surface.Repaint(); err != nil {
				p.logger.Debug("repaint failed", "error", err)
			}
		}
	case platform.EventButtonPress:
		p.handleClick(ev)
	default:
		// Nothing else affects the pick.
	}
}

func (p *Picker) handleClick(ev platform.Event) {
	if ev.Button != platform.ButtonPrimary {
		return
	}
	if !p.backend.ScreenBounds().Contains(ev.Point) {
		p.logger.Warn(ErrOutsideScreen.Error(), "x", ev.Point.X, "y", ev.Point.Y)
		return
	}

	p.state = StateSamplingFinalPixel
	img, err := p.backend.ReadRegion(platform.Rect{X: ev.Point.X, Y: ev.Point.Y, Width: 1, Height: 1})
	if err != nil || img.Empty() {
		p.logger.Warn("failed to read picked pixel", "x", ev.Point.X, "y", ev.Point.Y, "error", err)
		p.state = StateRunning
		return
	}

	p.result = Result{Color: img.PixelAt(0, 0), At: ev.Point}
	p.state = StateTerminated
}

func (p *Picker) place(cursor platform.Point) platform.Point {
	bounds := p.backend.ScreenBounds()
	if ml, ok := p.backend.(MonitorLocator); ok {
		if m, ok := ml.MonitorAt(cursor); ok {
			bounds = m
		}
	}
	return magnify.Place(cursor, p.opts.Size, p.opts.Offset, bounds)
}
