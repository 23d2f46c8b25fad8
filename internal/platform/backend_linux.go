//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/loupe/internal/pixel"
	"github.com/1broseidon/loupe/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn     *x11.Connection
	reader   RegionReader
	monitors []x11.Monitor
}

var _ Backend = (*LinuxBackend)(nil)

// Option customizes a LinuxBackend.
type Option func(*LinuxBackend)

// WithRegionReader replaces the native X11 screen reader.
func WithRegionReader(r RegionReader) Option {
	return func(b *LinuxBackend) {
		b.reader = r
	}
}

// NewLinuxBackendFromDisplay opens a connection to display ("" for $DISPLAY)
// and acquires the capabilities the picker depends on. Resources are
// acquired in order: connection, XFixes, pixmap format. Any failure closes
// what was already opened.
func NewLinuxBackendFromDisplay(display string, opts ...Option) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("cannot open display: %w", err)
	}

	b := &LinuxBackend{conn: conn}
	for _, opt := range opts {
		opt(b)
	}

	if err := conn.RequireXFixes(); err != nil {
		conn.Close()
		return nil, err
	}
	if b.reader == nil {
		if err := conn.CheckPixmapFormat(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	// Monitor layout only refines magnifier placement; the root size is
	// always available as a fallback.
	if monitors, err := conn.GetMonitors(); err == nil {
		b.monitors = monitors
	}

	return b, nil
}

// Close disconnects from the X server.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

// ScreenBounds returns the root window rectangle.
func (b *LinuxBackend) ScreenBounds() Rect {
	w, h := b.conn.ScreenSize()
	return Rect{Width: w, Height: h}
}

// MonitorAt returns the bounds of the monitor containing p.
func (b *LinuxBackend) MonitorAt(p Point) (Rect, bool) {
	m, ok := x11.MonitorAt(b.monitors, p.X, p.Y)
	if !ok {
		return Rect{}, false
	}
	return Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}, true
}

// CursorPosition returns the pointer position in root coordinates.
func (b *LinuxBackend) CursorPosition() (Point, error) {
	x, y, err := b.conn.CursorPosition()
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// ReadRegion reads r from the screen.
func (b *LinuxBackend) ReadRegion(r Rect) (*pixel.Image, error) {
	if b.reader != nil {
		return b.reader.ReadRegion(r)
	}
	return b.conn.ReadRegion(r.X, r.Y, r.Width, r.Height)
}

// CreateSurface creates the magnifier window. The surface is square with
// side bounds.Width.
func (b *LinuxBackend) CreateSurface(bounds Rect) (Surface, error) {
	m, err := b.conn.NewMagnifier(bounds.X, bounds.Y, bounds.Width)
	if err != nil {
		return nil, err
	}
	return &magnifierSurface{m: m}, nil
}

// GrabPointer takes the exclusive pointer grab.
func (b *LinuxBackend) GrabPointer() error {
	return b.conn.GrabPointer()
}

// UngrabPointer releases the pointer grab.
func (b *LinuxBackend) UngrabPointer() {
	b.conn.UngrabPointer()
}

// PollEvent translates the next queued X event.
func (b *LinuxBackend) PollEvent() (Event, bool) {
	ev, ok := b.conn.PollEvent()
	if !ok {
		return Event{}, false
	}

	switch e := ev.(type) {
	case xproto.ExposeEvent:
		// Only the last event of an expose series triggers a repaint.
		if e.Count == 0 {
			return Event{Kind: EventExpose}, true
		}
	case xproto.ButtonPressEvent:
		return Event{
			Kind:   EventButtonPress,
			Point:  Point{X: int(e.RootX), Y: int(e.RootY)},
			Button: int(e.Detail),
		}, true
	}
	return Event{Kind: EventOther}, true
}

type magnifierSurface struct {
	m *x11.Magnifier
}

func (s *magnifierSurface) Move(p Point) error {
	s.m.Move(p.X, p.Y)
	return nil
}

func (s *magnifierSurface) Draw(img *pixel.Image) error {
	return s.m.Draw(img)
}

func (s *magnifierSurface) Repaint() error {
	s.m.Repaint()
	return nil
}

func (s *magnifierSurface) Destroy() {
	s.m.Destroy()
}
