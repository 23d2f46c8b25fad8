package platform

import "github.com/1broseidon/loupe/internal/pixel"

// Point is a position in root-window (screen) coordinates.
type Point struct {
	X int
	Y int
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether p lies inside [X, X+Width) x [Y, Y+Height).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// EventKind tags the payload carried by an Event.
type EventKind int

const (
	EventNone EventKind = iota
	EventExpose
	EventButtonPress
	EventOther
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventExpose:
		return "expose"
	case EventButtonPress:
		return "button-press"
	default:
		return "other"
	}
}

// ButtonPrimary is the primary (usually left) pointer button.
const ButtonPrimary = 1

// Event is a window-system event reduced to what the picker consumes.
// Point and Button are only meaningful for EventButtonPress.
type Event struct {
	Kind   EventKind
	Point  Point
	Button int
}

// Surface is an undecorated, always-on-top window owned by the caller.
type Surface interface {
	// Move places the surface's top-left corner at p.
	Move(p Point) error
	// Draw blits img into the surface and keeps it for later repaints.
	Draw(img *pixel.Image) error
	// Repaint redraws the last image passed to Draw.
	Repaint() error
	Destroy()
}

// RegionReader reads a rectangle of the current screen contents.
type RegionReader interface {
	ReadRegion(r Rect) (*pixel.Image, error)
}

// Backend abstracts the window-system services the picker needs.
type Backend interface {
	RegionReader

	ScreenBounds() Rect
	CursorPosition() (Point, error)
	CreateSurface(bounds Rect) (Surface, error)
	GrabPointer() error
	UngrabPointer()
	// PollEvent returns the next queued event without blocking. ok is false
	// when the queue is empty.
	PollEvent() (ev Event, ok bool)
	Close()
}
