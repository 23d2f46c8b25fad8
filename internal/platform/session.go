package platform

import (
	"errors"
	"strings"
)

// ErrWaylandSession is returned when no X display is reachable because the
// session is running a pure Wayland compositor.
var ErrWaylandSession = errors.New("Wayland sessions are not supported; run under X11 or XWayland (set DISPLAY)")

// CheckSession reports whether an X display can be expected. display is an
// explicit override (config or flag); getenv is normally os.Getenv.
func CheckSession(display string, getenv func(string) string) error {
	if strings.TrimSpace(display) != "" {
		return nil
	}
	if strings.TrimSpace(getenv("DISPLAY")) != "" {
		return nil
	}
	if strings.TrimSpace(getenv("WAYLAND_DISPLAY")) != "" {
		return ErrWaylandSession
	}
	return errors.New("cannot open display: DISPLAY is not set")
}
