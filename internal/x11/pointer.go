package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
)

// CursorPosition returns the pointer position in root coordinates as
// reported by XFixes. RequireXFixes must have succeeded first.
func (c *Connection) CursorPosition() (x, y int, err error) {
	img, err := xfixes.GetCursorImage(c.XUtil.Conn()).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get cursor image: %w", err)
	}
	return int(img.X), int(img.Y), nil
}

// GrabPointer takes an exclusive grab of button presses on the root window.
// Pointer motion still reaches the server, so the cursor keeps moving.
func (c *Connection) GrabPointer() error {
	reply, err := xproto.GrabPointer(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskButtonPress,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		xproto.CursorNone,
		xproto.TimeCurrentTime,
	).Reply()
	if err != nil {
		return fmt.Errorf("failed to grab the pointer: %w", err)
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("failed to grab the pointer: %s", grabStatusString(reply.Status))
	}
	return nil
}

// UngrabPointer releases a grab taken by GrabPointer.
func (c *Connection) UngrabPointer() {
	xproto.UngrabPointer(c.XUtil.Conn(), xproto.TimeCurrentTime)
	c.XUtil.Sync()
}

func grabStatusString(status byte) string {
	switch status {
	case xproto.GrabStatusAlreadyGrabbed:
		return "already grabbed by another client"
	case xproto.GrabStatusInvalidTime:
		return "invalid time"
	case xproto.GrabStatusNotViewable:
		return "grab window not viewable"
	case xproto.GrabStatusFrozen:
		return "pointer frozen by another grab"
	default:
		return fmt.Sprintf("status %d", status)
	}
}
