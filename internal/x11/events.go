package x11

import (
	"log/slog"

	"github.com/BurntSushi/xgb"
)

// PollEvent returns the next queued X event without blocking. Protocol
// errors are logged and skipped. ok is false once the queue is empty.
func (c *Connection) PollEvent() (ev xgb.Event, ok bool) {
	for {
		ev, xerr := c.XUtil.Conn().PollForEvent()
		if ev == nil && xerr == nil {
			return nil, false
		}
		if xerr != nil {
			slog.Debug("x11 protocol error", "error", xerr)
			continue
		}
		return ev, true
	}
}
