// Package clipboard puts picked colors on the system clipboard.
package clipboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.design/x/clipboard"
)

// Clipboard writes text through golang.design/x/clipboard. On X11 the
// selection lives only as long as its owner, so Copy can keep the process
// around until another client takes the clipboard.
type Clipboard struct {
	init  func() error
	write func(clipboard.Format, []byte) <-chan struct{}

	once    sync.Once
	initErr error
	mu      sync.Mutex
}

// New returns a clipboard backed by the system selection.
func New() *Clipboard {
	return &Clipboard{init: clipboard.Init, write: clipboard.Write}
}

// Copy writes text and then waits until the selection is replaced, hold
// elapses or ctx ends. A zero hold returns right after the write.
func (c *Clipboard) Copy(ctx context.Context, text string, hold time.Duration) error {
	c.once.Do(func() {
		c.initErr = c.init()
	})
	if c.initErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", c.initErr)
	}

	c.mu.Lock()
	changed := c.write(clipboard.FmtText, []byte(text))
	c.mu.Unlock()

	if hold <= 0 {
		return nil
	}

	timer := time.NewTimer(hold)
	defer timer.Stop()
	select {
	case <-changed:
	case <-timer.C:
	case <-ctx.Done():
	}
	return nil
}
