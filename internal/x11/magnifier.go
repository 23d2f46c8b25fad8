package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xgraphics"

	"github.com/1broseidon/loupe/internal/pixel"
)

// Magnifier is a borderless override-redirect window that shows magnified
// frames. Frames are painted through an off-screen pixmap that is also set
// as the window background, so the server can restore it on its own.
type Magnifier struct {
	xu     *xgbutil.XUtil
	Window xproto.Window
	canvas *xgraphics.Image
	size   int
	drawn  bool
}

// NewMagnifier creates and maps a size x size magnifier at (x, y).
func (c *Connection) NewMagnifier(x, y, size int) (*Magnifier, error) {
	if size < 1 {
		return nil, fmt.Errorf("invalid magnifier size %d", size)
	}

	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	// override_redirect keeps the window manager from decorating or placing it.
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.Root,
		int16(x), int16(y),
		uint16(size), uint16(size),
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		// Value list order follows the bit positions of the mask (low → high).
		[]uint32{
			screen.BlackPixel,
			1,
			xproto.EventMaskExposure,
		},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create magnifier window: %w", err)
	}

	canvas := xgraphics.New(c.XUtil, image.Rect(0, 0, size, size))
	if err := canvas.XSurfaceSet(wid); err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, fmt.Errorf("failed to create magnifier pixmap: %w", err)
	}

	xproto.MapWindow(conn, wid)

	return &Magnifier{
		xu:     c.XUtil,
		Window: wid,
		canvas: canvas,
		size:   size,
	}, nil
}

// Move places the magnifier at (x, y) and raises it above other windows.
func (m *Magnifier) Move(x, y int) {
	xproto.ConfigureWindow(
		m.xu.Conn(),
		m.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(int32(x)),
			uint32(int32(y)),
			xproto.StackModeAbove, // Keep on top
		},
	)
}

// Draw copies img into the magnifier's pixmap and paints it. Pixels outside
// the magnifier are ignored; missing ones stay as they were.
func (m *Magnifier) Draw(img *pixel.Image) error {
	if img.Empty() {
		return fmt.Errorf("empty frame")
	}

	w := min(img.Width, m.size)
	h := min(img.Height, m.size)
	pix := m.canvas.Pix
	stride := m.canvas.Stride
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := img.Pix[y*img.Stride+x]
			i := y*stride + x*4
			pix[i] = p.B()
			pix[i+1] = p.G()
			pix[i+2] = p.R()
			pix[i+3] = 0xff
		}
	}

	if err := m.canvas.XDrawChecked(); err != nil {
		return fmt.Errorf("failed to upload frame: %w", err)
	}
	m.canvas.XPaint(m.Window)
	m.drawn = true
	return nil
}

// Repaint shows the last drawn frame again. It is a no-op before the first
// Draw.
func (m *Magnifier) Repaint() {
	if !m.drawn {
		return
	}
	m.canvas.XPaint(m.Window)
}

// Destroy frees the pixmap and the window.
func (m *Magnifier) Destroy() {
	if m.canvas != nil {
		m.canvas.Destroy()
		m.canvas = nil
	}
	if m.Window != 0 {
		xproto.DestroyWindow(m.xu.Conn(), m.Window)
		m.Window = 0
	}
	m.drawn = false
}
