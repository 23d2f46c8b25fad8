package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/loupe/internal/pixel"
)

const allPlanes = 0xffffffff

// CheckPixmapFormat verifies that root-depth images are transferred with 32
// bits per pixel, the only ZPixmap layout ReadRegion decodes.
func (c *Connection) CheckPixmapFormat() error {
	setup := xproto.Setup(c.XUtil.Conn())
	depth := c.XUtil.Screen().RootDepth
	for _, format := range setup.PixmapFormats {
		if format.Depth != depth {
			continue
		}
		if format.BitsPerPixel != 32 {
			return fmt.Errorf("unsupported pixmap format: depth %d uses %d bits per pixel", depth, format.BitsPerPixel)
		}
		if setup.ImageByteOrder != xproto.ImageOrderLSBFirst {
			return fmt.Errorf("unsupported pixmap format: image byte order is MSB first")
		}
		return nil
	}
	return fmt.Errorf("no pixmap format for root depth %d", depth)
}

// ReadRegion copies a rectangle of the root window into a new image.
func (c *Connection) ReadRegion(x, y, width, height int) (*pixel.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", width, height)
	}

	reply, err := xproto.GetImage(
		c.XUtil.Conn(),
		xproto.ImageFormatZPixmap,
		xproto.Drawable(c.Root),
		int16(x), int16(y),
		uint16(width), uint16(height),
		allPlanes,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to read screen region: %w", err)
	}

	return pixel.FromBGRx(reply.Data, width, height, width*4)
}
