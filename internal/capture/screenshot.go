// Package capture provides screen readers that do not go through the
// picker's own X connection.
package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/1broseidon/loupe/internal/pixel"
	"github.com/1broseidon/loupe/internal/platform"
)

// Screenshot reads screen regions with github.com/kbinani/screenshot. It
// opens its own display connection per read, which makes it slower than the
// native reader but tolerant of unusual pixmap formats.
type Screenshot struct {
	captureRect func(image.Rectangle) (*image.RGBA, error)
}

var _ platform.RegionReader = (*Screenshot)(nil)

// NewScreenshot returns a reader backed by screenshot.CaptureRect.
func NewScreenshot() *Screenshot {
	return &Screenshot{captureRect: screenshot.CaptureRect}
}

// ReadRegion captures r and converts it to a pixel image.
func (s *Screenshot) ReadRegion(r platform.Rect) (*pixel.Image, error) {
	if r.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Width, r.Height)
	}

	bounds := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	img, err := s.captureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return pixel.FromRGBA(img), nil
}
