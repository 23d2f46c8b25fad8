package magnify

import "github.com/1broseidon/loupe/internal/platform"

// CaptureSize returns the side length of the screen region that, once
// upscaled by zoom, fills a magnifier of the given size.
func CaptureSize(magnifierSize, zoom int) int {
	if zoom < 1 {
		zoom = 1
	}
	return magnifierSize / zoom
}

// CaptureRect returns the capture rectangle centered on center and clamped
// so that it lies entirely inside a screen of the given size.
//
// Each axis is clamped on its own. When the screen is smaller than the
// capture on an axis, the capture shrinks to the screen on that axis.
func CaptureRect(center platform.Point, width, height, screenWidth, screenHeight int) platform.Rect {
	x, w := clampSpan(center.X, width, screenWidth)
	y, h := clampSpan(center.Y, height, screenHeight)
	return platform.Rect{X: x, Y: y, Width: w, Height: h}
}

func clampSpan(center, size, limit int) (origin, span int) {
	if limit < 0 {
		limit = 0
	}
	if size > limit {
		return 0, limit
	}
	origin = center - size/2
	if origin < 0 {
		origin = 0
	}
	if origin+size > limit {
		origin = limit - size
	}
	return origin, size
}

// Place returns the top-left corner of a size x size magnifier window that
// sits offset pixels below-right of the cursor. On an axis where that would
// cross the screen's far edge the window flips to the other side of the
// cursor. The result is never negative.
func Place(cursor platform.Point, size, offset int, screen platform.Rect) platform.Point {
	return platform.Point{
		X: placeAxis(cursor.X, size, offset, screen.X, screen.Width),
		Y: placeAxis(cursor.Y, size, offset, screen.Y, screen.Height),
	}
}

func placeAxis(cursor, size, offset, start, length int) int {
	pos := cursor + offset
	if pos+size > start+length {
		pos = cursor - offset - size
	}
	if pos < start {
		pos = start
	}
	return pos
}
