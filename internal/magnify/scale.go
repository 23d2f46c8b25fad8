package magnify

import "github.com/1broseidon/loupe/internal/pixel"

// Scale nearest-neighbor upscales src into dst by an integer zoom factor:
// dst(x, y) = src(x/zoom, y/zoom).
//
// The loops run over dst's own bounds, which may differ slightly from
// src*zoom; source coordinates are clamped so such a mismatch never reads
// outside src.
func Scale(dst, src *pixel.Image, zoom int) {
	if dst.Empty() || src.Empty() {
		return
	}
	if zoom < 1 {
		zoom = 1
	}

	maxX := src.Width - 1
	maxY := src.Height - 1
	for y := 0; y < dst.Height; y++ {
		sy := y / zoom
		if sy > maxY {
			sy = maxY
		}
		srcRow := src.Pix[sy*src.Stride : sy*src.Stride+src.Width]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+dst.Width]
		for x := range dstRow {
			sx := x / zoom
			if sx > maxX {
				sx = maxX
			}
			dstRow[x] = srcRow[sx]
		}
	}
}

// ScaleNew allocates a (W*zoom) x (H*zoom) image and scales src into it.
func ScaleNew(src *pixel.Image, zoom int) *pixel.Image {
	if zoom < 1 {
		zoom = 1
	}
	if src.Empty() {
		return pixel.NewImage(0, 0)
	}
	dst := pixel.NewImage(src.Width*zoom, src.Height*zoom)
	Scale(dst, src, zoom)
	return dst
}
