package magnify

import "github.com/1broseidon/loupe/internal/pixel"

// DotCenter returns the pixel the indicator dot is centered on.
func DotCenter(img *pixel.Image) (x, y int) {
	return img.Width / 2, img.Height / 2
}

// DrawDot blends a filled square of color into the center of img. The square
// spans size/2 pixels on each side of the center pixel and is clipped to the
// image.
func DrawDot(img *pixel.Image, size int, color pixel.Pixel, opacity float64) {
	if img.Empty() || size < 0 {
		return
	}
	cx, cy := DotCenter(img)
	half := size / 2
	for y := cy - half; y <= cy+half; y++ {
		if y < 0 || y >= img.Height {
			continue
		}
		for x := cx - half; x <= cx+half; x++ {
			if x < 0 || x >= img.Width {
				continue
			}
			i := y*img.Stride + x
			img.Pix[i] = pixel.Blend(img.Pix[i], color, opacity)
		}
	}
}
