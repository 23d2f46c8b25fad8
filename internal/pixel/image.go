package pixel

import (
	"fmt"
	"image"
	"image/color"
)

// Image is a fixed-size grid of Pixels. Stride is measured in pixels.
type Image struct {
	Pix    []Pixel
	Width  int
	Height int
	Stride int
}

// NewImage allocates a zeroed (black) image.
func NewImage(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		Pix:    make([]Pixel, width*height),
		Width:  width,
		Height: height,
		Stride: width,
	}
}

// Empty reports whether the image holds no pixels.
func (im *Image) Empty() bool {
	return im == nil || im.Width <= 0 || im.Height <= 0
}

func (im *Image) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < im.Width && y < im.Height
}

// PixelAt returns the pixel at (x, y), or 0 when out of range.
func (im *Image) PixelAt(x, y int) Pixel {
	if !im.inBounds(x, y) {
		return 0
	}
	return im.Pix[y*im.Stride+x]
}

// SetPixel writes p at (x, y). Out-of-range writes are ignored.
func (im *Image) SetPixel(x, y int, p Pixel) {
	if !im.inBounds(x, y) {
		return
	}
	im.Pix[y*im.Stride+x] = p
}

// Fill sets every pixel inside r (clipped to the image) to p.
func (im *Image) Fill(r image.Rectangle, p Pixel) {
	r = r.Intersect(im.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := im.Pix[y*im.Stride : y*im.Stride+im.Width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = p
		}
	}
}

// The methods below make Image a draw.Image so fonts and the image/draw
// helpers can render onto it directly.

func (im *Image) ColorModel() color.Model { return color.RGBAModel }

func (im *Image) Bounds() image.Rectangle { return image.Rect(0, 0, im.Width, im.Height) }

func (im *Image) At(x, y int) color.Color {
	p := im.PixelAt(x, y)
	return color.RGBA{R: p.R(), G: p.G(), B: p.B(), A: 0xff}
}

func (im *Image) Set(x, y int, c color.Color) {
	r, g, b, _ := c.RGBA()
	im.SetPixel(x, y, RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
}

// FromRGBA copies an *image.RGBA into a new Image, dropping alpha.
func FromRGBA(src *image.RGBA) *Image {
	b := src.Bounds()
	dst := NewImage(b.Dx(), b.Dy())
	for y := 0; y < dst.Height; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < dst.Width; x++ {
			i := off + x*4
			dst.Pix[y*dst.Stride+x] = RGB(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
		}
	}
	return dst
}

// FromBGRx decodes a 32 bits-per-pixel little-endian ZPixmap buffer, the
// layout X servers return for depth 24 and 32 TrueColor visuals. stride is
// the number of bytes per scanline.
func FromBGRx(data []byte, width, height, stride int) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if stride < width*4 {
		return nil, fmt.Errorf("stride %d too small for width %d", stride, width)
	}
	if need := stride*(height-1) + width*4; height > 0 && len(data) < need {
		return nil, fmt.Errorf("image data too short: have %d bytes, need %d", len(data), need)
	}

	dst := NewImage(width, height)
	for y := 0; y < height; y++ {
		off := y * stride
		for x := 0; x < width; x++ {
			i := off + x*4
			dst.Pix[y*dst.Stride+x] = RGB(data[i+2], data[i+1], data[i])
		}
	}
	return dst, nil
}
