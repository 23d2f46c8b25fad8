package magnify

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/1broseidon/loupe/internal/pixel"
)

// Label colors
const (
	ColorLabelText = 0xf5f7fa
	ColorLabelBg   = 0x1f2933
)

const (
	labelHeight  = 15
	labelBaseOff = 3
)

// Options describes how frames are composed.
type Options struct {
	Size       int // magnifier side length in pixels
	Zoom       int
	DotSize    int
	DotColor   pixel.Pixel
	DotOpacity float64
	Label      bool // draw the center pixel's hex value along the bottom edge
}

// Renderer turns captured regions into magnifier frames. The frame buffer is
// allocated once and reused for every call to Render.
type Renderer struct {
	opts  Options
	frame *pixel.Image
	face  font.Face
}

// NewRenderer allocates a renderer with a Size x Size frame buffer.
func NewRenderer(opts Options) *Renderer {
	if opts.Zoom < 1 {
		opts.Zoom = 1
	}
	return &Renderer{
		opts:  opts,
		frame: pixel.NewImage(opts.Size, opts.Size),
		face:  basicfont.Face7x13,
	}
}

// CaptureSize is the side length of the region Render expects.
func (r *Renderer) CaptureSize() int {
	return CaptureSize(r.opts.Size, r.opts.Zoom)
}

// Frame returns the frame buffer. Its contents are those of the last Render.
func (r *Renderer) Frame() *pixel.Image {
	return r.frame
}

// Render scales src into the frame, then composites the indicator dot (and
// the label, when enabled) on top. It returns the frame and the pixel shown
// under the dot.
func (r *Renderer) Render(src *pixel.Image) (*pixel.Image, pixel.Pixel) {
	Scale(r.frame, src, r.opts.Zoom)
	center := r.frame.PixelAt(DotCenter(r.frame))

	DrawDot(r.frame, r.opts.DotSize, r.opts.DotColor, r.opts.DotOpacity)
	if r.opts.Label {
		r.drawLabel(center.Hex())
	}
	return r.frame, center
}

func (r *Renderer) drawLabel(text string) {
	img := r.frame
	// Leave the dot visible on small magnifiers.
	if img.Height < 3*labelHeight {
		return
	}

	img.Fill(image.Rect(0, img.Height-labelHeight, img.Width, img.Height), ColorLabelBg)

	width := font.MeasureString(r.face, text).Ceil()
	x := (img.Width - width) / 2
	if x < 0 {
		x = 0
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(rgba(ColorLabelText)),
		Face: r.face,
		Dot:  fixed.P(x, img.Height-labelBaseOff),
	}
	d.DrawString(text)
}

func rgba(p pixel.Pixel) color.RGBA {
	return color.RGBA{R: p.R(), G: p.G(), B: p.B(), A: 0xff}
}
