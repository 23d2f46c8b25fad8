package pixel

import (
	"fmt"
	"strconv"
	"strings"
)

// Pixel is a 24-bit RGB value packed as 0xRRGGBB.
type Pixel uint32

// RGB packs three 8-bit channels into a Pixel.
func RGB(r, g, b uint8) Pixel {
	return Pixel(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (p Pixel) R() uint8 { return uint8(p >> 16) }
func (p Pixel) G() uint8 { return uint8(p >> 8) }
func (p Pixel) B() uint8 { return uint8(p) }

// Hex formats the pixel as #RRGGBB with uppercase digits.
func (p Pixel) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", p.R(), p.G(), p.B())
}

func (p Pixel) String() string {
	return p.Hex()
}

// Blend mixes overlay into base. Each channel is
// base*(1-opacity) + overlay*opacity, truncated toward zero.
func Blend(base, overlay Pixel, opacity float64) Pixel {
	return RGB(
		blendChannel(base.R(), overlay.R(), opacity),
		blendChannel(base.G(), overlay.G(), opacity),
		blendChannel(base.B(), overlay.B(), opacity),
	)
}

func blendChannel(base, overlay uint8, opacity float64) uint8 {
	// c*(1-o) + c*o can land just below c in floating point.
	if base == overlay {
		return base
	}
	v := int(float64(base)*(1-opacity) + float64(overlay)*opacity)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

var namedColors = map[string]Pixel{
	"black":   0x000000,
	"white":   0xFFFFFF,
	"red":     0xFF0000,
	"green":   0x00FF00,
	"blue":    0x0000FF,
	"yellow":  0xFFFF00,
	"cyan":    0x00FFFF,
	"magenta": 0xFF00FF,
}

// ParseHex parses "#RRGGBB", "RRGGBB", "#RGB" or a basic color name.
func ParseHex(s string) (Pixel, error) {
	raw := strings.TrimSpace(s)
	if p, ok := namedColors[strings.ToLower(raw)]; ok {
		return p, nil
	}

	hex := strings.TrimPrefix(raw, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return 0, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Pixel(v), nil
}
