package texgen

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/minigl/glexpr"
)

// Palette of opaque colors usable as vec4 constants and uniforms.
var (
	White      = rgb(1, 1, 1)
	Black      = rgb(0, 0, 0)
	LightGrey  = rgb(0.7, 0.7, 0.7)
	Grey       = rgb(0.5, 0.5, 0.5)
	DarkGrey   = rgb(0.3, 0.3, 0.3)
	Red        = rgb(1, 0, 0)
	Green      = rgb(0, 1, 0)
	Blue       = rgb(0, 0, 1)
	Yellow     = rgb(1, 1, 0)
	Magenta    = rgb(1, 0, 1)
	Cyan       = rgb(0, 1, 1)
	Orange     = rgb(1, 0.5, 0)
	Rose       = rgb(1, 0, 0.5)
	Violet     = rgb(0.5, 0, 1)
	Azure      = rgb(0, 0.5, 1)
	Aquamarine = rgb(0, 1, 0.5)
	Chartreuse = rgb(0.5, 1, 0)
)

func rgb(r, g, b float32) glexpr.V4 { return glexpr.V4{X: r, Y: g, Z: b, W: 1} }

var errBadHex = errors.New("bad hex color")

// ParseHex parses a color written as RRGGBB or RRGGBBAA hexadecimal digits
// with an optional leading '#'. Colors with no alpha are opaque.
func ParseHex(s string) (glexpr.V4, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return glexpr.V4{}, fmt.Errorf("%w %q: want 6 or 8 digits", errBadHex, s)
	}
	u, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return glexpr.V4{}, fmt.Errorf("%w %q: %w", errBadHex, s, err)
	}
	if len(s) == 6 {
		u = u<<8 | 0xff
	}
	return glexpr.V4{
		X: float32(uint8(u>>24)) / math.MaxUint8,
		Y: float32(uint8(u>>16)) / math.MaxUint8,
		Z: float32(uint8(u>>8)) / math.MaxUint8,
		W: float32(uint8(u)) / math.MaxUint8,
	}, nil
}

// RGBA converts v with components in 0..1 to a non-premultiplied color.
// Components out of range are clamped.
func RGBA(v glexpr.V4) color.NRGBA {
	return color.NRGBA{
		R: unitToByte(v.X),
		G: unitToByte(v.Y),
		B: unitToByte(v.Z),
		A: unitToByte(v.W),
	}
}

// FromColor converts c to a vec4 value with non-premultiplied components in 0..1.
func FromColor(c color.Color) glexpr.V4 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return glexpr.V4{
		X: float32(n.R) / math.MaxUint8,
		Y: float32(n.G) / math.MaxUint8,
		Z: float32(n.B) / math.MaxUint8,
		W: float32(n.A) / math.MaxUint8,
	}
}

func unitToByte(f float32) uint8 {
	return uint8(ms1.Clamp(f, 0, 1)*math.MaxUint8 + 0.5)
}
