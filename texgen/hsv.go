package texgen

import (
	"image/color"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
)

// Color interpolation in HSV space adapted from Esme Lamb's (@dedelala)
// color manipulation work presented at Gophercon AU 2024.
// https://github.com/dedelala/disco/tree/main/color

// InterpHSV interpolates between c0 and c1 along the shortest hue path.
// Alpha is interpolated linearly. t is clamped to 0..1.
func InterpHSV(c0, c1 color.Color, t float32) color.NRGBA {
	t = ms1.Clamp(t, 0, 1)
	n0 := color.NRGBAModel.Convert(c0).(color.NRGBA)
	n1 := color.NRGBAModel.Convert(c1).(color.NRGBA)
	h0, s0, v0 := rgbToHSV(byteToUnit(n0.R), byteToUnit(n0.G), byteToUnit(n0.B))
	h1, s1, v1 := rgbToHSV(byteToUnit(n1.R), byteToUnit(n1.G), byteToUnit(n1.B))
	r, g, b := hsvToRGB(interpHSV(h0, s0, v0, h1, s1, v1, t))
	return color.NRGBA{
		R: unitToByte(r),
		G: unitToByte(g),
		B: unitToByte(b),
		A: unitToByte(ms1.Interp(byteToUnit(n0.A), byteToUnit(n1.A), t)),
	}
}

func byteToUnit(b uint8) float32 { return float32(b) / math.MaxUint8 }

func interpHSV(h0, s0, v0, h1, s1, v1, t float32) (h, s, v float32) {
	switch {
	case h1-h0 > 0.5:
		h0 += 1.0
	case h1-h0 < -0.5:
		h1 += 1.0
	}
	h = math.Mod(ms1.Interp(h0, h1, t), 1)
	s = ms1.Interp(s0, s1, t)
	v = ms1.Interp(v0, v1, t)
	return h, s, v
}

// hsvToRGB converts hue, saturation and brightness values on the range of 0.0
// to 1.0 to RGB floating point values on the range of 0.0 to 1.0
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	var (
		c = s * v
		x = c * (1 - math.Abs(math.Mod(h*6, 2)-1))
		m = v - c
	)
	switch {
	case h >= 0 && h <= 1.0/6:
		r, g, b = c, x, 0
	case h > 1.0/6 && h <= 2.0/6:
		r, g, b = x, c, 0
	case h > 2.0/6 && h <= 3.0/6:
		r, g, b = 0, c, x
	case h > 3.0/6 && h <= 4.0/6:
		r, g, b = 0, x, c
	case h > 4.0/6 && h <= 5.0/6:
		r, g, b = x, 0, c
	case h > 5.0/6 && h <= 1.0:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

// rgbToHSV converts red, green, and blue floating point values on the range
// 0.0 to 1.0 to hue, saturation and brightness values on the range 0.0 to 1.0
func rgbToHSV(r, g, b float32) (h, s, v float32) {
	var (
		xmax = max(r, g, b)
		xmin = min(r, g, b)
		c    = xmax - xmin
	)
	v = xmax
	switch {
	case c == 0:
		h = 0
	case v == r:
		h = (g - b) / (c * 6)
	case v == g:
		h = 1.0/3 + (b-r)/(c*6)
	case v == b:
		h = 2.0/3 + (r-g)/(c*6)
	}
	if h < 0 {
		h += 1
	}
	if xmax > 0 {
		s = c / xmax
	}
	return h, s, v
}
