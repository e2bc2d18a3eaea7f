package texgen

import (
	"image"
	"image/color"
	"image/draw"
)

// Checker returns a w by h image of alternating square cells of side cell
// starting with c0 at the top left corner.
func Checker(w, h, cell int, c0, c1 color.Color) *image.RGBA {
	if cell <= 0 {
		cell = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c0), image.Point{}, draw.Src)
	src := image.NewUniform(c1)
	for y := 0; y < h; y += cell {
		for x := 0; x < w; x += cell {
			if (x/cell+y/cell)%2 == 0 {
				continue
			}
			draw.Draw(img, image.Rect(x, y, x+cell, y+cell), src, image.Point{}, draw.Src)
		}
	}
	return img
}

// Gradient returns a w by h image blending horizontally from c0 on the
// left column to c1 on the right column in HSV space.
func Gradient(w, h int, c0, c1 color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		var t float32
		if w > 1 {
			t = float32(x) / float32(w-1)
		}
		c := InterpHSV(c0, c1, t)
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}
