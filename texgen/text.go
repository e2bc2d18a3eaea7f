// Package texgen generates images to be uploaded as textures and sampled
// by sampler2D uniforms: rasterized text, checkerboards and gradients.
// It also provides a color palette of vec4 values.
package texgen

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// TextConfig configures text rasterization with [Text].
type TextConfig struct {
	// Text to draw. Lines are separated by '\n'.
	Text string
	// TTF is a TrueType font file. If nil the Go regular font is used.
	TTF []byte
	// Size is the font size in points. Defaults to 24.
	Size float64
	// DPI is the resolution in dots per inch. Defaults to 72.
	DPI float64
	// LineSpacing is the distance between baselines relative to the font
	// height. Defaults to 1.2.
	LineSpacing float64
	// Padding is the margin in pixels around the text.
	Padding int
	// Foreground defaults to white and Background to transparent.
	Foreground color.Color
	Background color.Color
}

var goRegular = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// Text rasterizes cfg.Text onto an image just large enough to hold it.
func Text(cfg TextConfig) (*image.RGBA, error) {
	if cfg.Text == "" {
		return nil, errors.New("empty text")
	}
	if cfg.Size <= 0 {
		cfg.Size = 24
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 72
	}
	if cfg.LineSpacing <= 0 {
		cfg.LineSpacing = 1.2
	}
	if cfg.Padding < 0 {
		return nil, errors.New("negative padding")
	}
	if cfg.Foreground == nil {
		cfg.Foreground = color.White
	}
	if cfg.Background == nil {
		cfg.Background = color.Transparent
	}
	var f *truetype.Font
	var err error
	if cfg.TTF == nil {
		f, err = goRegular()
	} else {
		f, err = truetype.Parse(cfg.TTF)
	}
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    cfg.Size,
		DPI:     cfg.DPI,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	lines := strings.Split(cfg.Text, "\n")
	metrics := face.Metrics()
	lineHeight := fixed.Int26_6(float64(metrics.Height) * cfg.LineSpacing)
	var width fixed.Int26_6
	for _, line := range lines {
		width = max(width, font.MeasureString(face, line))
	}
	height := metrics.Ascent + metrics.Descent + lineHeight*fixed.Int26_6(len(lines)-1)
	pad := 2 * cfg.Padding
	img := image.NewRGBA(image.Rect(0, 0, width.Ceil()+pad, height.Ceil()+pad))
	draw.Draw(img, img.Bounds(), image.NewUniform(cfg.Background), image.Point{}, draw.Src)

	ctx := freetype.NewContext()
	ctx.SetDPI(cfg.DPI)
	ctx.SetFont(f)
	ctx.SetFontSize(cfg.Size)
	ctx.SetHinting(font.HintingFull)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(cfg.Foreground))
	pt := freetype.Pt(cfg.Padding, cfg.Padding)
	pt.Y += metrics.Ascent
	for _, line := range lines {
		_, err = ctx.DrawString(line, pt)
		if err != nil {
			return nil, err
		}
		pt.Y += lineHeight
	}
	return img, nil
}
