// Package glprog compiles assembled techniques into GL programs and submits
// their uniforms. It also provides the minimal GL resources needed to draw
// with them: textures for sampler uniforms and a textured quad.
//
// GL calls must be made on the goroutine that owns the GL context, which
// is usually locked to the main OS thread with [runtime.LockOSThread].
// Without cgo every entry point returns an error.
package glprog

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	math "github.com/chewxy/math32"
	"github.com/soypat/minigl/glbind"
	"github.com/soypat/minigl/glexpr"
)

// WindowConfig configures the window created by InitWindow.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	// Resizable allows the user to resize the window.
	Resizable bool
	// SwapInterval is the number of screen updates to wait before swapping
	// buffers. Zero disables vsync.
	SwapInterval int
}

func (cfg WindowConfig) withDefaults() WindowConfig {
	if cfg.Title == "" {
		cfg.Title = "minigl"
	}
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	return cfg
}

// NumberLines prefixes every line of src with its 1 based line number so
// compiler diagnostics can be matched against generated source.
func NumberLines(src string) string {
	src = strings.TrimSuffix(src, "\x00")
	lines := strings.Split(src, "\n")
	width := len(strconv.Itoa(len(lines)))
	var sb strings.Builder
	sb.Grow(len(src) + len(lines)*(width+2))
	for i, line := range lines {
		num := strconv.Itoa(i + 1)
		for j := 0; j < width-len(num); j++ {
			sb.WriteByte(' ')
		}
		sb.WriteString(num)
		sb.WriteString(": ")
		sb.WriteString(line)
		if i != len(lines)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// cstr returns s with the NUL terminator GL expects.
func cstr(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

// uniformArgs splits a uniform value into the arguments of the GL call
// setting it. Integer and sampler values return ints. Every other value
// returns its float components, 16 of them for a row major mat4.
func uniformArgs(v any) (floats []float32, ints []int32, err error) {
	switch val := v.(type) {
	case int32:
		return nil, []int32{val}, nil
	case glexpr.TextureUnit:
		return nil, []int32{int32(val)}, nil
	}
	floats = glbind.Flatten(v)
	if floats == nil {
		return nil, nil, fmt.Errorf("%w: %T", glexpr.ErrInvalidValue, v)
	}
	return floats, nil, nil
}

// texturePixels returns the RGBA components of img in 0..1 row by row
// starting at the top row of its bounds.
func texturePixels(img *image.RGBA) (width, height int, pix []float32) {
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	pix = make([]float32, 0, 4*width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		off := img.PixOffset(bounds.Min.X, y)
		for _, b := range img.Pix[off : off+4*width] {
			pix = append(pix, float32(b)/math.MaxUint8)
		}
	}
	return width, height, pix
}
