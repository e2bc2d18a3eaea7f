//go:build !tinygo && cgo

package glprog

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/minigl/glbind"
	"github.com/soypat/minigl/glexpr"
	"github.com/soypat/minigl/gltech"
)

// Program is a compiled and linked [gltech.Program].
type Program struct {
	prog   glgl.Program
	locs   *glbind.LocationCache
	src    gltech.Program
	lights []gltech.LightValue
}

// Compile compiles and links the vertex and fragment sources of p.
// Compilation errors include the offending source with line numbers.
func Compile(p gltech.Program) (*Program, error) {
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   cstr(p.Vertex),
		Fragment: cstr(p.Fragment),
	})
	if err != nil {
		return nil, fmt.Errorf("%w\n\nvertex:\n%s\n\nfragment:\n%s", err, NumberLines(p.Vertex), NumberLines(p.Fragment))
	}
	compiled := &Program{prog: prog, src: p}
	compiled.locs = glbind.NewLocationCache(func(name string) (int32, error) {
		return compiled.prog.UniformLocation(cstr(name))
	})
	return compiled, nil
}

// Source returns the assembled program p was compiled from.
func (p *Program) Source() gltech.Program { return p.src }

// ID returns the GL program object name.
func (p *Program) ID() uint32 { return p.prog.ID() }

// Bind makes p the current program.
func (p *Program) Bind() { p.prog.Bind() }

// Unbind clears the current program.
func (p *Program) Unbind() { p.prog.Unbind() }

// Delete releases the GL program. p must not be used afterwards.
func (p *Program) Delete() {
	p.prog.Delete()
	p.locs.Reset()
}

// Submit binds p and pushes the current value of every uniform in b.
// Sampler uniforms are set to their texture unit.
func (p *Program) Submit(b *glbind.Bindings) error {
	if p.prog.ID() == 0 {
		return errors.New("submit to deleted or uncompiled program")
	}
	p.prog.Bind()
	return b.Resolve(func(decl gltech.UniformDecl, v any) error {
		return p.setUniform(decl.Name, v)
	})
}

// SubmitLights binds p and sets the lights of a program assembled from the
// [gltech.Phong] layout.
func (p *Program) SubmitLights(lights []gltech.Light) error {
	if p.prog.ID() == 0 {
		return errors.New("submit to deleted or uncompiled program")
	}
	vals, err := gltech.LightValues(p.lights[:0], lights)
	if err != nil {
		return err
	}
	p.lights = vals
	p.prog.Bind()
	for _, v := range vals {
		err = p.setUniform(v.Name, v.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
	}
	return nil
}

func (p *Program) setUniform(name string, v any) error {
	loc, err := p.locs.Location(name)
	if err != nil {
		return err
	}
	floats, ints, err := uniformArgs(v)
	switch {
	case err != nil:
		return err
	case ints != nil:
		return p.prog.SetUniformi(loc, ints...)
	case len(floats) == 16:
		gl.UniformMatrix4fv(loc, 1, true, &floats[0]) // Flatten is row major.
		return glgl.Err()
	}
	return p.prog.SetUniformf(loc, floats...)
}

// Texture is a 2D RGBA texture bound to a texture unit, the value of a
// sampler2D uniform.
type Texture struct {
	tex  glgl.Texture
	unit glexpr.TextureUnit
}

// NewTexture uploads img to a new texture on unit. The top row of img is
// sampled at texture coordinate v=0.
func NewTexture(img *image.RGBA, unit glexpr.TextureUnit) (*Texture, error) {
	if unit < 0 {
		return nil, fmt.Errorf("%w: negative texture unit %d", glexpr.ErrInvalidValue, unit)
	}
	w, h, pix := texturePixels(img)
	if w == 0 || h == 0 {
		return nil, errors.New("empty texture image")
	}
	cfg := glgl.TextureImgConfig{
		Type:           glgl.Texture2D,
		Width:          w,
		Height:         h,
		Access:         glgl.ReadOnly,
		Format:         gl.RGBA,
		MinFilter:      gl.LINEAR,
		MagFilter:      gl.LINEAR,
		Wrap:           gl.CLAMP_TO_EDGE,
		Xtype:          gl.FLOAT,
		InternalFormat: gl.RGBA32F,
		ImageUnit:      uint32(unit),
		TextureUnit:    int(unit),
	}
	tex, err := glgl.NewTextureFromImage(cfg, pix)
	if err != nil {
		return nil, err
	}
	return &Texture{tex: tex, unit: unit}, nil
}

// Unit returns the texture unit to set on the sampler uniform reading the texture.
func (t *Texture) Unit() glexpr.TextureUnit { return t.unit }

// Bind binds the texture to its unit.
func (t *Texture) Bind() { t.tex.Bind(int(t.unit)) }

// Delete releases the GL texture.
func (t *Texture) Delete() { t.tex.Delete() }

// quadVertices are two triangles covering clip space with position (x, y, z),
// texture coordinate (u, v) and normal (nx, ny, nz) per vertex.
var quadVertices = [...]float32{
	-1, -1, 0, 0, 1, 0, 0, 1,
	1, -1, 0, 1, 1, 0, 0, 1,
	-1, 1, 0, 0, 0, 0, 0, 1,
	-1, 1, 0, 0, 0, 0, 0, 1,
	1, -1, 0, 1, 1, 0, 0, 1,
	1, 1, 0, 1, 0, 0, 0, 1,
}

const quadVertexFloats = 8

// Quad is a mesh of two triangles covering clip space facing +z. Its
// vertices have a vec3 position at attribute location 0, a vec2 texture
// coordinate at location 1 and a vec3 normal at location 2, matching the
// attributes of [gltech.MVP] and [gltech.Phong].
type Quad struct {
	vao, vbo uint32
}

// NewQuad uploads the quad mesh.
func NewQuad() (*Quad, error) {
	const floatSize = 4
	const stride = quadVertexFloats * floatSize
	var q Quad
	gl.GenVertexArrays(1, &q.vao)
	gl.BindVertexArray(q.vao)
	gl.GenBuffers(1, &q.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, floatSize*len(quadVertices), gl.Ptr(&quadVertices[0]), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*floatSize))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(5*floatSize))
	gl.BindVertexArray(0)
	err := glgl.Err()
	if err != nil {
		q.Delete()
		return nil, err
	}
	return &q, nil
}

// Draw draws the quad with the current program.
func (q *Quad) Draw() error {
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(quadVertices)/quadVertexFloats))
	gl.BindVertexArray(0)
	return glgl.Err()
}

// Delete releases the quad's GL buffers.
func (q *Quad) Delete() {
	gl.DeleteBuffers(1, &q.vbo)
	gl.DeleteVertexArrays(1, &q.vao)
	q.vao, q.vbo = 0, 0
}

// Window is a GLFW window owning the current GL context.
type Window struct {
	*glfw.Window
}

// InitWindow creates a window with a GL 4.6 core context, makes it current
// and loads the GL functions. terminate must be called once done with GL.
func InitWindow(cfg WindowConfig) (win *Window, terminate func(), err error) {
	cfg = cfg.withDefaults()
	err = glfw.Init()
	if err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	resizable := glfw.False
	if cfg.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(cfg.SwapInterval)
	err = gl.Init()
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	return &Window{Window: window}, glfw.Terminate, nil
}
