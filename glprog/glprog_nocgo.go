//go:build tinygo || !cgo

package glprog

import (
	"errors"
	"image"

	"github.com/soypat/minigl/glbind"
	"github.com/soypat/minigl/glexpr"
	"github.com/soypat/minigl/gltech"
)

var errNoCGO = errors.New("GL programs require CGo and are not supported on TinyGo")

type Program struct{}

func Compile(p gltech.Program) (*Program, error) { return nil, errNoCGO }

func (p *Program) Source() gltech.Program { return gltech.Program{} }

func (p *Program) ID() uint32 { return 0 }

func (p *Program) Bind() {}

func (p *Program) Unbind() {}

func (p *Program) Delete() {}

func (p *Program) Submit(b *glbind.Bindings) error { return errNoCGO }

func (p *Program) SubmitLights(lights []gltech.Light) error { return errNoCGO }

type Texture struct{}

func NewTexture(img *image.RGBA, unit glexpr.TextureUnit) (*Texture, error) {
	return nil, errNoCGO
}

func (t *Texture) Unit() glexpr.TextureUnit { return 0 }

func (t *Texture) Bind() {}

func (t *Texture) Delete() {}

type Quad struct{}

func NewQuad() (*Quad, error) { return nil, errNoCGO }

func (q *Quad) Draw() error { return errNoCGO }

func (q *Quad) Delete() {}

type Window struct{}

func InitWindow(cfg WindowConfig) (win *Window, terminate func(), err error) {
	return nil, nil, errNoCGO
}
