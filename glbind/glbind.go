// Package glbind implements uniform submission for assembled programs:
// which value each uniform takes before a draw and where it lives in the
// compiled program. It does not call into GL so it may be used and tested
// without a graphics context.
package glbind

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/minigl/glexpr"
	"github.com/soypat/minigl/gltech"
)

var (
	// ErrUnbound is returned when resolving a uniform that has no value or provider.
	ErrUnbound = errors.New("uniform not bound")
	// ErrUnknownUniform is returned when binding a name the program does not declare.
	ErrUnknownUniform = errors.New("unknown uniform")
)

// Provider returns the current value of a uniform. Providers are called
// once per uniform on every [Bindings.Resolve].
type Provider func() any

// Bindings holds the value source of every uniform of a program.
type Bindings struct {
	uniforms  []gltech.UniformDecl
	providers map[string]Provider
}

// New returns empty bindings for the uniforms of prog.
func New(prog gltech.Program) *Bindings {
	return &Bindings{
		uniforms:  append([]gltech.UniformDecl{}, prog.Uniforms...),
		providers: make(map[string]Provider, len(prog.Uniforms)),
	}
}

// Uniforms returns the uniforms to be bound in submission order.
func (b *Bindings) Uniforms() []gltech.UniformDecl {
	return append([]gltech.UniformDecl{}, b.uniforms...)
}

// Set binds the uniform node to a fixed value. The value's Go type must
// match the uniform type, see [glexpr.TypeOf].
func (b *Bindings) Set(uniform *glexpr.Node, v any) error {
	decl, err := b.lookup(uniform)
	if err != nil {
		return err
	}
	err = CheckValue(decl.Type, v)
	if err != nil {
		return fmt.Errorf("uniform %s: %w", decl.Name, err)
	}
	b.providers[decl.Name] = func() any { return v }
	return nil
}

// Provide binds the uniform node to fn, called every time the bindings are resolved.
func (b *Bindings) Provide(uniform *glexpr.Node, fn Provider) error {
	decl, err := b.lookup(uniform)
	if err != nil {
		return err
	} else if fn == nil {
		return fmt.Errorf("uniform %s: nil provider", decl.Name)
	}
	b.providers[decl.Name] = fn
	return nil
}

// Unset removes the binding of the uniform with the given name.
func (b *Bindings) Unset(name string) {
	delete(b.providers, name)
}

func (b *Bindings) lookup(uniform *glexpr.Node) (gltech.UniformDecl, error) {
	if uniform == nil {
		return gltech.UniformDecl{}, glexpr.ErrNilOperand
	}
	for _, decl := range b.uniforms {
		if decl.Name != uniform.Name() {
			continue
		}
		if decl.Type != uniform.Type() {
			return decl, fmt.Errorf("uniform %s: %w, got %s, want %s", decl.Name, glexpr.ErrTypeMismatch, uniform.Type(), decl.Type)
		}
		return decl, nil
	}
	return gltech.UniformDecl{}, fmt.Errorf("%w %s", ErrUnknownUniform, uniform.Name())
}

// Resolve calls fn with the current value of every uniform in program order.
// It fails on the first uniform that is unbound or whose provider returns a
// value of the wrong type, and on the first error returned by fn.
func (b *Bindings) Resolve(fn func(decl gltech.UniformDecl, v any) error) error {
	for _, decl := range b.uniforms {
		provider, ok := b.providers[decl.Name]
		if !ok {
			return fmt.Errorf("%w: %s %s", ErrUnbound, decl.Type, decl.Name)
		}
		v := provider()
		err := CheckValue(decl.Type, v)
		if err != nil {
			return fmt.Errorf("uniform %s: %w", decl.Name, err)
		}
		err = fn(decl, v)
		if err != nil {
			return fmt.Errorf("uniform %s: %w", decl.Name, err)
		}
	}
	return nil
}

// CheckValue checks v is a valid Go value for a uniform of type t.
// Vector and matrix values are the ones accepted by [glexpr.TypeOf].
func CheckValue(t glexpr.Type, v any) error {
	got, err := glexpr.TypeOf(v)
	if err != nil {
		return err
	} else if got != t {
		return fmt.Errorf("%w: value of type %s for %s uniform", glexpr.ErrTypeMismatch, got, t)
	}
	if t == glexpr.Sampler2D && v.(glexpr.TextureUnit) < 0 {
		return fmt.Errorf("%w: negative texture unit %d", glexpr.ErrInvalidValue, v)
	}
	return nil
}

// Flatten returns the float32 components of a float, vector or matrix
// uniform value. Matrices are returned in row major order. Integer and
// sampler values return nil.
func Flatten(v any) []float32 {
	switch val := v.(type) {
	case float32:
		return []float32{val}
	case ms2.Vec:
		return []float32{val.X, val.Y}
	case ms3.Vec:
		return []float32{val.X, val.Y, val.Z}
	case glexpr.V4:
		arr := val.Array()
		return arr[:]
	case ms3.Mat4:
		arr := val.Array()
		return arr[:]
	}
	return nil
}
