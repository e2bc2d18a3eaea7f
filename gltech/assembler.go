package gltech

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soypat/minigl/glexpr"
)

var (
	// ErrMissingSlot is returned by [Assembler.Assemble] when a layout slot has no root node.
	ErrMissingSlot = errors.New("missing slot")
	// ErrVertexDiscard is returned by [Assembler.Assemble] when a vertex slot root reaches a discard node.
	ErrVertexDiscard = errors.New("discard in vertex stage")
)

// UniformDecl is a uniform the runtime must resolve to a concrete value
// before every draw with a [Program].
type UniformDecl struct {
	Name string
	Type glexpr.Type
}

// Program is an assembled technique: complete vertex and fragment shader
// sources and the uniforms they declare.
type Program struct {
	Vertex   string
	Fragment string
	// Uniforms lists every uniform reachable from the vertex roots and then
	// the fragment roots in order of first encounter. Names are unique.
	Uniforms []UniformDecl
}

// Uniform returns the uniform declaration with the given name.
func (p Program) Uniform(name string) (UniformDecl, bool) {
	for _, u := range p.Uniforms {
		if u.Name == name {
			return u, true
		}
	}
	return UniformDecl{}, false
}

// Assembler turns layouts filled with expression roots into programs.
// The zero value is ready to use. An Assembler reuses internal buffers
// and is not safe for concurrent use.
type Assembler struct {
	decls []string
	stmts []string
	sb    strings.Builder
}

// Assemble generates the shader sources of layout with roots filling its slots.
// Every slot must have a root of the slot's type. No source is generated
// when any slot is missing or mistyped.
func (a *Assembler) Assemble(layout Layout, roots map[Slot]*glexpr.Node) (Program, error) {
	err := layout.Validate()
	if err != nil {
		return Program{}, err
	}
	for i, stage := range [2]Stage{layout.Vertex, layout.Fragment} {
		for _, spec := range stage.Slots {
			root := roots[spec.Slot]
			if root == nil {
				return Program{}, fmt.Errorf("layout %s: %w %q", layout.Name, ErrMissingSlot, spec.Slot)
			} else if root.Type() != spec.Type {
				return Program{}, fmt.Errorf("layout %s: slot %q: %w, got %s, want %s", layout.Name, spec.Slot, glexpr.ErrTypeMismatch, root.Type(), spec.Type)
			}
			if i == 0 {
				err = root.ForEach(func(n *glexpr.Node) error {
					if n.Kind() == glexpr.KindDiscard {
						return ErrVertexDiscard
					}
					return nil
				})
				if err != nil {
					return Program{}, fmt.Errorf("layout %s: slot %q: %w", layout.Name, spec.Slot, err)
				}
			}
		}
	}
	var prog Program
	prog.Vertex, err = a.assembleStage(layout.Vertex, roots)
	if err != nil {
		return Program{}, fmt.Errorf("layout %s: vertex: %w", layout.Name, err)
	}
	prog.Fragment, err = a.assembleStage(layout.Fragment, roots)
	if err != nil {
		return Program{}, fmt.Errorf("layout %s: fragment: %w", layout.Name, err)
	}
	for _, stage := range [2]Stage{layout.Vertex, layout.Fragment} {
		for _, spec := range stage.Slots {
			prog.Uniforms = appendUniforms(prog.Uniforms, roots[spec.Slot])
		}
	}
	return prog, nil
}

func (a *Assembler) assembleStage(stage Stage, roots map[Slot]*glexpr.Node) (string, error) {
	a.decls = a.decls[:0]
	a.stmts = a.stmts[:0]
	values := make(map[string]string, len(stage.Slots)+2)
	for _, spec := range stage.Slots {
		root := roots[spec.Slot]
		a.decls = root.AppendDeclarations(a.decls)
		a.stmts = root.AppendStatements(a.stmts)
		values[spec.Hole] = root.Name()
	}
	a.decls = dedupInPlace(a.decls)
	a.stmts = dedupInPlace(a.stmts)
	values[HoleDecl] = strings.Join(a.decls, "\n")
	values[HoleExpr] = strings.Join(a.stmts, "\n\t")
	a.sb.Reset()
	_, err := stage.Template.Execute(&a.sb, values)
	if err != nil {
		return "", err
	}
	return a.sb.String(), nil
}

// Assemble is a convenience for assembling a single program with a fresh [Assembler].
func Assemble(layout Layout, roots map[Slot]*glexpr.Node) (Program, error) {
	var a Assembler
	return a.Assemble(layout, roots)
}

// NewFlat assembles the [Flat] layout.
func NewFlat(position, texCoord, color *glexpr.Node) (Program, error) {
	return Assemble(Flat(), map[Slot]*glexpr.Node{
		SlotPosition: position,
		SlotTexCoord: texCoord,
		SlotColor:    color,
	})
}

// NewMVP assembles the [MVP] layout.
func NewMVP(model, view, projection, texCoord, color *glexpr.Node) (Program, error) {
	return Assemble(MVP(), map[Slot]*glexpr.Node{
		SlotModel:      model,
		SlotView:       view,
		SlotProjection: projection,
		SlotTexCoord:   texCoord,
		SlotColor:      color,
	})
}

// NewPhong assembles the [Phong] layout. Lights are set separately with [LightValues].
func NewPhong(model, view, projection, eye, diffuse, matAmbient, matDiffuse, matSpecular, shine, transparency *glexpr.Node) (Program, error) {
	return Assemble(Phong(), map[Slot]*glexpr.Node{
		SlotModel:        model,
		SlotView:         view,
		SlotProjection:   projection,
		SlotEye:          eye,
		SlotDiffuse:      diffuse,
		SlotMatAmbient:   matAmbient,
		SlotMatDiffuse:   matDiffuse,
		SlotMatSpecular:  matSpecular,
		SlotShine:        shine,
		SlotTransparency: transparency,
	})
}

// Dedup returns lines with exact textual duplicates removed, keeping the
// first occurrence of each line. Lines equal in meaning but differing in
// text, such as declarations of two constants with the same value, are kept.
func Dedup(lines []string) []string {
	return dedupInPlace(append([]string{}, lines...))
}

func dedupInPlace(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := lines[:0]
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}

func appendUniforms(dst []UniformDecl, root *glexpr.Node) []UniformDecl {
	root.ForEach(func(n *glexpr.Node) error {
		if n.Kind() != glexpr.KindUniform {
			return nil
		}
		for _, u := range dst {
			if u.Name == n.Name() {
				return nil
			}
		}
		dst = append(dst, UniformDecl{Name: n.Name(), Type: n.Type()})
		return nil
	})
	return dst
}
