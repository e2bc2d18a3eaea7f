package gltech

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

// Reserved holes filled by the assembler in every stage template.
const (
	// HoleDecl receives the deduplicated top level declarations.
	HoleDecl = "DECL"
	// HoleExpr receives the deduplicated statements computing slot values inside main.
	HoleExpr = "EXPR"
)

// ErrMissingHole is returned when a template is executed without a value for one of its holes.
var ErrMissingHole = errors.New("missing template hole value")

// Template is shader source text split into fixed segments and named holes.
// A hole is written as %NAME% where NAME is an upper case identifier,
// i.e: %DECL%, %TEXCOORD%. Other uses of % such as the GLSL modulo
// operator are kept verbatim.
type Template struct {
	// segments has one more element than holes: segment i precedes hole i.
	segments []string
	holes    []string
}

// NewTemplate parses src into a [Template].
func NewTemplate(src string) *Template {
	t := &Template{}
	segStart := 0
	for i := 0; i < len(src); i++ {
		if src[i] != '%' {
			continue
		}
		end := holeEnd(src, i)
		if end < 0 {
			continue
		}
		t.segments = append(t.segments, src[segStart:i])
		t.holes = append(t.holes, src[i+1:end])
		segStart = end + 1
		i = end
	}
	t.segments = append(t.segments, src[segStart:])
	return t
}

// holeEnd returns the index of the closing % of a hole starting at src[start]
// or -1 if there is no valid hole at start.
func holeEnd(src string, start int) int {
	i := start + 1
	if i >= len(src) || src[i] < 'A' || src[i] > 'Z' {
		return -1
	}
	for ; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '%':
			return i
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return -1
		}
	}
	return -1
}

// Holes returns the distinct hole names of the template in order of first appearance.
func (t *Template) Holes() []string {
	var names []string
	for _, h := range t.holes {
		if !slices.Contains(names, h) {
			names = append(names, h)
		}
	}
	return names
}

// HasHole reports whether the template contains a hole with the given name.
func (t *Template) HasHole(name string) bool {
	return slices.Contains(t.holes, name)
}

// Execute writes the template to w replacing every hole with its value.
// Nothing is written if any hole lacks a value.
func (t *Template) Execute(w io.Writer, values map[string]string) (n int, err error) {
	for _, h := range t.holes {
		if _, ok := values[h]; !ok {
			return 0, fmt.Errorf("%w: %%%s%%", ErrMissingHole, h)
		}
	}
	for i, seg := range t.segments {
		ngot, err := io.WriteString(w, seg)
		n += ngot
		if err != nil {
			return n, err
		}
		if i < len(t.holes) {
			ngot, err = io.WriteString(w, values[t.holes[i]])
			n += ngot
			if err != nil {
				return n, err
			}
		}
	}
	return n, nil
}
