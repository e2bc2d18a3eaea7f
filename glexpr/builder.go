package glexpr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

var (
	// ErrTypeMismatch is wrapped by errors of nodes rejecting the type of their operands.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrNilOperand is wrapped by errors of nodes that received a nil operand.
	ErrNilOperand = errors.New("nil operand")
	// ErrInvalidValue is wrapped by errors of nodes that received a value with no GLSL representation.
	ErrInvalidValue = errors.New("invalid value")
)

// TypeError is returned when a node is constructed with operands of the wrong type.
// It unwraps to [ErrTypeMismatch].
type TypeError struct {
	// Op is the node construction that failed, i.e: "add", "texture".
	Op string
	// Got are the types of the received operands in order.
	Got []Type
	// Want describes the accepted operand types.
	Want string
}

func (e *TypeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	sb.WriteString(": type mismatch, got (")
	for i, t := range e.Got {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteString("), want ")
	sb.WriteString(e.Want)
	return sb.String()
}

func (e *TypeError) Unwrap() error { return ErrTypeMismatch }

// NameAllocator hands out process unique node names of the form _v0, _v1, ...
// The zero value is ready to use and safe for concurrent use.
type NameAllocator struct {
	next atomic.Uint64
}

// Next returns a name never returned before by this allocator.
func (na *NameAllocator) Next() string {
	n := na.next.Add(1) - 1
	return "_v" + strconv.FormatUint(n, 10)
}

// Builder constructs expression nodes and checks their types.
// Provides error handling strategies with panics or error accumulation during graph construction.
//
// Nodes built by builders sharing one [NameAllocator] have unique names
// and may be combined in a single technique. A Builder with nil Names
// allocates its own on first use.
//
// A Builder is not safe for concurrent use. Goroutines building graphs in
// parallel should each use their own Builder sharing one [NameAllocator].
type Builder struct {
	// Names allocates node names. Set it to share an allocator between builders.
	Names *NameAllocator
	// NoTypePanic makes construction failures accumulate in Err instead of panicking.
	// Failed constructors return nil.
	NoTypePanic bool
	accumErrs   []error
}

// Err returns all construction errors accumulated while NoTypePanic was set.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

func (bld *Builder) fail(err error) {
	if !bld.NoTypePanic {
		panic(err)
	}
	bld.accumErrs = append(bld.accumErrs, err)
}

func (bld *Builder) typeError(op, want string, got ...*Node) {
	types := make([]Type, len(got))
	for i := range got {
		types[i] = got[i].typ
	}
	bld.fail(&TypeError{Op: op, Got: types, Want: want})
}

// checkNil reports whether any operand is nil, failing the construction if so.
func (bld *Builder) checkNil(op string, operands ...*Node) bool {
	for i, operand := range operands {
		if operand == nil {
			bld.fail(fmt.Errorf("%s: operand %d: %w", op, i, ErrNilOperand))
			return true
		}
	}
	return false
}

func (bld *Builder) newNode(kind Kind, typ Type, operands ...*Node) *Node {
	if bld.Names == nil {
		bld.Names = new(NameAllocator)
	}
	n := &Node{
		kind: kind,
		typ:  typ,
		name: bld.Names.Next(),
	}
	if len(operands) > 0 {
		n.operands = operands
	}
	return n
}

// Constant returns a node holding v in a const declaration. See [TypeOf] for
// the accepted Go types. Samplers and non-finite floats are rejected.
func (bld *Builder) Constant(v any) *Node {
	typ, err := TypeOf(v)
	if err != nil {
		bld.fail(fmt.Errorf("constant: %w", err))
		return nil
	}
	lit, err := AppendLiteral(nil, v)
	if err != nil {
		bld.fail(fmt.Errorf("constant: %w", err))
		return nil
	}
	n := bld.newNode(KindConstant, typ)
	n.literal = string(lit)
	return n
}

// Attribute returns a vertex input node of type typ bound to location.
func (bld *Builder) Attribute(typ Type, location int) *Node {
	if location < 0 {
		bld.fail(fmt.Errorf("attribute: %w: negative location %d", ErrInvalidValue, location))
		return nil
	} else if !typ.IsArithmetic() {
		bld.fail(&TypeError{Op: "attribute", Got: []Type{typ}, Want: "int, float, vector or matrix"})
		return nil
	}
	n := bld.newNode(KindAttribute, typ)
	n.location = location
	return n
}

// Uniform returns an externally set value of type typ. The value is supplied
// by the GL binding layer using the node's name.
func (bld *Builder) Uniform(typ Type) *Node {
	if !typ.IsValid() {
		bld.fail(&TypeError{Op: "uniform", Got: []Type{typ}, Want: "valid type"})
		return nil
	}
	return bld.newNode(KindUniform, typ)
}

// Named returns a node referring to an identifier the shader template
// provides, such as a varying or a built-in. The node's name is ident.
// Identifiers of the form _v<digit>... are reserved for generated names.
func (bld *Builder) Named(typ Type, ident string) *Node {
	if !typ.IsValid() {
		bld.fail(&TypeError{Op: "named", Got: []Type{typ}, Want: "valid type"})
		return nil
	} else if !isIdent(ident) {
		bld.fail(fmt.Errorf("named: %w: bad identifier %q", ErrInvalidValue, ident))
		return nil
	} else if isGeneratedName(ident) {
		bld.fail(fmt.Errorf("named: %w: identifier %q is reserved for generated names", ErrInvalidValue, ident))
		return nil
	}
	return &Node{kind: KindNamed, typ: typ, name: ident}
}

// Add returns left + right. Operands must share the same non-sampler type.
func (bld *Builder) Add(left, right *Node) *Node { return bld.binary(OpAdd, left, right) }

// Sub returns left - right. Operands must share the same non-sampler type.
func (bld *Builder) Sub(left, right *Node) *Node { return bld.binary(OpSub, left, right) }

// Mul returns left * right. Operands must share the same non-sampler type.
// Vectors multiply elementwise and matrices follow the linear algebraic product.
func (bld *Builder) Mul(left, right *Node) *Node { return bld.binary(OpMul, left, right) }

// Div returns left / right. Operands must share the same non-sampler type.
func (bld *Builder) Div(left, right *Node) *Node { return bld.binary(OpDiv, left, right) }

func (bld *Builder) binary(op Op, left, right *Node) *Node {
	if bld.checkNil(op.String(), left, right) {
		return nil
	}
	if left.typ != right.typ || !left.typ.IsArithmetic() {
		bld.typeError(op.String(), "two operands of the same int, float, vector or matrix type", left, right)
		return nil
	}
	n := bld.newNode(KindBinary, left.typ, left, right)
	n.op = op
	return n
}

// Texture samples sampler at coord and returns the vec4 color.
func (bld *Builder) Texture(sampler, coord *Node) *Node {
	if bld.checkNil("texture", sampler, coord) {
		return nil
	}
	if sampler.typ != Sampler2D || coord.typ != Vec2 {
		bld.typeError("texture", "(sampler2D, vec2)", sampler, coord)
		return nil
	}
	return bld.newNode(KindTexture, Vec4, sampler, coord)
}

// Swizzle returns the component of the vec4 v selected by one of 'x', 'y', 'z' or 'w'.
func (bld *Builder) Swizzle(v *Node, component byte) *Node {
	if bld.checkNil("swizzle", v) {
		return nil
	}
	if v.typ != Vec4 {
		bld.typeError("swizzle", "(vec4)", v)
		return nil
	}
	switch component {
	case 'x', 'y', 'z', 'w':
	default:
		bld.fail(fmt.Errorf("swizzle: %w: component %q", ErrInvalidValue, component))
		return nil
	}
	n := bld.newNode(KindSwizzle, Float, v)
	n.comp = component
	return n
}

// Extend widens v into a vec4. A float is replicated into every component
// and a vec3 gets a w component of 1.0, as needed for homogeneous positions.
func (bld *Builder) Extend(v *Node) *Node {
	if bld.checkNil("extend", v) {
		return nil
	}
	if v.typ != Float && v.typ != Vec3 {
		bld.typeError("extend", "(float) or (vec3)", v)
		return nil
	}
	return bld.newNode(KindExtend, Vec4, v)
}

// Transform returns the vec4 v transformed by the matrix m, that is m * v.
func (bld *Builder) Transform(m, v *Node) *Node {
	if bld.checkNil("transform", m, v) {
		return nil
	}
	if m.typ != Mat4 || v.typ != Vec4 {
		bld.typeError("transform", "(mat4, vec4)", m, v)
		return nil
	}
	return bld.newNode(KindTransform, Vec4, m, v)
}

// SetComponent returns a copy of the vec4 v with the component selected by
// one of 'x', 'y', 'z' or 'w' replaced by the float f.
func (bld *Builder) SetComponent(v *Node, component byte, f *Node) *Node {
	if bld.checkNil("set component", v, f) {
		return nil
	}
	if v.typ != Vec4 || f.typ != Float {
		bld.typeError("set component", "(vec4, float)", v, f)
		return nil
	}
	switch component {
	case 'x', 'y', 'z', 'w':
	default:
		bld.fail(fmt.Errorf("set component: %w: component %q", ErrInvalidValue, component))
		return nil
	}
	n := bld.newNode(KindSetComponent, Vec4, v, f)
	n.comp = component
	return n
}

// Discard returns a vec4 node that discards the fragment when evaluated.
// It may only be used as part of a fragment stage color.
func (bld *Builder) Discard() *Node {
	return bld.newNode(KindDiscard, Vec4)
}

// isGeneratedName reports whether s could have been returned by [NameAllocator.Next].
func isGeneratedName(s string) bool {
	return len(s) > 2 && s[0] == '_' && s[1] == 'v' && s[2] >= '0' && s[2] <= '9'
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		digit := c >= '0' && c <= '9'
		if !letter && (i == 0 || !digit) {
			return false
		}
	}
	return true
}
