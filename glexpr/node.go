package glexpr

import (
	"errors"
	"strconv"
	"strings"
)

// Kind enumerates the closed set of node variants.
type Kind uint8

const (
	kindUndefined Kind = iota
	// KindConstant is a literal baked into a const declaration.
	KindConstant
	// KindAttribute is a vertex input bound to a fixed location.
	KindAttribute
	// KindUniform is a value set by the GL binding layer before drawing.
	KindUniform
	// KindNamed references an identifier provided by the shader template, i.e: a varying.
	KindNamed
	// KindBinary is elementwise arithmetic between two operands of equal type.
	KindBinary
	// KindTexture samples a sampler2D at a vec2 coordinate.
	KindTexture
	// KindSwizzle extracts a single component of a vec4.
	KindSwizzle
	// KindExtend widens a float or vec3 into a vec4.
	KindExtend
	// KindTransform multiplies a vec4 by a mat4.
	KindTransform
	// KindSetComponent replaces a single component of a vec4 with a float.
	KindSetComponent
	// KindDiscard discards the fragment being shaded. Only valid in fragment stages.
	KindDiscard
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "Constant"
	case KindAttribute:
		return "Attribute"
	case KindUniform:
		return "Uniform"
	case KindNamed:
		return "Named"
	case KindBinary:
		return "Binary"
	case KindTexture:
		return "Texture"
	case KindSwizzle:
		return "Swizzle"
	case KindExtend:
		return "Extend"
	case KindTransform:
		return "Transform"
	case KindSetComponent:
		return "SetComponent"
	case KindDiscard:
		return "Discard"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Op is a binary arithmetic operator.
type Op uint8

const (
	opUndefined Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
)

// String returns the canonical operator name used to name GLSL helper functions.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

func (op Op) symbol() byte {
	switch op {
	case OpAdd:
		return '+'
	case OpSub:
		return '-'
	case OpMul:
		return '*'
	case OpDiv:
		return '/'
	}
	panic("glexpr: invalid operator " + op.String())
}

// Node is a single typed computation in a shader expression DAG. Nodes are
// created by a [Builder] and are immutable after construction, so a node
// may be shared freely between graphs, stages and goroutines.
type Node struct {
	kind     Kind
	typ      Type
	name     string
	operands []*Node

	// Per kind payload.
	literal  string // KindConstant.
	location int    // KindAttribute.
	op       Op     // KindBinary.
	comp     byte   // KindSwizzle, KindSetComponent.
}

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// Type returns the result type of the node. It never changes after construction.
func (n *Node) Type() Type { return n.typ }

// Name returns the shader-visible identifier holding the node's value.
func (n *Node) Name() string { return n.name }

// Operands returns a copy of the node's ordered operands. Leaves return nil.
func (n *Node) Operands() []*Node {
	if len(n.operands) == 0 {
		return nil
	}
	return append([]*Node{}, n.operands...)
}

// Location returns the attribute location of a [KindAttribute] node and -1 for any other kind.
func (n *Node) Location() int {
	if n.kind != KindAttribute {
		return -1
	}
	return n.location
}

// Declarations returns the top level declarations needed by the node: all
// operand declarations in left to right depth first order followed by the
// node's own declaration, if any. The result is the same on every call.
func (n *Node) Declarations() []string {
	return n.AppendDeclarations(nil)
}

// Statements returns the lines computing the node's value inside main: all
// operand statements in left to right depth first order followed by the
// node's own statement, if any.
func (n *Node) Statements() []string {
	return n.AppendStatements(nil)
}

// AppendDeclarations appends the result of [Node.Declarations] to dst and returns the result.
func (n *Node) AppendDeclarations(dst []string) []string {
	for _, operand := range n.operands {
		dst = operand.AppendDeclarations(dst)
	}
	if decl := n.declaration(); decl != "" {
		dst = append(dst, decl)
	}
	return dst
}

// AppendStatements appends the result of [Node.Statements] to dst and returns the result.
func (n *Node) AppendStatements(dst []string) []string {
	for _, operand := range n.operands {
		dst = operand.AppendStatements(dst)
	}
	if stmt := n.statement(); stmt != "" {
		dst = append(dst, stmt)
	}
	return dst
}

func (n *Node) declaration() string {
	var sb strings.Builder
	switch n.kind {
	case KindConstant:
		sb.WriteString("const ")
		n.writeTypedName(&sb)
		sb.WriteString(" = ")
		sb.WriteString(n.literal)
		sb.WriteByte(';')
	case KindAttribute:
		sb.WriteString("layout (location = ")
		sb.WriteString(strconv.Itoa(n.location))
		sb.WriteString(") in ")
		n.writeTypedName(&sb)
		sb.WriteByte(';')
	case KindUniform:
		sb.WriteString("uniform ")
		n.writeTypedName(&sb)
		sb.WriteByte(';')
	case KindBinary:
		// T opT(T left, T right) { return left <op> right; }
		t := n.typ.String()
		sb.WriteString(t)
		sb.WriteByte(' ')
		sb.WriteString(n.helperName())
		sb.WriteString("(" + t + " left, " + t + " right) { return left ")
		sb.WriteByte(n.op.symbol())
		sb.WriteString(" right; }")
	case KindSwizzle:
		sb.WriteString("float ")
		sb.WriteString(n.helperName())
		sb.WriteString("(vec4 v) { return v.")
		sb.WriteByte(n.comp)
		sb.WriteString("; }")
	case KindTransform:
		sb.WriteString("vec4 ")
		sb.WriteString(n.helperName())
		sb.WriteString("(mat4 m, vec4 v) { return m * v; }")
	case KindSetComponent:
		// vec4 expr_set_y(vec4 v, float f) { return vec4(v.x, f, v.z, v.w); }
		sb.WriteString("vec4 ")
		sb.WriteString(n.helperName())
		sb.WriteString("(vec4 v, float f) { return vec4(")
		for i, c := range "xyzw" {
			if i > 0 {
				sb.WriteString(", ")
			}
			if byte(c) == n.comp {
				sb.WriteByte('f')
			} else {
				sb.WriteString("v.")
				sb.WriteRune(c)
			}
		}
		sb.WriteString("); }")
	case KindDiscard:
		sb.WriteString("vec4 ")
		sb.WriteString(n.helperName())
		sb.WriteString("() { discard; return vec4(1.0); }")
	case KindNamed, KindTexture, KindExtend:
		// Built-in or template provided, nothing to declare.
	default:
		panic("glexpr: declaration of unknown node kind " + n.kind.String())
	}
	return sb.String()
}

func (n *Node) statement() string {
	var sb strings.Builder
	switch n.kind {
	case KindConstant, KindAttribute, KindUniform, KindNamed:
		// Value is directly accessible by name.
	case KindBinary, KindSwizzle, KindTransform, KindSetComponent, KindDiscard:
		n.writeTypedName(&sb)
		sb.WriteString(" = ")
		sb.WriteString(n.helperName())
		n.writeCallArgs(&sb)
		sb.WriteByte(';')
	case KindTexture:
		n.writeTypedName(&sb)
		sb.WriteString(" = texture")
		n.writeCallArgs(&sb)
		sb.WriteByte(';')
	case KindExtend:
		n.writeTypedName(&sb)
		sb.WriteString(" = vec4(")
		sb.WriteString(n.operands[0].name)
		if n.operands[0].typ == Vec3 {
			sb.WriteString(", 1.0")
		}
		sb.WriteString(");")
	default:
		panic("glexpr: statement of unknown node kind " + n.kind.String())
	}
	return sb.String()
}

func (n *Node) helperName() string {
	switch n.kind {
	case KindBinary:
		return n.op.String() + n.typ.suffix()
	case KindSwizzle:
		return "expr_" + string(n.comp)
	case KindTransform:
		return "transform" + Mat4.suffix()
	case KindSetComponent:
		return "expr_set_" + string(n.comp)
	case KindDiscard:
		return "expr_discard"
	}
	return ""
}

func (n *Node) writeTypedName(sb *strings.Builder) {
	sb.WriteString(n.typ.String())
	sb.WriteByte(' ')
	sb.WriteString(n.name)
}

func (n *Node) writeCallArgs(sb *strings.Builder) {
	sb.WriteByte('(')
	for i, operand := range n.operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(operand.name)
	}
	sb.WriteByte(')')
}

// ForEach calls fn for every node reachable from n in depth first order,
// visiting operands left to right before the node that uses them. Nodes
// shared in the DAG are visited once per path that reaches them.
// Iteration stops at the first error returned by fn.
func (n *Node) ForEach(fn func(*Node) error) error {
	if n == nil {
		return errors.New("ForEach on nil node")
	}
	for _, operand := range n.operands {
		err := operand.ForEach(fn)
		if err != nil {
			return err
		}
	}
	return fn(n)
}

// Format returns a compact description of the node tree useful for
// debugging, i.e: "Binary(Constant,Constant)".
func Format(n *Node) string {
	if n == nil {
		panic("nil node")
	}
	var sb strings.Builder
	var format func(*Node)
	format = func(n *Node) {
		sb.WriteString(n.kind.String())
		if len(n.operands) == 0 {
			return
		}
		sb.WriteByte('(')
		for i, operand := range n.operands {
			if i > 0 {
				sb.WriteByte(',')
			}
			format(operand)
		}
		sb.WriteByte(')')
	}
	format(n)
	return sb.String()
}
