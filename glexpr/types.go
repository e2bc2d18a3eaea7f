package glexpr

import (
	"fmt"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Type is the semantic result type of a [Node]. The set of types is closed.
type Type uint8

const (
	typeUndefined Type = iota
	Int
	Float
	Vec2
	Vec3
	Vec4
	Mat4
	Sampler2D
)

// V4 is a 4 component float vector value. It is the Go value of a
// [Vec4] constant or uniform.
type V4 struct {
	X, Y, Z, W float32
}

// Array returns the components of v in XYZW order.
func (v V4) Array() [4]float32 { return [4]float32{v.X, v.Y, v.Z, v.W} }

// TextureUnit is the Go value of a [Sampler2D] uniform: the texture unit
// the sampler reads from.
type TextureUnit int32

// String returns the GLSL name of the type.
func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case Vec2:
		return "vec2"
	case Vec3:
		return "vec3"
	case Vec4:
		return "vec4"
	case Mat4:
		return "mat4"
	case Sampler2D:
		return "sampler2D"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// IsValid reports whether t is one of the defined types.
func (t Type) IsValid() bool { return t >= Int && t <= Sampler2D }

// IsArithmetic reports whether values of t can be operands of a binary operator.
func (t Type) IsArithmetic() bool { return t.IsValid() && t != Sampler2D }

// suffix is appended to operator names so that each (operator, type) pair
// gets its own helper function in GLSL which lacks generics.
func (t Type) suffix() string {
	switch t {
	case Int:
		return "i"
	case Float:
		return "f"
	case Vec2:
		return "v2"
	case Vec3:
		return "v3"
	case Vec4:
		return "v4"
	case Mat4:
		return "m4"
	case Sampler2D:
		return "s2"
	}
	panic("glexpr: suffix of invalid type " + t.String())
}

// TypeOf returns the [Type] a Go value maps to. It returns an error for
// values with no GLSL equivalent.
//
//	int32       -> int
//	float32     -> float
//	ms2.Vec     -> vec2
//	ms3.Vec     -> vec3
//	V4          -> vec4
//	ms3.Mat4    -> mat4
//	TextureUnit -> sampler2D
func TypeOf(v any) (Type, error) {
	switch v.(type) {
	case int32:
		return Int, nil
	case float32:
		return Float, nil
	case ms2.Vec:
		return Vec2, nil
	case ms3.Vec:
		return Vec3, nil
	case V4:
		return Vec4, nil
	case ms3.Mat4:
		return Mat4, nil
	case TextureUnit:
		return Sampler2D, nil
	case nil:
		return typeUndefined, fmt.Errorf("%w: nil value", ErrInvalidValue)
	}
	return typeUndefined, fmt.Errorf("%w: no GLSL equivalent for %T", ErrInvalidValue, v)
}
