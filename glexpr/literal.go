package glexpr

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// AppendLiteral appends the GLSL literal of v to b. Vector and matrix values
// use constructor syntax, i.e: vec3(1.0, 0.5, 0.0). It fails for values
// with no GLSL literal such as samplers or non-finite floats.
func AppendLiteral(b []byte, v any) ([]byte, error) {
	switch val := v.(type) {
	case int32:
		return strconv.AppendInt(b, int64(val), 10), nil
	case float32:
		if !isFinite(val) {
			return b, fmt.Errorf("%w: non-finite float %v", ErrInvalidValue, val)
		}
		return AppendFloat(b, val), nil
	case ms2.Vec:
		return appendVecLiteral(b, "vec2", val.X, val.Y)
	case ms3.Vec:
		return appendVecLiteral(b, "vec3", val.X, val.Y, val.Z)
	case V4:
		return appendVecLiteral(b, "vec4", val.X, val.Y, val.Z, val.W)
	case ms3.Mat4:
		arr := val.Array()
		for _, f := range arr {
			if !isFinite(f) {
				return b, fmt.Errorf("%w: non-finite mat4 element %v", ErrInvalidValue, f)
			}
		}
		return appendMatLiteral(b, "mat4", 4, 4, arr[:]), nil
	case TextureUnit:
		return b, fmt.Errorf("%w: sampler has no constant literal", ErrInvalidValue)
	}
	_, err := TypeOf(v)
	return b, err
}

func appendVecLiteral(b []byte, typename string, v ...float32) ([]byte, error) {
	for _, f := range v {
		if !isFinite(f) {
			return b, fmt.Errorf("%w: non-finite %s component %v", ErrInvalidValue, typename, f)
		}
	}
	b = append(b, typename...)
	b = append(b, '(')
	b = AppendFloats(b, v...)
	b = append(b, ')')
	return b, nil
}

func appendMatLiteral(b []byte, typename string, row, col int, arr []float32) []byte {
	b = append(b, typename...)
	b = append(b, '(')
	for i := 0; i < row; i++ {
		for j := 0; j < col; j++ {
			v := arr[j*row+i] // Column major access, as per OpenGL standard.
			b = AppendFloat(b, v)
			last := i == row-1 && j == col-1
			if !last {
				b = append(b, ", "...)
			}
		}
	}
	b = append(b, ')')
	return b
}

// AppendFloat appends the shortest representation of v that always carries
// a decimal point and at least one fractional digit, i.e: 1.0, 0.25, -3.5.
func AppendFloat(b []byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', -1, 32)
	if bytes.IndexByte(b[start:], '.') < 0 {
		b = append(b, ".0"...)
	}
	return b
}

// AppendFloats appends comma separated float literals.
func AppendFloats(b []byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, v)
		if i != len(s)-1 {
			b = append(b, ", "...)
		}
	}
	return b
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
