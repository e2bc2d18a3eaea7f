package gltech

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/soypat/geometry/ms3"
)

// MaxLights is the size of the light array of the [Phong] fragment template.
const MaxLights = 128

// Attenuation coefficients of lights built with a range. See
// http://wiki.ogre3d.org/Light+Attenuation+Shortcut
const (
	attenLinearCoeff    = 4.5
	attenQuadraticCoeff = 75
)

// Light is a light source of the [Phong] technique. Light intensity at
// distance d is scaled by 1/(AttenConstant + AttenLinear*d + AttenQuadratic*d*d).
type Light struct {
	// Vector is the position of a point light or the direction a directional light shines towards.
	Vector ms3.Vec
	Color  ms3.Vec
	// Directional lights are not attenuated and light every fragment from the same direction.
	Directional    bool
	AttenConstant  float32
	AttenLinear    float32
	AttenQuadratic float32
}

// PointLight returns a light at position whose intensity falls off over
// approximately rng world units.
func PointLight(position, color ms3.Vec, rng float32) Light {
	return Light{
		Vector:         position,
		Color:          color,
		AttenConstant:  1,
		AttenLinear:    attenLinearCoeff / rng,
		AttenQuadratic: attenQuadraticCoeff / (rng * rng),
	}
}

// DirectionalLight returns a light shining towards direction.
func DirectionalLight(direction, color ms3.Vec) Light {
	return Light{
		Vector:        direction,
		Color:         color,
		Directional:   true,
		AttenConstant: 1,
	}
}

// LightValue is the value of a uniform declared by the [Phong] fragment
// template. Unlike slot uniforms these are not listed in [Program.Uniforms].
type LightValue struct {
	Name  string
	Value any
}

var errTooManyLights = errors.New("too many lights")

// LightValues appends to dst the uniform values that light a [Phong] program
// with lights. Point lights are written first, keeping their relative order,
// followed by directional lights. Counts are int32 and every other value is
// a float32 or ms3.Vec.
func LightValues(dst []LightValue, lights []Light) ([]LightValue, error) {
	if len(lights) > MaxLights {
		return dst, fmt.Errorf("%w: got %d, max %d", errTooManyLights, len(lights), MaxLights)
	}
	var points, dirs int32
	idx := 0
	for _, directional := range [2]bool{false, true} {
		for _, light := range lights {
			if light.Directional != directional {
				continue
			}
			prefix := "uLights[" + strconv.Itoa(idx) + "]."
			dst = append(dst,
				LightValue{Name: prefix + "vector", Value: light.Vector},
				LightValue{Name: prefix + "color", Value: light.Color},
				LightValue{Name: prefix + "attenConstant", Value: light.AttenConstant},
				LightValue{Name: prefix + "attenLinear", Value: light.AttenLinear},
				LightValue{Name: prefix + "attenQuadratic", Value: light.AttenQuadratic},
			)
			idx++
			if directional {
				dirs++
			} else {
				points++
			}
		}
	}
	dst = append(dst,
		LightValue{Name: "uLightsPointCnt", Value: points},
		LightValue{Name: "uLightsDirCnt", Value: dirs},
	)
	return dst, nil
}
